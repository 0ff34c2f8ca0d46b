package config

import (
	"os"
	"strings"
)

// Credentials may come from the environment instead of the file.
const (
	envMinioAccessKey = "GALLERYBENCH_MINIO_ACCESS_KEY"
	envMinioSecretKey = "GALLERYBENCH_MINIO_SECRET_KEY"
)

func (c *Config) normalize() {
	c.Engine.Name = strings.TrimSpace(c.Engine.Name)
	if c.Engine.Name == "" {
		c.Engine.Name = defaultEngine
	}
	if c.Search.CandidateListLength == 0 {
		c.Search.CandidateListLength = defaultCandidateListLength
	}
	c.normalizeWorkers()
	c.normalizeGallery()
	c.normalizeLogging()
	c.normalizeExport()
}

func (c *Config) normalizeWorkers() {
	c.Workers.Mode = strings.ToLower(strings.TrimSpace(c.Workers.Mode))
	if c.Workers.Mode == "" {
		c.Workers.Mode = defaultWorkerMode
	}
}

func (c *Config) normalizeGallery() {
	c.Gallery.Type = strings.ToLower(strings.TrimSpace(c.Gallery.Type))
	if c.Gallery.Type == "" {
		c.Gallery.Type = defaultGalleryType
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeExport() {
	c.Export.Codec = strings.ToLower(strings.TrimSpace(c.Export.Codec))
	if c.Export.Codec == "" {
		c.Export.Codec = defaultExportCodec
	}
	c.Export.Target = strings.TrimSpace(c.Export.Target)
	if c.Export.MinioAccessKey == "" {
		c.Export.MinioAccessKey = os.Getenv(envMinioAccessKey)
	}
	if c.Export.MinioSecretKey == "" {
		c.Export.MinioSecretKey = os.Getenv(envMinioSecretKey)
	}
}
