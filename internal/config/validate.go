package config

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/logging"
	"github.com/hupe1980/gallerybench/model"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Search.CandidateListLength < 1 {
		return errors.New("search.candidate_list_length must be positive")
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateGallery(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if _, err := gallery.ParseCodec(c.Export.Codec); err != nil {
		return fmt.Errorf("export.codec: %w", err)
	}
	return nil
}

func (c *Config) validateWorkers() error {
	switch c.Workers.Mode {
	case "process", "inprocess":
	default:
		return fmt.Errorf("workers.mode: unsupported value %q", c.Workers.Mode)
	}
	if c.Workers.MaxParallel < 0 {
		return errors.New("workers.max_parallel must not be negative")
	}
	return nil
}

func (c *Config) validateGallery() error {
	if _, err := model.ParseGalleryType(c.Gallery.Type); err != nil {
		return fmt.Errorf("gallery.type: %w", err)
	}
	if c.Gallery.IOLimitBytesPerSec < 0 {
		return errors.New("gallery.io_limit_bytes_per_sec must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "auto", "json", "console", "text":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}

// GalleryType returns the parsed gallery type.
func (c *Config) GalleryType() model.GalleryType {
	t, _ := model.ParseGalleryType(c.Gallery.Type)
	return t
}
