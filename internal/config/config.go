package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/hupe1980/gallerybench/internal/failure"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine selects the registered template engine.
type Engine struct {
	Name string `toml:"name"`
}

// Search contains identification settings.
type Search struct {
	CandidateListLength int `toml:"candidate_list_length"`
}

// Workers controls how shards are executed.
type Workers struct {
	// Mode is "process" or "inprocess".
	Mode string `toml:"mode"`
	// MaxParallel caps concurrently running workers. 0 runs every shard at once.
	MaxParallel int `toml:"max_parallel"`
}

// Gallery contains enrollment and finalization settings.
type Gallery struct {
	Type               string `toml:"type"`
	Cleanup            bool   `toml:"cleanup"`
	IOLimitBytesPerSec int64  `toml:"io_limit_bytes_per_sec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Export contains the archive target and its credentials.
type Export struct {
	Codec          string `toml:"codec"`
	Target         string `toml:"target"`
	MinioAccessKey string `toml:"minio_access_key"`
	MinioSecretKey string `toml:"minio_secret_key"`
	MinioSecure    bool   `toml:"minio_secure"`
	S3Region       string `toml:"s3_region"`
	S3Endpoint     string `toml:"s3_endpoint"`
}

// Config encapsulates all harness settings.
type Config struct {
	Engine  Engine  `toml:"engine"`
	Search  Search  `toml:"search"`
	Workers Workers `toml:"workers"`
	Gallery Gallery `toml:"gallery"`
	Logging Logging `toml:"logging"`
	Export  Export  `toml:"export"`
}

// Load parses and validates the settings file at path. An empty path yields
// the defaults. A path that does not exist is a configuration error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, failure.Wrap(failure.ErrConfiguration, "config", "open", path, err)
			}
			return nil, failure.Wrap(failure.ErrIO, "config", "open", path, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, failure.Wrap(failure.ErrConfiguration, "config", "parse", path, err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "config", "validate", path, err)
	}
	return &cfg, nil
}

// SampleConfig returns a commented settings file with every default.
func SampleConfig() string {
	return sampleConfig
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	b, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return b, nil
}
