package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gallerybench.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "null", cfg.Engine.Name)
	assert.Equal(t, 20, cfg.Search.CandidateListLength)
	assert.Equal(t, "process", cfg.Workers.Mode)
	assert.Equal(t, model.GalleryUnconsolidated, cfg.GalleryType())
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.Equal(t, "zstd", cfg.Export.Codec)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[search]
candidate_list_length = 50

[workers]
mode = " InProcess "
max_parallel = 4

[gallery]
type = "consolidated"
cleanup = true
io_limit_bytes_per_sec = 1048576

[logging]
level = "DEBUG"
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Search.CandidateListLength)
	assert.Equal(t, "inprocess", cfg.Workers.Mode)
	assert.Equal(t, 4, cfg.Workers.MaxParallel)
	assert.Equal(t, model.GalleryConsolidated, cfg.GalleryType())
	assert.True(t, cfg.Gallery.Cleanup)
	assert.Equal(t, int64(1<<20), cfg.Gallery.IOLimitBytesPerSec)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "null", cfg.Engine.Name)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[search\n", "parse"},
		{"unknown key", "[search]\nk = 3\n", "parse"},
		{"negative k", "[search]\ncandidate_list_length = -1\n", "candidate_list_length"},
		{"mode", "[workers]\nmode = \"threads\"\n", "workers.mode"},
		{"parallel", "[workers]\nmax_parallel = -2\n", "max_parallel"},
		{"gallery type", "[gallery]\ntype = \"sparse\"\n", "gallery.type"},
		{"io limit", "[gallery]\nio_limit_bytes_per_sec = -1\n", "io_limit"},
		{"level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"codec", "[export]\ncodec = \"gzip\"\n", "export.codec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, failure.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestLoad_MinioCredentialsFromEnv(t *testing.T) {
	t.Setenv(envMinioAccessKey, "access")
	t.Setenv(envMinioSecretKey, "secret")

	cfg, err := Load(writeConfig(t, "[export]\nminio_secret_key = \"from-file\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "access", cfg.Export.MinioAccessKey)
	assert.Equal(t, "from-file", cfg.Export.MinioSecretKey)
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, toml.NewDecoder(strings.NewReader(SampleConfig())).Decode(&cfg))
	cfg.normalize()
	require.NoError(t, cfg.Validate())

	want := Default()
	want.Export.MinioSecure = true
	cfg.Export.MinioAccessKey, cfg.Export.MinioSecretKey = "", ""
	assert.Equal(t, want, cfg)
}

func TestEncode(t *testing.T) {
	cfg := Default()
	b, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(b), "candidate_list_length = 20")
}
