package gallerybench

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hupe1980/gallerybench/blobstore"
	miniostore "github.com/hupe1980/gallerybench/blobstore/minio"
	s3store "github.com/hupe1980/gallerybench/blobstore/s3"
	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/fs"
)

// TargetConfig holds the credentials and endpoints of remote archive
// targets.
type TargetConfig struct {
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
	S3Region       string
	S3Endpoint     string
}

// OpenTarget resolves an archive target URL to a blob store:
//
//	file:///abs/dir or a plain path    local directory
//	s3://bucket/prefix                 Amazon S3 (default credential chain)
//	minio://host:port/bucket/prefix    MinIO or another S3-compatible service
func OpenTarget(ctx context.Context, target string, cfg TargetConfig) (blobstore.BlobStore, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: archive target is required", ErrConfiguration)
	}
	if !strings.Contains(target, "://") {
		return blobstore.NewLocalStore(filepath.Clean(target)), nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: archive target %q: %w", ErrConfiguration, target, err)
	}
	switch u.Scheme {
	case "file":
		dir := u.Host + u.Path
		if dir == "" {
			return nil, fmt.Errorf("%w: archive target %q has no path", ErrConfiguration, target)
		}
		return blobstore.NewLocalStore(filepath.FromSlash(dir)), nil

	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: archive target %q has no bucket", ErrConfiguration, target)
		}
		opts := []s3store.Option{s3store.WithPrefix(strings.Trim(u.Path, "/"))}
		if cfg.S3Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.S3Region))
		}
		if cfg.S3Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.S3Endpoint))
		}
		store, err := s3store.New(ctx, u.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrIO, target, err)
		}
		return store, nil

	case "minio":
		bucket, prefix, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return nil, fmt.Errorf("%w: archive target %q must be minio://host/bucket[/prefix]", ErrConfiguration, target)
		}
		store, err := miniostore.Dial(miniostore.Config{
			Endpoint:  u.Host,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Secure:    cfg.MinioSecure,
		}, bucket, prefix)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrIO, target, err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unsupported archive target scheme %q", ErrConfiguration, u.Scheme)
	}
}

// Export packs the consolidated gallery of outputDir into store.
func Export(ctx context.Context, fsys fs.FileSystem, outputDir string, store blobstore.BlobStore, codec gallery.Codec, runID string) (gallery.ArchiveIndex, error) {
	return gallery.Export(ctx, fsys, outputDir, store, codec, runID)
}

// Import unpacks an exported gallery from store into dir and verifies it.
func Import(ctx context.Context, store blobstore.BlobStore, fsys fs.FileSystem, dir string) (gallery.ArchiveIndex, error) {
	if err := fs.Or(fsys).MkdirAll(dir, 0o755); err != nil {
		return gallery.ArchiveIndex{}, fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}
	return gallery.Import(ctx, store, fsys, dir)
}

// Verify checks the consolidated gallery and every shard pair in outputDir.
// It returns the verified pairs, consolidated first.
func Verify(fsys fs.FileSystem, outputDir string) ([]gallery.Pair, error) {
	fsys = fs.Or(fsys)

	var pairs []gallery.Pair
	edbExists, err := fs.Exists(fsys, gallery.EDBPath(outputDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	manifestExists, err := fs.Exists(fsys, gallery.ManifestPath(outputDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if edbExists || manifestExists {
		p, err := gallery.VerifyFiles(fsys, gallery.EDBPath(outputDir), gallery.ManifestPath(outputDir))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}

	shards, err := gallery.ShardPairs(fsys, outputDir)
	if err != nil {
		return nil, err
	}
	for _, i := range shards {
		p, err := gallery.VerifyFiles(fsys, gallery.ShardEDBPath(outputDir, i), gallery.ShardManifestPath(outputDir, i))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no gallery in %s", ErrGalleryMismatch, outputDir)
	}
	return pairs, nil
}
