package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/gallerybench/blobstore"
)

// Config describes a MinIO endpoint holding gallery archives.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// Store keeps the blobs of one gallery archive under prefix in bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// Dial connects to cfg.Endpoint and returns a store rooted at bucket/prefix.
func Dial(cfg Config, bucket, prefix string) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio: empty endpoint")
	}
	if bucket == "" {
		return nil, errors.New("minio: empty bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: dial %s: %w", cfg.Endpoint, err)
	}
	return NewStore(client, bucket, prefix), nil
}

// NewStore wraps an existing client. Leading and trailing slashes of prefix
// are ignored.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// objectKey maps an archive blob name to its object key.
func (s *Store) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// blobName maps an object key back to an archive blob name. Keys outside the
// prefix yield false.
func (s *Store) blobName(key string) (string, bool) {
	if s.prefix == "" {
		return key, key != ""
	}
	rest, ok := strings.CutPrefix(key, s.prefix+"/")
	return rest, ok && rest != ""
}

// contentType labels archive blobs by suffix.
func contentType(name string) string {
	switch path.Ext(name) {
	case ".toml":
		return "application/toml"
	case ".zst":
		return "application/zstd"
	case ".lz4":
		return "application/x-lz4"
	default:
		return "application/octet-stream"
	}
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectKey(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if isNotFound(err) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("minio: stat %s: %w", key, err)
	}
	return &archiveBlob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.objectKey(name)
	opts := minio.PutObjectOptions{ContentType: contentType(name)}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("minio: put %s: %w", key, err)
	}
	return nil
}

// Create streams a compressed gallery file into one object. The upload
// completes on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	key := s.objectKey(name)
	pr, pw := io.Pipe()
	w := &uploadBlob{pw: pw, done: make(chan error, 1)}
	opts := minio.PutObjectOptions{ContentType: contentType(name)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, key, pr, -1, opts)
		if err != nil {
			err = fmt.Errorf("minio: upload %s: %w", key, err)
		}
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.objectKey(name)
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("minio: remove %s: %w", key, err)
	}
	return nil
}

// List returns the sorted archive blob names starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.objectKey(prefix),
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %s: %w", s.bucket, obj.Err)
		}
		if name, ok := s.blobName(obj.Key); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

type archiveBlob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *archiveBlob) Size() int64 { return b.size }

func (b *archiveBlob) Close() error { return nil }

func (b *archiveBlob) get(ctx context.Context, off, end int64) (io.ReadCloser, error) {
	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, end); err != nil {
		return nil, err
	}
	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", b.key, err)
	}
	return obj, nil
}

func (b *archiveBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p))-1, b.size-1)
	body, err := b.get(ctx, off, end)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	n, err := io.ReadFull(body, p[:end-off+1])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *archiveBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.get(ctx, off, min(off+length-1, b.size-1))
}

// uploadBlob feeds an io.Pipe drained by the PutObject goroutine.
type uploadBlob struct {
	pw     *io.PipeWriter
	done   chan error
	closed atomic.Bool
}

func (w *uploadBlob) Write(p []byte) (int, error) { return w.pw.Write(p) }

func (w *uploadBlob) Sync() error { return nil }

func (w *uploadBlob) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return errors.New("minio: upload already closed")
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
