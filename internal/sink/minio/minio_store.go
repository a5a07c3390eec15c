package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/agbru/fibfill/internal/sink"
)

// DefaultPartSize is the part size used for streaming uploads of unknown length.
const DefaultPartSize = 16 * 1024 * 1024

// Store writes destinations as objects under prefix in bucket.
type Store struct {
	client   *minio.Client
	bucket   string
	prefix   string
	partSize uint64
}

// NewStore returns a store using client.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix, partSize: DefaultPartSize}
}

// Env holds connection settings, usually read from FIBFILL_MINIO_* variables.
type Env struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// NewStoreFromEnv connects to env.Endpoint with static credentials.
func NewStoreFromEnv(env Env, bucket string) (*Store, error) {
	if env.Endpoint == "" {
		return nil, errors.New("minio endpoint is not set")
	}
	client, err := minio.New(env.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(env.AccessKey, env.SecretKey, ""),
		Secure: env.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return NewStore(client, bucket, ""), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Create implements sink.Store.
func (s *Store) Create(ctx context.Context, name string) (sink.Sink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.key(name)
	pr, pw := io.Pipe()
	w := &objectSink{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, key, pr, -1, minio.PutObjectOptions{
			ContentType: "text/plain; charset=us-ascii",
			PartSize:    s.partSize,
		})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Open implements sink.Store.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, fmt.Errorf("%s: %w", name, sink.ErrNotFound)
		}
		return nil, err
	}
	return s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
}

// Remove deletes name. Missing objects are not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil
		}
	}
	return err
}

type objectSink struct {
	pw   *io.PipeWriter
	done chan error

	mu       sync.Mutex
	finished bool
}

func (w *objectSink) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *objectSink) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return sink.ErrClosed
	}
	w.finished = true
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

func (w *objectSink) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return nil
	}
	w.finished = true
	_ = w.pw.CloseWithError(sink.ErrAborted)
	<-w.done
	return nil
}

var _ sink.Store = (*Store)(nil)
