package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/agbru/fibfill/internal/sink"
)

// Client is the subset of the S3 API the store uses.
type Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config configures uploads.
type Config struct {
	// PartSize is the multipart part size. Default: 8 MiB.
	PartSize int64
	// Concurrency is the number of parts uploaded in parallel. Default: 5.
	Concurrency int
	// ContentType is set on created objects. Default: text/plain.
	ContentType string
}

// DefaultConfig returns the upload settings used by NewStore.
func DefaultConfig() Config {
	return Config{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
		ContentType: "text/plain; charset=us-ascii",
	}
}

// Store writes destinations as objects under prefix in bucket.
type Store struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	cfg      Config
}

// NewStore returns a store using client.
func NewStore(client Client, bucket, prefix string, cfg Config) *Store {
	def := DefaultConfig()
	if cfg.PartSize <= 0 {
		cfg.PartSize = def.PartSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.ContentType == "" {
		cfg.ContentType = def.ContentType
	}
	return &Store{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = cfg.PartSize
			u.Concurrency = cfg.Concurrency
			u.LeavePartsOnError = false
		}),
		bucket: bucket,
		prefix: prefix,
		cfg:    cfg,
	}
}

// Options selects the endpoint for NewStoreFromEnvironment.
type Options struct {
	// Region overrides the region from the environment.
	Region string
	// Endpoint is the base URL of an S3-compatible service. Path-style
	// addressing is used when set.
	Endpoint string
}

// NewStoreFromEnvironment builds a store with credentials from the default
// AWS chain (environment, shared config, instance role).
func NewStoreFromEnvironment(ctx context.Context, bucket string, opts Options, cfg Config) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStore(client, bucket, "", cfg), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Create implements sink.Store. The upload starts immediately and is
// committed by Close.
func (s *Store) Create(ctx context.Context, name string) (sink.Sink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	w := &uploadSink{pw: pw, done: make(chan error, 1)}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        pr,
		ContentType: aws.String(s.cfg.ContentType),
	}
	go func() {
		_, err := s.uploader.Upload(ctx, input)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Open implements sink.Store.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", name, sink.ErrNotFound)
		}
		return nil, err
	}
	return out.Body, nil
}

// uploadSink feeds the uploader through a pipe.
type uploadSink struct {
	pw   *io.PipeWriter
	done chan error

	mu       sync.Mutex
	finished bool
	err      error
}

func (w *uploadSink) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Close signals EOF and waits for the upload to complete.
func (w *uploadSink) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return sink.ErrClosed
	}
	w.finished = true
	if err := w.pw.Close(); err != nil {
		return err
	}
	w.err = <-w.done
	return w.err
}

// Abort fails the pipe and waits for the uploader to give up.
func (w *uploadSink) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return nil
	}
	w.finished = true
	_ = w.pw.CloseWithError(sink.ErrAborted)
	// The upload fails with the pipe error; that is the expected outcome.
	<-w.done
	return nil
}

var _ sink.Store = (*Store)(nil)
