package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/agbru/fibfill/internal/sysmon"
)

// LocalStore writes regular files.
type LocalStore struct {
	root      string
	fsync     bool
	dropCache bool
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFsync makes Close flush file contents to stable storage.
func WithFsync(enabled bool) LocalOption {
	return func(s *LocalStore) { s.fsync = enabled }
}

// WithDropCache makes Close advise the kernel to evict the written pages.
// It is a no-op on platforms without posix_fadvise.
func WithDropCache(enabled bool) LocalOption {
	return func(s *LocalStore) { s.dropCache = enabled }
}

// NewLocalStore returns a store resolving relative names against root.
// An empty root means the working directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file path for name.
func (s *LocalStore) Path(name string) string {
	if s.root == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.root, name)
}

// Create implements Store. Missing parent directories are created and the
// file is opened write-only, created with mode 0644 or truncated.
func (s *LocalStore) Create(ctx context.Context, name string) (Sink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.Path(name)
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return &localSink{f: f, fsync: s.fsync, dropCache: s.dropCache}, nil
}

// Open implements Store.
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return f, err
}

// FreeSpace returns the bytes available to unprivileged users on the file
// system that would hold name.
func (s *LocalStore) FreeSpace(name string) (uint64, error) {
	dir := sysmon.ExistingDir(s.Path(name))
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, fmt.Errorf("disk usage of %s: %w", dir, err)
	}
	return usage.Free, nil
}

type localSink struct {
	f         *os.File
	fsync     bool
	dropCache bool

	mu     sync.Mutex
	closed bool
}

func (s *localSink) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

func (s *localSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	var errs []error
	if s.fsync {
		errs = append(errs, s.f.Sync())
	}
	if s.dropCache {
		// Best effort: the data is already written.
		_ = dropCache(s.f)
	}
	errs = append(errs, s.f.Close())
	return errors.Join(errs...)
}

// Abort closes the file and keeps whatever was written.
func (s *localSink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}
