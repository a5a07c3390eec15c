package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Location is a parsed destination name.
type Location struct {
	// Scheme is empty for local paths.
	Scheme string
	Bucket string
	// Key is the object key, or the path for local destinations.
	Key string
}

// String returns the destination name Location was parsed from.
func (l Location) String() string {
	if l.Scheme == "" {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// IsLocal reports whether the location is a local path.
func (l Location) IsLocal() bool { return l.Scheme == "" }

// ParseLocation splits "scheme://bucket/key". Names without "://" are local
// paths. Remote names need both a bucket and a key.
func ParseLocation(name string) (Location, error) {
	scheme, rest, ok := strings.Cut(name, "://")
	if !ok {
		return Location{Key: name}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if scheme == "" || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("invalid destination %q: want scheme://bucket/key", name)
	}
	return Location{Scheme: strings.ToLower(scheme), Bucket: bucket, Key: key}, nil
}

// BucketStoreFunc builds the store serving one bucket of a scheme.
type BucketStoreFunc func(ctx context.Context, bucket string) (Store, error)

// Router dispatches destination names to the local store or to a remote
// store chosen by URL scheme. Remote stores are built on first use and
// cached per bucket.
type Router struct {
	local   Store
	schemes map[string]BucketStoreFunc

	mu      sync.Mutex
	buckets map[string]Store
}

// NewRouter returns a router sending local paths to local.
func NewRouter(local Store) *Router {
	return &Router{
		local:   local,
		schemes: make(map[string]BucketStoreFunc),
		buckets: make(map[string]Store),
	}
}

// Register installs the store constructor for scheme.
func (r *Router) Register(scheme string, fn BucketStoreFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[strings.ToLower(scheme)] = fn
}

// Resolve returns the store and the store-relative name for a destination.
func (r *Router) Resolve(ctx context.Context, name string) (Store, string, error) {
	loc, err := ParseLocation(name)
	if err != nil {
		return nil, "", err
	}
	if loc.IsLocal() {
		return r.local, loc.Key, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cacheKey := loc.Scheme + "://" + loc.Bucket
	if s, ok := r.buckets[cacheKey]; ok {
		return s, loc.Key, nil
	}
	fn, ok := r.schemes[loc.Scheme]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, loc.Scheme)
	}
	s, err := fn(ctx, loc.Bucket)
	if err != nil {
		return nil, "", fmt.Errorf("%s store for bucket %q: %w", loc.Scheme, loc.Bucket, err)
	}
	r.buckets[cacheKey] = s
	return s, loc.Key, nil
}

// Create implements Store.
func (r *Router) Create(ctx context.Context, name string) (Sink, error) {
	s, key, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, key)
}

// Open implements Store.
func (r *Router) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s, key, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, key)
}

var (
	_ Store = (*LocalStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*ThrottledStore)(nil)
	_ Store = (*Router)(nil)
)
