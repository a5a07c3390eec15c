package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{"fib.txt", Location{Key: "fib.txt"}, false},
		{"/tmp/out/fib-0.txt", Location{Key: "/tmp/out/fib-0.txt"}, false},
		{"s3://bucket/run/fib-1.txt", Location{Scheme: "s3", Bucket: "bucket", Key: "run/fib-1.txt"}, false},
		{"MINIO://b/k", Location{Scheme: "minio", Bucket: "b", Key: "k"}, false},
		{"s3://bucket", Location{}, true},
		{"s3://bucket/", Location{}, true},
		{"://bucket/key", Location{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLocation(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRouter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local := NewMemoryStore()
	remote := NewMemoryStore()
	builds := 0

	r := NewRouter(local)
	r.Register("s3", func(_ context.Context, bucket string) (Store, error) {
		builds++
		assert.Equal(t, "bucket", bucket)
		return remote, nil
	})
	r.Register("minio", func(context.Context, string) (Store, error) {
		return nil, errors.New("no credentials")
	})

	for _, name := range []string{"s3://bucket/a.txt", "s3://bucket/b.txt", "local.txt"} {
		s, err := r.Create(ctx, name)
		require.NoError(t, err)
		_, err = s.Write([]byte(name))
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	assert.Equal(t, 1, builds, "bucket stores are cached")
	assert.Equal(t, []string{"a.txt", "b.txt"}, remote.Names())
	assert.Equal(t, []string{"local.txt"}, local.Names())

	rc, err := r.Open(ctx, "s3://bucket/a.txt")
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	_, err = r.Create(ctx, "gs://bucket/x")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = r.Create(ctx, "minio://bucket/x")
	assert.ErrorContains(t, err, "no credentials")
}

func TestLocationString(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"fib.txt", "s3://bucket/run/fib-1.txt"} {
		loc, err := ParseLocation(name)
		require.NoError(t, err)
		assert.Equal(t, name, loc.String())
	}
}
