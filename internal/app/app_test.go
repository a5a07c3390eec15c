package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/fibonacci"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/sink"
)

func newTestApp(t *testing.T, store sink.Store, args ...string) *Application {
	t.Helper()
	full := append([]string{"fibfill", "--no-color"}, args...)
	a, err := New(full, io.Discard, WithStore(store), WithLogWriter(io.Discard))
	require.NoError(t, err)
	return a
}

func TestHasVersionFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"--version"}, true},
		{[]string{"-V"}, true},
		{[]string{"-version"}, true},
		{[]string{"--file", "--version"}, false},
		{[]string{"-v"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasVersionFlag(tt.args), "args %q", tt.args)
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintVersion(&buf)
	assert.Contains(t, buf.String(), "fibfill "+Version)
	assert.Contains(t, buf.String(), "go:")
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("Flags", func(t *testing.T) {
		t.Parallel()
		a, err := New([]string{"fibfill", "--file", "x.txt", "--size", "3", "--unit", "k"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "x.txt", a.Config.File)
		assert.NotNil(t, a.Factory)
	})

	t.Run("Help", func(t *testing.T) {
		t.Parallel()
		_, err := New([]string{"fibfill", "--help"}, io.Discard)
		assert.True(t, IsHelpError(err))
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Parallel()
		_, err := New([]string{"fibfill", "--unit", "x"}, io.Discard)
		require.Error(t, err)
		assert.False(t, IsHelpError(err))
		assert.Equal(t, apperrors.ExitErrorConfig, apperrors.ExitCodeFor(err))
	})
}

func TestWithFactory(t *testing.T) {
	t.Parallel()

	f := fibonacci.NewGeneratorFactory()
	require.NoError(t, f.Register("decimal", func() fibonacci.Generator { return fibonacci.NewBigGenerator() }))

	store := sink.NewMemoryStore()
	a, err := New([]string{"fibfill", "--no-color", "-q", "--size", "20", "--unit", "b"}, io.Discard,
		WithFactory(f), WithStore(store), WithLogWriter(io.Discard))
	require.NoError(t, err)
	require.Same(t, f, a.Factory)

	require.Equal(t, apperrors.ExitSuccess, a.Run(context.Background(), io.Discard))
	data, _ := store.Bytes("fib.txt")
	assert.Equal(t, "0\n1\n1\n2\n3\n5\n8\n13\n21", string(data))
}

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, sink.NewMemoryStore(), "--completion", "bash")
	var out bytes.Buffer
	assert.Equal(t, apperrors.ExitSuccess, a.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "fibfill")

	a = newTestApp(t, sink.NewMemoryStore(), "--completion", "tcsh")
	assert.Equal(t, apperrors.ExitErrorConfig, a.Run(context.Background(), io.Discard))
}

func TestRunSingleDestination(t *testing.T) {
	t.Parallel()

	store := sink.NewMemoryStore()
	a := newTestApp(t, store, "--file", "fib.txt", "--size", "6", "--unit", "b")
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)

	require.Equal(t, apperrors.ExitSuccess, code, out.String())
	data, ok := store.Bytes("fib.txt")
	require.True(t, ok)
	assert.Equal(t, "0\n1\n1", string(data))
	assert.Contains(t, out.String(), "--- Summary ---")
	assert.Contains(t, out.String(), "Execution mode")
}

func TestRunQuietStop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		size      string
		wantOut   string
		wantNames []string
	}{
		// Each file is capped at size/3 bytes.
		{"Capped split size", "10", "9 3/3\n", []string{"out-0.txt", "out-1.txt", "out-2.txt"}},
		{"Zero budget skips", "2", "0 0/3\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := sink.NewMemoryStore()
			a := newTestApp(t, store, "--file", "out", "--size", tt.size, "--unit", "b",
				"--split", "3", "--splitsize", "6", "--splitunit", "b", "--stop", "-q")
			var out bytes.Buffer
			code := a.Run(context.Background(), &out)

			require.Equal(t, apperrors.ExitSuccess, code)
			assert.Equal(t, tt.wantOut, out.String())
			assert.ElementsMatch(t, tt.wantNames, store.Names())
			for _, name := range tt.wantNames {
				data, _ := store.Bytes(name)
				assert.Equal(t, "0\n1", string(data), name)
			}
		})
	}
}

func TestRunVerify(t *testing.T) {
	t.Parallel()

	store := sink.NewMemoryStore()
	a := newTestApp(t, store, "--file", "out", "--size", "2", "--unit", "k",
		"--split", "2", "--splitsize", "1", "--splitunit", "k", "--verify", "--algo", "big")
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)

	require.Equal(t, apperrors.ExitSuccess, code, out.String())
	assert.Contains(t, out.String(), "--- Verification ---")
	assert.Equal(t, 2, strings.Count(out.String(), "✓"))
}

// tamperingStore returns every destination with its first byte replaced.
type tamperingStore struct {
	*sink.MemoryStore
}

func (s tamperingStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := s.Bytes(name)
	if !ok {
		return nil, sink.ErrNotFound
	}
	data = bytes.Clone(data)
	data[0] = '9'
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestRunVerifyMismatch(t *testing.T) {
	t.Parallel()

	store := tamperingStore{sink.NewMemoryStore()}
	a := newTestApp(t, store, "--file", "fib.txt", "--size", "100", "--unit", "b", "--verify")
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)

	assert.Equal(t, apperrors.ExitErrorMismatch, code, out.String())
	assert.Contains(t, out.String(), "first difference at byte 0")
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := sink.NewMemoryStore()
	a := newTestApp(t, store, "--file", "fib.txt", "--size", "1", "--unit", "m")
	var out bytes.Buffer
	code := a.Run(ctx, &out)

	assert.Equal(t, apperrors.ExitErrorCanceled, code)
	assert.Contains(t, out.String(), "Canceled after")
	assert.Empty(t, store.Names())
}

func TestRunQuietErrorGoesToErrWriter(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errOut bytes.Buffer
	a, err := New([]string{"fibfill", "--no-color", "-q"}, &errOut,
		WithStore(sink.NewMemoryStore()), WithLogWriter(io.Discard))
	require.NoError(t, err)

	var out bytes.Buffer
	code := a.Run(ctx, &out)
	assert.Equal(t, apperrors.ExitErrorCanceled, code)
	assert.Equal(t, "0 0/1\n", out.String())
	assert.Contains(t, errOut.String(), "Canceled")
}

func TestRunThrottled(t *testing.T) {
	t.Parallel()

	store := sink.NewMemoryStore()
	a := newTestApp(t, store, "--file", "fib.txt", "--size", "4", "--unit", "k", "--rate", "1m", "-q")
	require.Equal(t, apperrors.ExitSuccess, a.Run(context.Background(), io.Discard))
	data, ok := store.Bytes("fib.txt")
	require.True(t, ok)
	assert.LessOrEqual(t, len(data), 4096)
	assert.True(t, strings.HasPrefix(string(data), "0\n1\n1\n2\n3\n5\n8\n13"))
}

func TestBuildStore(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, sink.NewMemoryStore(), "--file", "s3://bucket/key")
	store, local, err := a.buildStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Nil(t, local, "an injected store replaces the local one")

	a.store = nil
	_, local, err = a.buildStore()
	require.NoError(t, err)
	assert.NotNil(t, local)
}

func TestFirstLocal(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{Destinations: []plan.Destination{
		{Index: 1, Name: "s3://bucket/a.txt"},
		{Index: 2, Name: "data/b.txt"},
	}}
	name, ok := firstLocal(p)
	assert.True(t, ok)
	assert.Equal(t, "data/b.txt", name)

	_, ok = firstLocal(&plan.Plan{Destinations: p.Destinations[:1]})
	assert.False(t, ok)
}
