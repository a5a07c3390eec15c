package verify

import (
	"bytes"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSuffix(t *testing.T) {
	t.Parallel()
	good := generate(t, 1<<16)
	terms := int64(bytes.Count(good, []byte{'\n'}) + 1)

	flipped := bytes.Clone(good)
	flipped[100] = 'x'

	tests := []struct {
		name      string
		content   []byte
		wantTerms int64
		wantMatch bool
	}{
		{"Empty", nil, 0, true},
		{"Single term", []byte("0"), 1, true},
		{"Short stream", []byte("0\n1\n1\n2\n3\n5\n8\n13"), 8, true},
		{"Full stream", good, terms, true},
		{"Damage before the last term", flipped, terms, true},
		{"Truncated last term", []byte("0\n1\n1\n2\n3\n5\n8\n1"), 8, false},
		{"Missing term", []byte("0\n1\n2\n3"), 4, false},
		{"Trailing separator", []byte("0\n1\n"), 3, false},
		{"Leading zero", []byte("0\n1\n01"), 3, false},
		{"Not a number", []byte("0\n1\nx"), 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rep, err := CheckSuffix(bytes.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, SuffixReport{Terms: tt.wantTerms, Match: tt.wantMatch}, rep)
		})
	}
}

func TestCheckSuffix_ByteAtATime(t *testing.T) {
	t.Parallel()
	good := generate(t, 10_000)

	rep, err := CheckSuffix(iotest.OneByteReader(bytes.NewReader(good)))
	require.NoError(t, err)
	assert.True(t, rep.Match)
	assert.Equal(t, int64(bytes.Count(good, []byte{'\n'})+1), rep.Terms)
}

func TestCheckSuffix_ReadError(t *testing.T) {
	t.Parallel()
	_, err := CheckSuffix(iotest.ErrReader(iotest.ErrTimeout))
	assert.ErrorIs(t, err, iotest.ErrTimeout)
}
