package verify

import (
	"bytes"
	"io"
	"strconv"

	"github.com/agbru/fibfill/internal/fibonacci"
)

// SuffixReport is the outcome of CheckSuffix.
type SuffixReport struct {
	// Terms is the number of terms in the stream.
	Terms int64
	// Match is true when the last term ends with the trailing digits of
	// F(Terms-1). An empty stream matches.
	Match bool
}

// CheckSuffix reads r once and checks the trailing digits of its last term
// against F(n) mod 10^k, where n is inferred from the separator count. It
// never regenerates the stream, so it catches truncation and a wrong term
// count but not corruption before the last term.
func CheckSuffix(r io.Reader) (SuffixReport, error) {
	var s suffixScanner
	if _, err := io.Copy(&s, r); err != nil {
		return SuffixReport{}, err
	}
	return s.report(), nil
}

// suffixScanner keeps the separator count and the tail of the current term.
type suffixScanner struct {
	size    int64
	seps    int64
	termLen int64
	first   byte
	tail    []byte
}

func (s *suffixScanner) Write(p []byte) (int, error) {
	s.size += int64(len(p))
	seg := p
	if i := bytes.LastIndexByte(p, '\n'); i >= 0 {
		s.seps += int64(bytes.Count(p, []byte{'\n'}))
		s.termLen = 0
		s.tail = s.tail[:0]
		seg = p[i+1:]
	}
	if len(seg) == 0 {
		return len(p), nil
	}
	if s.termLen == 0 {
		s.first = seg[0]
	}
	s.termLen += int64(len(seg))
	if len(seg) > fibonacci.MaxSuffixDigits {
		seg = seg[len(seg)-fibonacci.MaxSuffixDigits:]
	}
	s.tail = append(s.tail, seg...)
	if extra := len(s.tail) - fibonacci.MaxSuffixDigits; extra > 0 {
		s.tail = append(s.tail[:0], s.tail[extra:]...)
	}
	return len(p), nil
}

func (s *suffixScanner) report() SuffixReport {
	if s.size == 0 {
		return SuffixReport{Match: true}
	}
	rep := SuffixReport{Terms: s.seps + 1}
	if s.termLen == 0 || (s.termLen > 1 && s.first == '0') {
		return rep
	}
	got, err := strconv.ParseUint(string(s.tail), 10, 64)
	if err != nil {
		return rep
	}
	want, err := fibonacci.LastDigits(uint64(s.seps), len(s.tail))
	if err != nil {
		return rep
	}
	rep.Match = got == want
	return rep
}
