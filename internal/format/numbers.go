package format

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatNumberString inserts thousands separators into a decimal string.
// A leading minus sign is preserved.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return prefix + s
	}

	var b strings.Builder
	b.Grow(len(prefix) + len(s) + len(s)/3)
	b.WriteString(prefix)
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatBytes renders a byte count with binary units ("1.0 MiB").
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// FormatByteCount is FormatBytes for signed counters; negatives render as 0 B.
func FormatByteCount(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatRate renders a throughput in bytes per second.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}
