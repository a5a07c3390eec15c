//go:build linux

package sink

import (
	"os"

	"golang.org/x/sys/unix"
)

// dropCache evicts the file's pages from the page cache so that benchmark
// files do not stay resident after they are written.
func dropCache(f *os.File) error {
	return unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
