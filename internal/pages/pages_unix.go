//go:build unix

package pages

import (
	"errors"

	"golang.org/x/sys/unix"
)

// reserve maps size bytes of inaccessible anonymous memory. Pages become
// readable and writable one at a time through commit.
func reserve(size int) ([]byte, func([]byte) error, func() error, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, nil, err
	}
	commit := func(b []byte) error {
		return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
	}
	release := func() error {
		err := unix.Munmap(mem)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return mem, commit, release, nil
}
