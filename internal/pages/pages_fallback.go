//go:build !unix && !windows

package pages

// reserve allocates the whole region from the Go heap when no virtual memory
// API is available.
func reserve(size int) ([]byte, func([]byte) error, func() error, error) {
	mem := make([]byte, size)
	return mem, func([]byte) error { return nil }, func() error { return nil }, nil
}
