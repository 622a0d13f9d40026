package iolib

import "io"

// ReadAll buffers r fully. A zero limit means unbounded.
func ReadAll(r io.Reader, limit uint) ([]byte, error) {
	if limit > 0 {
		r = LimitReader(r, limit)
	}
	return io.ReadAll(r)
}
