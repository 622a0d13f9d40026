package iolib

import (
	"io"

	"github.com/pkg/errors"
)

var ErrBodyTooLarge = errors.New("body exceeds limit")

// LimitReader creates new [LimitedReader]
func LimitReader(r io.Reader, n uint) io.Reader { return &LimitedReader{R: r, N: n} }

// LimitedReader is like [io.LimitedReader], except that reading past the
// limit fails with [ErrBodyTooLarge] instead of a silent EOF.
type LimitedReader struct {
	R io.Reader // underlying reader
	N uint      // max bytes remaining
}

func (l *LimitedReader) Read(p []byte) (n int, err error) {
	if l.N == 0 {
		// Peek one byte to tell EOF from overflow.
		var one [1]byte
		n, err := l.R.Read(one[:])
		if n > 0 {
			return 0, ErrBodyTooLarge
		}
		return 0, err
	}
	if uint(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= uint(n)
	return
}
