package iolib

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAll(t *testing.T) {
	testcases := []struct {
		desc    string
		input   string
		limit   uint
		wantErr error
	}{
		{desc: "unbounded", input: "hello world", limit: 0},
		{desc: "under limit", input: "hello", limit: 10},
		{desc: "exact limit", input: "hello", limit: 5},
		{desc: "over limit", input: "hello world", limit: 5, wantErr: ErrBodyTooLarge},
		{desc: "empty", input: "", limit: 1},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := ReadAll(bytes.NewReader([]byte(tc.input)), tc.limit)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.input, string(got))
		})
	}
}

func TestLimitedReaderPassesError(t *testing.T) {
	r := LimitReader(io.MultiReader(bytes.NewReader([]byte("ab")), errReader{}), 2)

	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
