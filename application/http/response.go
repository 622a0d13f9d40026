package http

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/pkg/errors"
)

// Response is a fully buffered response. Body is never a stream.
type Response struct {
	Status  int
	Headers nethttp.Header
	Body    []byte

	// Value is the decoded body when JSON mode is enabled.
	Value any
}

func (r *Response) Header(key string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

func (r *Response) String() string { return string(r.Body) }

// Text builds a plain response.
func Text(status int, body string) *Response {
	return &Response{Status: status, Body: []byte(body)}
}

// JSON builds a response with v encoded as its body.
func JSON(status int, v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding response body")
	}

	h := make(nethttp.Header)
	h.Set("Content-Type", ContentTypeJSON)
	return &Response{Status: status, Headers: h, Body: b}, nil
}

// DecodeJSON fills Value from Body. Empty bodies leave Value nil.
func (r *Response) DecodeJSON() error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, &r.Value); err != nil {
		return errors.Wrap(err, "decoding response body as json")
	}
	return nil
}
