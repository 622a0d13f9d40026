package server

import (
	"context"
	nethttp "net/http"
	"net/url"

	"trooba-http-transport/application/callctx"
	"trooba-http-transport/application/http"

	"github.com/pkg/errors"
)

// Pipeline processes inbound calls.
// Handle is called once per call, concurrently across calls.
type Pipeline interface {
	Handle(ctx context.Context, call *callctx.Context, request *Request) (*http.Response, error)
}

type PipelineFunc func(ctx context.Context, call *callctx.Context, request *Request) (*http.Response, error)

func (f PipelineFunc) Handle(ctx context.Context, call *callctx.Context, request *Request) (*http.Response, error) {
	return f(ctx, call, request)
}

// Request is what a pipeline receives for one inbound call.
type Request struct {
	Query url.Values

	// Body holds the query parameters: a string for a single value,
	// a []string for repeated ones. The raw body stays unread on Raw.
	Body map[string]any

	Raw *nethttp.Request
}

type HandleContext struct {
	ctx     context.Context
	call    *callctx.Context
	request *Request
}

func (c *HandleContext) doHandle(pipeline Pipeline) (res *http.Response, err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("pipeline panicked: %v", e)
		}
	}()

	res, err = pipeline.Handle(c.ctx, c.call, c.request)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("nil response is forbidden")
	}

	return res, nil
}

func newRequest(r *nethttp.Request) *Request {
	query := r.URL.Query()
	return &Request{
		Query: query,
		Body:  flattenQuery(query),
		Raw:   r,
	}
}

func flattenQuery(query url.Values) map[string]any {
	body := make(map[string]any, len(query))
	for k, v := range query {
		switch len(v) {
		case 0:
		case 1:
			body[k] = v[0]
		default:
			body[k] = append([]string(nil), v...)
		}
	}
	return body
}
