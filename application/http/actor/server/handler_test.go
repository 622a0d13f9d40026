package server

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"trooba-http-transport/application/callctx"
	"trooba-http-transport/application/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type HandleContextTestSuite struct {
	suite.Suite

	ctx     context.Context
	call    *callctx.Context
	request *Request

	hctx *HandleContext
}

func TestHandleContextTestSuite(t *testing.T) {
	suite.Run(t, new(HandleContextTestSuite))
}

func (s *HandleContextTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.call = callctx.New(map[string]any{"foo": "bar"})
	s.request = newRequest(httptest.NewRequest(nethttp.MethodGet, "/?q=nike", nil))

	s.hctx = &HandleContext{
		ctx:     s.ctx,
		call:    s.call,
		request: s.request,
	}
}

func (s *HandleContextTestSuite) TestDoHandle() {
	pipeline := PipelineFunc(func(ctx context.Context, call *callctx.Context, request *Request) (*http.Response, error) {
		s.Equal(s.ctx, ctx)
		s.Same(s.call, call)
		s.Same(s.request, request)
		return http.Text(nethttp.StatusOK, "ok"), nil
	})

	res, err := s.hctx.doHandle(pipeline)
	s.NoError(err)
	s.Equal(http.Text(nethttp.StatusOK, "ok"), res)
}

func (s *HandleContextTestSuite) TestDoHandleError() {
	expected := errors.New("boom")
	pipeline := PipelineFunc(func(context.Context, *callctx.Context, *Request) (*http.Response, error) {
		return http.Text(nethttp.StatusOK, "ignored"), expected
	})

	res, err := s.hctx.doHandle(pipeline)
	s.ErrorIs(err, expected)
	s.Nil(res)
}

func (s *HandleContextTestSuite) TestDoHandleNilResponse() {
	pipeline := PipelineFunc(func(context.Context, *callctx.Context, *Request) (*http.Response, error) {
		return nil, nil
	})

	_, err := s.hctx.doHandle(pipeline)
	s.Error(err)
}

func (s *HandleContextTestSuite) TestDoHandlePanic() {
	pipeline := PipelineFunc(func(context.Context, *callctx.Context, *Request) (*http.Response, error) {
		panic("oops")
	})

	_, err := s.hctx.doHandle(pipeline)
	s.ErrorContains(err, "pipeline panicked: oops")
}

func TestFlattenQuery(t *testing.T) {
	testcases := []struct {
		desc     string
		query    url.Values
		expected map[string]any
	}{
		{desc: "empty", query: url.Values{}, expected: map[string]any{}},
		{desc: "single", query: url.Values{"q": {"nike"}}, expected: map[string]any{"q": "nike"}},
		{
			desc:     "repeated",
			query:    url.Values{"tag": {"a", "b"}, "q": {""}},
			expected: map[string]any{"tag": []string{"a", "b"}, "q": ""},
		},
		{desc: "no values", query: url.Values{"x": nil}, expected: map[string]any{}},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, flattenQuery(tc.query))
		})
	}
}

func TestNewRequest(t *testing.T) {
	raw := httptest.NewRequest(nethttp.MethodPost, "/path?a=1&a=2&b=x", nil)
	request := newRequest(raw)

	assert.Same(t, raw, request.Raw)
	assert.Equal(t, url.Values{"a": {"1", "2"}, "b": {"x"}}, request.Query)
	assert.Equal(t, map[string]any{"a": []string{"1", "2"}, "b": "x"}, request.Body)
}
