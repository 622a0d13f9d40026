package http

import (
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"trooba-http-transport/application/http/timeout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestMerge(t *testing.T) {
	config := Request{
		Protocol: "http:",
		Hostname: "www.trooba.xc",
		Port:     8080,
		Method:   "GET",
		Pathname: "/base",
		Query:    url.Values{"a": {"1"}, "b": {"2"}},
		Headers:  map[string]string{"x-foo": "config", "x-keep": "yes"},
		Timeout:  timeout.Spec{Generic: time.Second, Connect: time.Minute},
		JSON:     boolPtr(true),
	}
	call := Request{
		Method:  "POST",
		Path:    "/user",
		Query:   url.Values{"b": {"3"}},
		Body:    map[string]any{"q": "nike"},
		Headers: map[string]string{"X-Foo": "call"},
		Timeout: timeout.Spec{Connect: time.Millisecond, Socket: time.Hour},
	}

	got := Merge(config, call)

	assert.Equal(t, "http:", got.Protocol)
	assert.Equal(t, "www.trooba.xc", got.Hostname)
	assert.Equal(t, 8080, got.Port)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "/user", got.Path)
	assert.Equal(t, "/base", got.Pathname)
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"3"}}, got.Query)
	assert.Equal(t, map[string]any{"q": "nike"}, got.Body)
	assert.Equal(t, map[string]string{"X-Foo": "call", "X-Keep": "yes"}, got.Headers)
	assert.Equal(t, timeout.Spec{Generic: time.Second, Connect: time.Millisecond, Socket: time.Hour}, got.Timeout)
	assert.True(t, got.IsJSON())

	// Inputs stay untouched.
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"2"}}, config.Query)
	assert.Equal(t, "config", config.Headers["x-foo"])
}

func TestMergeJSONOverride(t *testing.T) {
	got := Merge(Request{JSON: boolPtr(true)}, Request{JSON: boolPtr(false)})
	assert.False(t, got.IsJSON())

	got = Merge(Request{JSON: boolPtr(true)}, Request{})
	assert.True(t, got.IsJSON())
}

func TestNormalize(t *testing.T) {
	got := Request{Path: "/p", Pathname: "/ignored", Body: "b", Payload: "ignored"}.Normalize()
	assert.Equal(t, "/p", got.Pathname)
	assert.Equal(t, "b", got.Payload)
	assert.Empty(t, got.Path)
	assert.Nil(t, got.Body)

	got = Request{Pathname: "/kept", Payload: "kept"}.Normalize()
	assert.Equal(t, "/kept", got.Pathname)
	assert.Equal(t, "kept", got.Payload)
}

func TestURL(t *testing.T) {
	testcases := []struct {
		desc     string
		req      Request
		expected string
	}{
		{
			desc:     "defaults",
			req:      Request{Hostname: "www.trooba.xc", Query: url.Values{"q": {"nike"}}},
			expected: "http://www.trooba.xc/?q=nike",
		},
		{
			desc:     "protocol with colon and port",
			req:      Request{Protocol: "HTTPS:", Hostname: "localhost", Port: 8443, Pathname: "user"},
			expected: "https://localhost:8443/user",
		},
		{
			desc:     "query in pathname merged",
			req:      Request{Hostname: "h", Pathname: "/a?x=1&q=old", Query: url.Values{"q": {"new"}}},
			expected: "http://h/a?q=new&x=1",
		},
		{
			desc:     "ipv6 literal",
			req:      Request{Hostname: "::1", Pathname: "/"},
			expected: "http://[::1]/",
		},
		{
			desc:     "ipv6 literal with port",
			req:      Request{Hostname: "::1", Port: 80},
			expected: "http://[::1]:80/",
		},
		{
			desc:     "bracketed ipv6 literal",
			req:      Request{Hostname: "[::1]"},
			expected: "http://[::1]/",
		},
		{
			desc:     "bracketed ipv6 literal with port",
			req:      Request{Hostname: "[::1]", Port: 8080},
			expected: "http://[::1]:8080/",
		},
		{
			desc:     "encoded pathname kept",
			req:      Request{Hostname: "example.test", Pathname: "/a%20b/c"},
			expected: "http://example.test/a%20b/c",
		},
		{
			desc:     "encoded slash kept",
			req:      Request{Hostname: "example.test", Pathname: "/a%2Fb?q=1"},
			expected: "http://example.test/a%2Fb?q=1",
		},
		{
			desc:     "raw space escaped",
			req:      Request{Hostname: "example.test", Pathname: "/a b"},
			expected: "http://example.test/a%20b",
		},
		{
			desc:     "invalid escape sent literally",
			req:      Request{Hostname: "example.test", Pathname: "/100%"},
			expected: "http://example.test/100%25",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := tc.req.URL()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u.String())
		})
	}
}

func TestURLMissingHost(t *testing.T) {
	_, err := Request{}.URL()
	assert.ErrorIs(t, err, ErrMissingHost)
}

func TestMethodOrDefault(t *testing.T) {
	assert.Equal(t, "GET", Request{}.MethodOrDefault())
	assert.Equal(t, "PATCH", Request{Method: "patch"}.MethodOrDefault())
}

func TestEncodePayload(t *testing.T) {
	testcases := []struct {
		desc        string
		payload     any
		expected    string
		contentType string
		nilBody     bool
	}{
		{desc: "nil", payload: nil, nilBody: true},
		{desc: "bytes", payload: []byte("raw"), expected: "raw"},
		{desc: "string", payload: "text", expected: "text"},
		{desc: "reader", payload: strings.NewReader("stream"), expected: "stream"},
		{desc: "object", payload: map[string]any{"q": "nike"}, expected: `{"q":"nike"}`, contentType: ContentTypeJSON},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			body, ct, err := Request{Payload: tc.payload}.EncodePayload()
			require.NoError(t, err)
			assert.Equal(t, tc.contentType, ct)
			if tc.nilBody {
				assert.Nil(t, body)
				return
			}
			b, err := io.ReadAll(body)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(b))
		})
	}
}

func TestEncodePayloadError(t *testing.T) {
	_, _, err := Request{Payload: make(chan int)}.EncodePayload()
	assert.Error(t, err)
}
