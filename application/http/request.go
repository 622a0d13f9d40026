package http

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"trooba-http-transport/application/http/timeout"

	"github.com/pkg/errors"
)

var ErrMissingHost = errors.New("hostname is required")

const ContentTypeJSON = "application/json"

// Request is used both as static endpoint configuration and as a per-call
// request. Zero fields mean "not set".
type Request struct {
	Protocol string
	Hostname string
	Port     int
	Method   string

	// Path is an alias of Pathname and wins when both are set.
	// Either may carry a query string.
	Path     string
	Pathname string
	Query    url.Values

	// Body is an alias of Payload and wins when both are set.
	Body    any
	Payload any

	Headers map[string]string

	Timeout timeout.Spec

	// JSON enables encoding of structured payloads and decoding of response bodies.
	JSON *bool
}

// Merge applies every field set on call over config.
// Headers and query values are merged key by key.
func Merge(config, call Request) Request {
	merged := config

	overrideString(&merged.Protocol, call.Protocol)
	overrideString(&merged.Hostname, call.Hostname)
	overrideString(&merged.Method, call.Method)
	overrideString(&merged.Path, call.Path)
	overrideString(&merged.Pathname, call.Pathname)

	if call.Port != 0 {
		merged.Port = call.Port
	}
	if call.Body != nil {
		merged.Body = call.Body
	}
	if call.Payload != nil {
		merged.Payload = call.Payload
	}
	if call.JSON != nil {
		merged.JSON = call.JSON
	}

	merged.Timeout = config.Timeout.Override(call.Timeout)

	merged.Query = make(url.Values, len(config.Query)+len(call.Query))
	for k, v := range config.Query {
		merged.Query[k] = append([]string(nil), v...)
	}
	for k, v := range call.Query {
		merged.Query[k] = append([]string(nil), v...)
	}

	merged.Headers = make(map[string]string, len(config.Headers)+len(call.Headers))
	for k, v := range config.Headers {
		merged.Headers[nethttp.CanonicalHeaderKey(k)] = v
	}
	for k, v := range call.Headers {
		merged.Headers[nethttp.CanonicalHeaderKey(k)] = v
	}

	return merged
}

func overrideString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Normalize resolves the Path and Body aliases.
func (r Request) Normalize() Request {
	if r.Body != nil {
		r.Payload = r.Body
	}
	if r.Path != "" {
		r.Pathname = r.Path
	}
	r.Body, r.Path = nil, ""
	return r
}

func (r Request) IsJSON() bool { return r.JSON != nil && *r.JSON }

// MethodOrDefault returns the upper-cased method, GET if unset.
func (r Request) MethodOrDefault() string {
	if r.Method == "" {
		return nethttp.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// URL builds the target locator. It expects a normalized request.
func (r Request) URL() (*url.URL, error) {
	if r.Hostname == "" {
		return nil, ErrMissingHost
	}

	scheme := strings.TrimSuffix(strings.ToLower(r.Protocol), ":")
	if scheme == "" {
		scheme = "http"
	}

	host := strings.TrimSuffix(strings.TrimPrefix(r.Hostname, "["), "]")
	if r.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(r.Port))
	} else if strings.Contains(host, ":") {
		// Bare IPv6 literal.
		host = "[" + host + "]"
	}

	path, rawQuery, _ := strings.Cut(r.Pathname, "?")
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, errors.Wrap(err, "parsing query of path")
	}
	maps.Copy(query, r.Query)

	u := &url.URL{
		Scheme:   scheme,
		Host:     host,
		RawQuery: query.Encode(),
	}
	// Percent-encoded bytes in the pathname are sent as given.
	if unescaped, err := url.PathUnescape(path); err == nil {
		u.Path, u.RawPath = unescaped, path
	} else {
		u.Path = path
	}
	return u, nil
}

// EncodePayload turns the payload into a request body.
// Raw payloads ([]byte, string, io.Reader) are sent as they are,
// anything else is encoded as JSON and contentType is set accordingly.
func (r Request) EncodePayload() (body io.Reader, contentType string, err error) {
	switch p := r.Payload.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(p), "", nil
	case string:
		return strings.NewReader(p), "", nil
	case io.Reader:
		return p, "", nil
	}

	b, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding payload as json")
	}
	return bytes.NewReader(b), ContentTypeJSON, nil
}
