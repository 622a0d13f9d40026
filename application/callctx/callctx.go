// Package callctx holds the application state threaded through one
// request/response exchange.
//
// A [Context] is split into two parts: Public values, which may travel over the
// wire through a propagation codec, and [Metadata], which never leaves the
// process.
package callctx

import (
	"maps"
	"net/http"
	"slices"
)

type unset struct{}

func (unset) String() string { return "<unset>" }

// Unset marks a public key as deleted.
// Codecs send it to the peer as a tombstone instead of a value.
var Unset any = unset{}

// IsUnset reports whether v is the [Unset] sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// Metadata is call-scoped state that is never propagated.
type Metadata struct {
	// Path is the request path without its query string.
	// Query values are handed to the pipeline separately.
	Path      string
	Operation string

	RawRequest *http.Request

	// Server marks contexts created by an inbound call.
	// Such contexts must not be used to issue outbound calls.
	Server bool

	CallID string
}

// Context is owned by exactly one call and is not safe for concurrent use.
type Context struct {
	Public map[string]any
	Meta   Metadata
}

func New(public map[string]any) *Context {
	c := &Context{Public: make(map[string]any, len(public))}
	maps.Copy(c.Public, public)
	return c
}

func (c *Context) ensure() {
	if c.Public == nil {
		c.Public = make(map[string]any)
	}
}

// Get returns the live value for key. Deleted keys are reported as missing.
func (c *Context) Get(key string) (value any, ok bool) {
	value, ok = c.Public[key]
	if !ok || IsUnset(value) {
		return nil, false
	}
	return value, true
}

func (c *Context) Set(key string, value any) {
	c.ensure()
	c.Public[key] = value
}

// Delete marks key as deleted so that the deletion reaches the peer.
func (c *Context) Delete(key string) {
	c.Set(key, Unset)
}

// Remove drops key locally without leaving a tombstone.
func (c *Context) Remove(key string) {
	delete(c.Public, key)
}

// Merge overwrites public values with the given ones.
func (c *Context) Merge(values map[string]any) {
	c.ensure()
	maps.Copy(c.Public, values)
}

// Snapshot returns a copy of the live public values.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.Public))
	for k, v := range c.Public {
		if IsUnset(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Deleted returns the sorted keys currently marked with [Unset].
func (c *Context) Deleted() []string {
	var keys []string
	for k, v := range c.Public {
		if IsUnset(v) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Derive creates a fresh outbound context carrying the live public values.
// Metadata is not inherited.
func (c *Context) Derive() *Context {
	return New(c.Snapshot())
}
