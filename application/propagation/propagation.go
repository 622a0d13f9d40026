// Package propagation carries a [callctx.Context] across HTTP hops.
//
// A [Codec] writes the public part of a context into headers of an outgoing
// message and merges it back from headers of an incoming one. Both bridges
// call the same codec, so one implementation serves requests and responses.
package propagation

import (
	"net/http"

	"trooba-http-transport/application/callctx"

	"github.com/pkg/errors"
)

var (
	ErrMalformedEnvelope = errors.New("malformed context envelope")
	ErrReservedKey       = errors.New("context key is reserved")
	ErrCodecNotFound     = errors.New("context codec not found")
)

// Codec must be safe for concurrent use. The context it receives is not.
type Codec interface {
	// Serialize writes the public part of call into h.
	Serialize(call *callctx.Context, h http.Header) error
	// Deserialize merges the envelope found in h into call.
	// On error, call must be left unmodified.
	Deserialize(h http.Header, call *callctx.Context) error
}

// CodecFunc is an inline serialize/deserialize pair.
type CodecFunc struct {
	SerializeFunc   func(call *callctx.Context, h http.Header) error
	DeserializeFunc func(h http.Header, call *callctx.Context) error
}

var _ Codec = CodecFunc{}

func (f CodecFunc) Serialize(call *callctx.Context, h http.Header) error {
	if f.SerializeFunc == nil {
		return nil
	}
	return f.SerializeFunc(call, h)
}

func (f CodecFunc) Deserialize(h http.Header, call *callctx.Context) error {
	if f.DeserializeFunc == nil {
		return nil
	}
	return f.DeserializeFunc(h, call)
}

// Registry resolves codecs referenced by name from configuration.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry returns a registry holding the reference codec under "header".
func NewRegistry() *Registry {
	return &Registry{codecs: map[string]Codec{
		"header": NewHeaderCodec(""),
	}}
}

func (r *Registry) Register(name string, codec Codec) {
	if r.codecs == nil {
		r.codecs = make(map[string]Codec)
	}
	r.codecs[name] = codec
}

func (r *Registry) Resolve(name string) (Codec, error) {
	codec, ok := r.codecs[name]
	if !ok {
		return nil, errors.Wrapf(ErrCodecNotFound, "name %q", name)
	}
	return codec, nil
}
