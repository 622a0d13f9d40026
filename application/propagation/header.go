package propagation

import (
	"encoding/json"
	"net/http"

	"trooba-http-transport/application/callctx"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	DefaultHeader = "x-trooba-context"
	deletedField  = "@deleted"
)

// HeaderCodec stores the context as one JSON object in a single header.
// Keys deleted on the sender are listed under "@deleted".
// Values are decoded as JSON on the receiver, so every number arrives as
// float64 whatever its type on the sender.
type HeaderCodec struct {
	Header string
}

var _ Codec = HeaderCodec{}

// NewHeaderCodec returns a codec using header, or [DefaultHeader] if empty.
func NewHeaderCodec(header string) HeaderCodec {
	if header == "" {
		header = DefaultHeader
	}
	return HeaderCodec{Header: header}
}

func (c HeaderCodec) header() string {
	if c.Header == "" {
		return DefaultHeader
	}
	return c.Header
}

func (c HeaderCodec) Serialize(call *callctx.Context, h http.Header) error {
	envelope := make(map[string]any, len(call.Public)+1)
	for k, v := range call.Public {
		if k == deletedField {
			return errors.Wrap(ErrReservedKey, k)
		}
		if callctx.IsUnset(v) {
			continue
		}
		envelope[k] = v
	}
	if deleted := call.Deleted(); len(deleted) > 0 {
		envelope[deletedField] = deleted
	}

	b, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "encoding context envelope")
	}

	h.Set(c.header(), string(b))
	return nil
}

func (c HeaderCodec) Deserialize(h http.Header, call *callctx.Context) error {
	raw := h.Get(c.header())
	if raw == "" {
		return nil
	}

	values, deleted, err := parseEnvelope(raw)
	if err != nil {
		return err
	}

	for _, name := range deleted {
		call.Remove(name)
	}
	call.Merge(values)
	return nil
}

// parseEnvelope decodes everything before the caller touches its context.
func parseEnvelope(raw string) (values map[string]any, deleted []string, err error) {
	if !gjson.Valid(raw) {
		return nil, nil, errors.Wrap(ErrMalformedEnvelope, "invalid json")
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil, nil, errors.Wrapf(ErrMalformedEnvelope, "expected object, got %s", parsed.Type)
	}

	values = make(map[string]any)
	parsed.ForEach(func(key, value gjson.Result) bool {
		if key.String() != deletedField {
			values[key.String()] = value.Value()
			return true
		}

		if value.Type == gjson.Null {
			return true
		}
		if !value.IsArray() {
			err = errors.Wrapf(ErrMalformedEnvelope, "%s must be an array", deletedField)
			return false
		}
		for _, name := range value.Array() {
			if name.Type != gjson.String {
				err = errors.Wrapf(ErrMalformedEnvelope, "%s entry is not a string: %s", deletedField, name.Raw)
				return false
			}
			deleted = append(deleted, name.String())
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}

	return values, deleted, nil
}
