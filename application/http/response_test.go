package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseJSON(t *testing.T) {
	res, err := JSON(201, map[string]any{"foo": "bar"})
	require.NoError(t, err)

	assert.Equal(t, 201, res.Status)
	assert.Equal(t, ContentTypeJSON, res.Header("content-type"))
	assert.JSONEq(t, `{"foo":"bar"}`, res.String())

	require.NoError(t, res.DecodeJSON())
	assert.Equal(t, map[string]any{"foo": "bar"}, res.Value)
}

func TestResponseDecodeJSON(t *testing.T) {
	res := Text(200, "")
	require.NoError(t, res.DecodeJSON())
	assert.Nil(t, res.Value)

	res = Text(200, "not json")
	assert.Error(t, res.DecodeJSON())
}

func TestResponseHeaderNil(t *testing.T) {
	res := Text(404, "Not found")
	assert.Empty(t, res.Header("x-anything"))
	assert.Equal(t, "Not found", res.String())
}
