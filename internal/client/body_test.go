package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		contentType string
		kind        BodyKind
		text        string
	}{
		{name: "empty", raw: "", contentType: "application/json", kind: BodyAbsent},
		{name: "object by content type", raw: `{"id":"1"}`, contentType: "application/json", kind: BodyObject},
		{name: "array sniffed without content type", raw: `[1,2]`, contentType: "", kind: BodyArray},
		{name: "object sniffed under text/plain", raw: ` {"id":"1"}`, contentType: "text/plain", kind: BodyObject},
		{name: "malformed json degrades to text", raw: `{"id":`, contentType: "application/json", kind: BodyText, text: `{"id":`},
		{name: "plain text", raw: "-----BEGIN PUBLIC KEY-----", contentType: "text/plain", kind: BodyText, text: "-----BEGIN PUBLIC KEY-----"},
		{name: "json string scalar", raw: `"hello"`, contentType: "application/json", kind: BodyText, text: "hello"},
		{name: "json number scalar", raw: `42`, contentType: "application/problem+json", kind: BodyText, text: "42"},
		{name: "json null is absent", raw: "null", contentType: "application/json", kind: BodyAbsent},
		{name: "trailing garbage", raw: `{"a":1} tail`, contentType: "application/json", kind: BodyText, text: `{"a":1} tail`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			body := DecodeBody([]byte(tc.raw), tc.contentType)
			require.Equal(t, tc.kind, body.Kind)
			if tc.kind == BodyText {
				text, ok := body.Text()
				require.True(t, ok)
				assert.Equal(t, tc.text, text)
			}
		})
	}
}

func TestDecodeBodyKeepsNumbersExact(t *testing.T) {
	t.Parallel()

	body := DecodeBody([]byte(`{"amount": 49.99, "id": 12345678901234567890}`), "application/json")
	obj, ok := body.Object()
	require.True(t, ok)
	require.Equal(t, json.Number("49.99"), obj["amount"])
	require.Equal(t, json.Number("12345678901234567890"), obj["id"])
}

func TestBodyAccessorsMatchKind(t *testing.T) {
	t.Parallel()

	obj := ObjectBody(map[string]any{"a": "b"})
	_, isArray := obj.Array()
	_, isText := obj.Text()
	assert.False(t, isArray)
	assert.False(t, isText)
	assert.Equal(t, `{"a":"b"}`, obj.String())

	arr := ArrayBody([]any{"x"})
	_, isObject := arr.Object()
	assert.False(t, isObject)
	assert.Equal(t, `["x"]`, arr.String())

	var absent Body
	assert.True(t, absent.IsAbsent())
	assert.Equal(t, "", absent.String())
	assert.Equal(t, "absent", absent.Kind.String())
}
