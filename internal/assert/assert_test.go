package assert

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/shopflow/internal/client"
)

func TestExpectStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		allowed []int
		body    client.Body
		want    string
	}{
		{
			name:    "allowed status passes",
			status:  201,
			allowed: []int{200, 201},
			want:    "",
		},
		{
			name:    "absent body",
			status:  500,
			allowed: []int{200},
			want:    "unexpected status 500, expected [200]",
		},
		{
			name:    "json null body adds no detail",
			status:  503,
			allowed: []int{200},
			body:    client.DecodeBody([]byte("null"), "application/json"),
			want:    "unexpected status 503, expected [200]",
		},
		{
			name:    "object message with correlation id",
			status:  409,
			allowed: []int{200, 201},
			body:    client.ObjectBody(map[string]any{"message": "already exists", "correlationId": "abc-123"}),
			want:    "unexpected status 409, expected [200, 201]: already exists (correlationId: abc-123)",
		},
		{
			name:    "object error field",
			status:  400,
			allowed: []int{200},
			body:    client.ObjectBody(map[string]any{"error": "Bad Request"}),
			want:    "unexpected status 400, expected [200]: Bad Request",
		},
		{
			name:    "object without message renders whole body",
			status:  422,
			allowed: []int{200},
			body:    client.ObjectBody(map[string]any{"field": "sku"}),
			want:    `unexpected status 422, expected [200]: {"field":"sku"}`,
		},
		{
			name:    "text body verbatim",
			status:  502,
			allowed: []int{200},
			body:    client.TextBody("Bad Gateway"),
			want:    "unexpected status 502, expected [200]: Bad Gateway",
		},
		{
			name:    "empty array adds no detail",
			status:  404,
			allowed: []int{200},
			body:    client.ArrayBody([]any{}),
			want:    "unexpected status 404, expected [200]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ExpectStatus(tc.status, tc.allowed, tc.body)
			if tc.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, IsFailure(err))
			require.Equal(t, tc.want, err.Error())
		})
	}
}

func TestExpectStatusMismatchAlwaysNamesStatusAndAllowedSet(t *testing.T) {
	t.Parallel()

	allowed := []int{200, 201}
	body := client.ObjectBody(map[string]any{"message": "nope"})
	for status := 100; status < 600; status++ {
		if status == 200 || status == 201 {
			continue
		}
		err := ExpectStatus(status, allowed, body)
		require.Error(t, err)
		require.Contains(t, err.Error(), fmt.Sprintf("unexpected status %d", status))
		require.Contains(t, err.Error(), "[200, 201]")
	}
	obj, _ := body.Object()
	require.Equal(t, map[string]any{"message": "nope"}, obj)
}

func TestEnsureField(t *testing.T) {
	t.Parallel()

	body := client.ObjectBody(map[string]any{"valid": true, "userId": "u-1"})

	value, err := EnsureField(body, "valid")
	require.NoError(t, err)
	require.Equal(t, true, value)

	_, err = EnsureField(body, "accessToken")
	require.EqualError(t, err, "missing field: accessToken")

	_, err = EnsureField(client.ArrayBody([]any{}), "userId")
	require.EqualError(t, err, "missing field: userId")

	_, err = EnsureField(client.Body{}, "userId")
	var failure *Failure
	require.True(t, errors.As(err, &failure))
}

func TestStringField(t *testing.T) {
	t.Parallel()

	body := client.ObjectBody(map[string]any{
		"id":      json.Number("42"),
		"orderId": "o-1",
	})

	id, err := StringField(body, "id")
	require.NoError(t, err)
	require.Equal(t, "42", id)

	orderID, err := StringField(body, "orderId")
	require.NoError(t, err)
	require.Equal(t, "o-1", orderID)
}

func TestExtractList(t *testing.T) {
	t.Parallel()

	items := []any{map[string]any{"id": "1"}}

	tests := []struct {
		name string
		body client.Body
		want []any
	}{
		{name: "bare array", body: client.ArrayBody(items), want: items},
		{name: "page content", body: client.ObjectBody(map[string]any{"content": items, "totalElements": json.Number("1")}), want: items},
		{name: "content not an array", body: client.ObjectBody(map[string]any{"content": "x"}), want: []any{}},
		{name: "plain object", body: client.ObjectBody(map[string]any{"id": "1"}), want: []any{}},
		{name: "text", body: client.TextBody("hello"), want: []any{}},
		{name: "absent", body: client.Body{}, want: []any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ExtractList(tc.body))
		})
	}
}

func TestListAndLookup(t *testing.T) {
	t.Parallel()

	require.Equal(t, []any{}, List(nil))
	require.Equal(t, []any{}, List("items"))

	items := []any{map[string]any{"productId": "p-1", "cartItemId": json.Number("7")}}
	require.Equal(t, items, List(items))

	require.Equal(t, "7", Lookup(items[0], "cartItemId"))
	require.Equal(t, "", Lookup(items[0], "missing"))
	require.Equal(t, "", Lookup("not an object", "productId"))
}
