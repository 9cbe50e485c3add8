// Package assert holds the response checks shared by every step. Each check
// is pure: it inspects a status or body and reports a Failure, never touching
// scenario state.
package assert

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/shopflow/internal/client"
)

// Failure is an assertion violation. Its message is recorded verbatim as the
// step's failure reason.
type Failure struct {
	Message string
}

// Failf builds a Failure from a format string.
func Failf(format string, args ...any) *Failure {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Message
}

// IsFailure reports whether err is, or wraps, a Failure.
func IsFailure(err error) bool {
	var failure *Failure
	return errors.As(err, &failure)
}

// ExpectStatus returns nil when status is one of allowed. Otherwise the
// Failure names the status, the allowed set, and whatever the body says
// about the problem.
func ExpectStatus(status int, allowed []int, body client.Body) error {
	for _, code := range allowed {
		if status == code {
			return nil
		}
	}
	return Failf("unexpected status %d, expected %s%s", status, formatCodes(allowed), describe(body))
}

func formatCodes(codes []int) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = strconv.Itoa(code)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func describe(body client.Body) string {
	switch body.Kind {
	case client.BodyObject:
		obj, _ := body.Object()
		detail := ": " + body.String()
		if message := firstText(obj, "message", "error"); message != "" {
			detail = ": " + message
		}
		if correlationID := firstText(obj, "correlationId"); correlationID != "" {
			detail += " (correlationId: " + correlationID + ")"
		}
		return detail
	case client.BodyArray:
		if items, _ := body.Array(); len(items) == 0 {
			return ""
		}
		return ": " + body.String()
	case client.BodyText:
		if body.String() == "" {
			return ""
		}
		return ": " + body.String()
	default:
		return ""
	}
}

func firstText(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := obj[key]
		if !ok || value == nil {
			continue
		}
		if text := render(value); text != "" && text != "false" {
			return text
		}
	}
	return ""
}

// EnsureField returns the named field of an object body.
func EnsureField(body client.Body, field string) (any, error) {
	obj, ok := body.Object()
	if !ok {
		return nil, Failf("missing field: %s", field)
	}
	value, ok := obj[field]
	if !ok {
		return nil, Failf("missing field: %s", field)
	}
	return value, nil
}

// StringField is EnsureField rendered as text. Identifiers arrive as strings
// from most services and as numbers from a few.
func StringField(body client.Body, field string) (string, error) {
	value, err := EnsureField(body, field)
	if err != nil {
		return "", err
	}
	return render(value), nil
}

// Lookup reads a field from an already decoded object, such as a list
// element, rendered as text. Missing fields yield "".
func Lookup(item any, field string) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	value, ok := obj[field]
	if !ok {
		return ""
	}
	return render(value)
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// ExtractList normalises a collection response: a bare array, or a page
// object carrying a "content" array. Anything else is an empty list.
func ExtractList(body client.Body) []any {
	switch body.Kind {
	case client.BodyArray:
		items, _ := body.Array()
		return nonNil(items)
	case client.BodyObject:
		obj, _ := body.Object()
		return List(obj)
	default:
		return []any{}
	}
}

// List applies the ExtractList rules to an already decoded value.
func List(value any) []any {
	switch v := value.(type) {
	case []any:
		return nonNil(v)
	case map[string]any:
		if content, ok := v["content"].([]any); ok {
			return nonNil(content)
		}
	}
	return []any{}
}

func nonNil(items []any) []any {
	if items == nil {
		return []any{}
	}
	return items
}
