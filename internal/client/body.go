package client

import (
	"bytes"
	"encoding/json"
	"strings"
)

// BodyKind tags the shape of a decoded response body.
type BodyKind int

const (
	// BodyAbsent means the response carried no bytes.
	BodyAbsent BodyKind = iota
	// BodyObject is a JSON object.
	BodyObject
	// BodyArray is a JSON array.
	BodyArray
	// BodyText is anything else: plain text, malformed JSON, or a JSON scalar.
	BodyText
)

func (k BodyKind) String() string {
	switch k {
	case BodyAbsent:
		return "absent"
	case BodyObject:
		return "object"
	case BodyArray:
		return "array"
	case BodyText:
		return "text"
	default:
		return "unknown"
	}
}

// Body is a decoded response body. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Body struct {
	Kind   BodyKind
	object map[string]any
	array  []any
	text   string
}

// ObjectBody wraps a decoded JSON object.
func ObjectBody(v map[string]any) Body {
	return Body{Kind: BodyObject, object: v}
}

// ArrayBody wraps a decoded JSON array.
func ArrayBody(v []any) Body {
	return Body{Kind: BodyArray, array: v}
}

// TextBody wraps raw text.
func TextBody(v string) Body {
	return Body{Kind: BodyText, text: v}
}

// Object returns the JSON object when Kind is BodyObject.
func (b Body) Object() (map[string]any, bool) {
	if b.Kind != BodyObject {
		return nil, false
	}
	return b.object, true
}

// Array returns the JSON array when Kind is BodyArray.
func (b Body) Array() ([]any, bool) {
	if b.Kind != BodyArray {
		return nil, false
	}
	return b.array, true
}

// Text returns the raw text when Kind is BodyText.
func (b Body) Text() (string, bool) {
	if b.Kind != BodyText {
		return "", false
	}
	return b.text, true
}

// IsAbsent reports whether the response had no body.
func (b Body) IsAbsent() bool {
	return b.Kind == BodyAbsent
}

// String renders the body for diagnostics. Structured bodies are re-encoded
// as compact JSON.
func (b Body) String() string {
	switch b.Kind {
	case BodyObject:
		return encodeCompact(b.object)
	case BodyArray:
		return encodeCompact(b.array)
	case BodyText:
		return b.text
	default:
		return ""
	}
}

func encodeCompact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeBody classifies raw response bytes. JSON is attempted when the
// content type mentions json or the text opens with '{' or '['; anything
// that fails to decode is kept as raw text. It never fails.
func DecodeBody(raw []byte, contentType string) Body {
	if len(raw) == 0 {
		return Body{Kind: BodyAbsent}
	}

	text := string(raw)
	trimmed := strings.TrimSpace(text)
	looksJSON := strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
	if !strings.Contains(strings.ToLower(contentType), "json") && !looksJSON {
		return TextBody(text)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return TextBody(text)
	}
	if decoder.More() {
		return TextBody(text)
	}

	switch v := value.(type) {
	case map[string]any:
		return ObjectBody(v)
	case []any:
		return ArrayBody(v)
	case string:
		return TextBody(v)
	case nil:
		return Body{Kind: BodyAbsent}
	default:
		return TextBody(trimmed)
	}
}
