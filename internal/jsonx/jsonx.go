// Package jsonx locates and parses JSON embedded in free-form text.
//
// Reasoning-service output is untrusted prose that usually, but not
// always, contains a JSON payload. All of that fragility is isolated
// behind this package: callers get either a typed result or a
// ParseError carrying a bounded preview of the raw text, and must
// supply their own default record on failure.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PreviewLimit bounds the raw-text preview carried by a ParseError.
const PreviewLimit = 500

// ParseError reports that no parsable JSON value was found in the
// text. Preview holds the (truncated) raw text for diagnostics.
type ParseError struct {
	Shape   string
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no parsable JSON %s in text: %v", e.Shape, e.Err)
	}
	return fmt.Sprintf("no JSON %s found in text", e.Shape)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractObject finds the first '{' and last '}' in text and strictly
// parses the enclosed substring into v.
func ExtractObject(text string, v any) error {
	return extract(text, "object", '{', '}', v)
}

// ExtractArray finds the first '[' and last ']' in text and strictly
// parses the enclosed substring into v.
func ExtractArray(text string, v any) error {
	return extract(text, "array", '[', ']', v)
}

func extract(text, shape string, open, close byte, v any) error {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return &ParseError{Shape: shape, Preview: Preview(text)}
	}

	candidate := text[start : end+1]
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return &ParseError{Shape: shape, Preview: Preview(text), Err: err}
	}
	return nil
}

// Preview truncates text to at most PreviewLimit bytes for
// diagnostics, cutting on a rune boundary so the result stays valid
// UTF-8.
func Preview(text string) string {
	return TruncateRunes(text, PreviewLimit)
}

// TruncateRunes cuts text to at most limit bytes without splitting a
// multi-byte rune.
func TruncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
