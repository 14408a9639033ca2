package typecast

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TextExtractor pulls the text to display out of a source response body.
//
// It returns present=false when the body carries no value (the display is
// left alone), and a non-nil error when the body cannot be interpreted (the
// poll is logged as failed and the display is left alone). An empty string
// with present=true is a real value.
//
// # Panic Safety
//
// TextExtractor functions are called within a panic recovery boundary. If
// an extractor panics, the poll fails with an error containing a
// correlation ID and the stack trace is logged.
type TextExtractor func(body []byte) (text string, present bool, err error)

// JSONFieldExtractor returns a [TextExtractor] that reads a string field
// from a JSON object using dot notation to navigate nested objects.
//
// For example, "data.answer" reads {"data": {"answer": "hi"}}.
//
//   - a missing or null field is absent
//   - a string field is present, including the empty string
//   - any other JSON type, or a body that is not JSON, is an error
func JSONFieldExtractor(path string) TextExtractor {
	parts := strings.Split(path, ".")

	return func(body []byte) (string, bool, error) {
		var data interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return "", false, err
		}

		value, ok := extractJSONPath(data, parts)
		if !ok || value == nil {
			return "", false, nil
		}

		s, ok := value.(string)
		if !ok {
			return "", false, fmt.Errorf("field %q is %T, not a string", path, value)
		}
		return s, true, nil
	}
}

// extractJSONPath walks a JSON structure using dot notation parts.
func extractJSONPath(data interface{}, parts []string) (interface{}, bool) {
	current := data

	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// PlainTextExtractor is a [TextExtractor] that displays the whole response
// body with surrounding whitespace trimmed. An empty body is absent.
var PlainTextExtractor TextExtractor = func(body []byte) (string, bool, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// RegexExtractor returns a [TextExtractor] that displays the first capture
// group of pattern matched against the response body. No match is absent.
//
// Returns an error if the pattern is invalid or has no capture group.
//
// Example:
//
//	extractor, err := typecast.RegexExtractor(`<answer>(.*?)</answer>`)
func RegexExtractor(pattern string) (TextExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("pattern %q has no capture group", pattern)
	}

	return func(body []byte) (string, bool, error) {
		matches := re.FindSubmatch(body)
		if len(matches) < 2 {
			return "", false, nil
		}
		return string(matches[1]), true, nil
	}, nil
}

// MustRegexExtractor is like [RegexExtractor] but panics if the pattern
// is invalid.
//
// Use this for compile-time constant patterns where you want to fail fast.
func MustRegexExtractor(pattern string) TextExtractor {
	extractor, err := RegexExtractor(pattern)
	if err != nil {
		panic("typecast: invalid regex pattern: " + err.Error())
	}
	return extractor
}

// FirstPresent returns a [TextExtractor] that tries multiple extractors in
// order and returns the first present value.
//
// An extractor that fails is skipped. If none is present, the result is
// absent, unless every extractor failed, in which case the last error is
// returned.
//
// Example:
//
//	// accept {"response": ...} or {"text": ...}
//	extractor := typecast.FirstPresent(
//	    typecast.JSONFieldExtractor("response"),
//	    typecast.JSONFieldExtractor("text"),
//	)
func FirstPresent(extractors ...TextExtractor) TextExtractor {
	return func(body []byte) (string, bool, error) {
		var lastErr error
		failed := 0
		for _, extractor := range extractors {
			text, present, err := extractor(body)
			if err != nil {
				lastErr = err
				failed++
				continue
			}
			if present {
				return text, true, nil
			}
		}
		if len(extractors) > 0 && failed == len(extractors) {
			return "", false, lastErr
		}
		return "", false, nil
	}
}

// DefaultExtractor is the [TextExtractor] used when none is set on a
// [Source]. It reads the "response" field of a JSON object, as in
// {"response": "Hello there"}.
var DefaultExtractor = JSONFieldExtractor("response")
