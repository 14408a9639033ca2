package typecast

import (
	"errors"
	"net/http"
	"time"
)

// sourceConfig holds mutable state during source construction.
type sourceConfig struct {
	headers   map[string]string
	timeout   time.Duration
	extractor TextExtractor
	method    string
}

// SourceOption is a function that configures a [Source] during construction.
//
// Options return an error if validation fails.
//
// Built-in options: [WithHeaders], [WithTimeout], [WithMethod], [WithExtractor].
type SourceOption func(*sourceConfig) error

// WithHeaders adds custom HTTP headers to every poll request.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	src, err := typecast.NewSource(url,
//	    typecast.WithHeaders("Authorization", "Bearer token123"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) SourceOption {
	return func(cfg *sourceConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout sets the HTTP request timeout.
//
// A poll that does not complete within this duration fails; the display is
// left as it is and the next poll proceeds normally.
// Defaults to 10 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) SourceOption {
	return func(cfg *sourceConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithExtractor sets a custom [TextExtractor].
//
// If not specified, [DefaultExtractor] is used, which reads the "response"
// field of a JSON object.
//
// Example:
//
//	src, err := typecast.NewSource(url,
//	    typecast.WithExtractor(typecast.JSONFieldExtractor("data.answer")),
//	)
func WithExtractor(e TextExtractor) SourceOption {
	return func(cfg *sourceConfig) error {
		cfg.extractor = e
		return nil
	}
}

// WithMethod sets the HTTP method for poll requests.
//
// Supported methods are GET (default) and POST.
//
// Returns an error for any other method.
func WithMethod(method string) SourceOption {
	return func(cfg *sourceConfig) error {
		switch method {
		case http.MethodGet, http.MethodPost:
			cfg.method = method
			return nil
		default:
			return errors.New("method must be GET or POST")
		}
	}
}
