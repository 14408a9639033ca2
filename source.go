package typecast

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

const defaultSourceTimeout = 10 * time.Second

// Source is the HTTP endpoint that supplies the text to display.
//
// Source is immutable after creation via [NewSource]. All fields are
// private with getter methods that return copies of mutable data (maps),
// ensuring the source cannot be modified after construction.
//
// Sources are configured using the functional options pattern with
// [SourceOption] functions such as [WithHeaders], [WithTimeout],
// [WithMethod] and [WithExtractor].
type Source struct {
	url       string
	headers   map[string]string
	timeout   time.Duration
	extractor TextExtractor
	method    string
}

// URL returns the source's target URL as a string.
func (s Source) URL() string {
	return s.url
}

// Headers returns a copy of the custom HTTP headers sent with every poll.
// Returns nil if no custom headers are set.
func (s Source) Headers() map[string]string {
	return copyMap(s.headers)
}

// Timeout returns the HTTP request timeout.
// Defaults to 10 seconds if not explicitly set via [WithTimeout].
func (s Source) Timeout() time.Duration {
	return s.timeout
}

// Extractor returns the source's [TextExtractor].
// Returns nil if no custom extractor was specified, in which case
// [DefaultExtractor] applies.
func (s Source) Extractor() TextExtractor {
	return s.extractor
}

// Method returns the HTTP method used for polling. Defaults to GET.
func (s Source) Method() string {
	return s.method
}

// NewSource creates a [Source] for the given URL.
//
// The rawURL parameter must be an absolute http:// or https:// URL.
// Options are applied in order.
//
// Returns an error if the URL is invalid or an option fails.
//
// Example:
//
//	src, err := typecast.NewSource("http://localhost:5001/latest_response",
//	    typecast.WithTimeout(5 * time.Second),
//	)
func NewSource(rawURL string, opts ...SourceOption) (Source, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Source{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Source{}, errors.New("URL must have a scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return Source{}, errors.New("URL must have a host")
	}

	cfg := &sourceConfig{
		headers: make(map[string]string),
		timeout: defaultSourceTimeout,
		method:  http.MethodGet,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Source{}, err
		}
	}

	return Source{
		url:       rawURL,
		headers:   cfg.headers,
		timeout:   cfg.timeout,
		extractor: cfg.extractor,
		method:    cfg.method,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// copyBytes returns a copy of the byte slice, or nil if input is nil.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
