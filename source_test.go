package typecast

import (
	"net/http"
	"testing"
	"time"
)

func TestNewSource_Valid(t *testing.T) {
	src, err := NewSource("https://api.example.com/latest_response")
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if src.URL() != "https://api.example.com/latest_response" {
		t.Errorf("URL() = %v", src.URL())
	}
	if src.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want %v", src.Timeout(), 10*time.Second)
	}
	if src.Method() != http.MethodGet {
		t.Errorf("Method() = %v, want GET", src.Method())
	}
	if src.Extractor() != nil {
		t.Error("Extractor() should be nil by default")
	}
}

func TestNewSource_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"no scheme", "api.example.com/latest"},
		{"empty url", ""},
		{"just path", "/latest_response"},
		{"unsupported scheme", "ftp://example.com/latest"},
		{"no host", "http:///latest"},
		{"bad escape", "http://example.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(tt.url)
			if err == nil {
				t.Errorf("NewSource() expected error for URL %q, got nil", tt.url)
			}
		})
	}
}

func TestNewSource_ValidURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"https", "https://api.example.com/latest"},
		{"http", "http://localhost:5001/latest_response"},
		{"with query", "https://api.example.com/latest?stream=main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSource(tt.url); err != nil {
				t.Errorf("NewSource() unexpected error for URL %q: %v", tt.url, err)
			}
		})
	}
}

func TestWithHeaders(t *testing.T) {
	src, err := NewSource("https://example.com",
		WithHeaders("Authorization", "Bearer token", "X-Stream", "main"),
	)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	headers := src.Headers()
	if headers["Authorization"] != "Bearer token" {
		t.Errorf("Headers()[Authorization] = %v", headers["Authorization"])
	}
	if headers["X-Stream"] != "main" {
		t.Errorf("Headers()[X-Stream] = %v", headers["X-Stream"])
	}
}

func TestWithHeaders_OddArgs(t *testing.T) {
	_, err := NewSource("https://example.com", WithHeaders("Authorization"))
	if err == nil {
		t.Error("NewSource() expected error for odd number of header args, got nil")
	}
}

func TestWithHeaders_Immutability(t *testing.T) {
	src, err := NewSource("https://example.com", WithHeaders("key", "value"))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	headers := src.Headers()
	headers["key"] = "modified"
	headers["new"] = "added"

	if src.Headers()["key"] != "value" {
		t.Error("modifying returned headers should not affect the source")
	}
	if _, ok := src.Headers()["new"]; ok {
		t.Error("adding to returned headers should not affect the source")
	}
}

func TestWithTimeout(t *testing.T) {
	src, err := NewSource("https://example.com", WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if src.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want %v", src.Timeout(), 5*time.Second)
	}
}

func TestWithTimeout_Invalid(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		if _, err := NewSource("https://example.com", WithTimeout(d)); err == nil {
			t.Errorf("NewSource() expected error for timeout %v, got nil", d)
		}
	}
}

func TestWithExtractor(t *testing.T) {
	src, err := NewSource("https://example.com", WithExtractor(PlainTextExtractor))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if src.Extractor() == nil {
		t.Fatal("Extractor() should not be nil")
	}
	text, present, err := src.Extractor()([]byte(" hi \n"))
	if err != nil || !present || text != "hi" {
		t.Errorf("Extractor() = (%q, %v, %v), want (hi, true, nil)", text, present, err)
	}
}

func TestWithMethod(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			src, err := NewSource("https://example.com", WithMethod(method))
			if err != nil {
				t.Fatalf("NewSource() error = %v", err)
			}
			if src.Method() != method {
				t.Errorf("Method() = %v, want %v", src.Method(), method)
			}
		})
	}
}

func TestWithMethod_Invalid(t *testing.T) {
	for _, method := range []string{"HEAD", "PUT", "DELETE", "get", ""} {
		t.Run(method, func(t *testing.T) {
			if _, err := NewSource("https://example.com", WithMethod(method)); err == nil {
				t.Errorf("NewSource() expected error for method %q, got nil", method)
			}
		})
	}
}

func TestSource_MultipleOptions(t *testing.T) {
	src, err := NewSource("https://example.com",
		WithHeaders("Authorization", "Bearer x"),
		WithTimeout(3*time.Second),
		WithMethod(http.MethodPost),
		WithExtractor(JSONFieldExtractor("data.text")),
	)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if src.Timeout() != 3*time.Second || src.Method() != http.MethodPost || src.Extractor() == nil {
		t.Errorf("options not applied: timeout=%v method=%v", src.Timeout(), src.Method())
	}
	if src.Headers()["Authorization"] != "Bearer x" {
		t.Errorf("Headers()[Authorization] = %v", src.Headers()["Authorization"])
	}
}

func TestToSourceInfo_HeadersCopied(t *testing.T) {
	src, err := NewSource("https://example.com", WithHeaders("key", "value"))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	o, err := New(WithSource(src))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	info := o.toSourceInfo()
	info.Headers["key"] = "modified"

	if o.Source().Headers()["key"] != "value" {
		t.Error("modifying poller headers should not affect the source")
	}
	if info.Extractor == nil {
		t.Error("default extractor should be applied")
	}
	if info.Method != http.MethodGet {
		t.Errorf("Method = %v, want GET", info.Method)
	}
}
