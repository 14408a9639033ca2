package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/typecast"
)

func TestBuildSource_Minimal(t *testing.T) {
	cfg, err := Parse([]byte("source:\n  url: https://example.com/latest\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	src, err := BuildSource(cfg.Source)
	if err != nil {
		t.Fatalf("BuildSource() error = %v", err)
	}

	if src.URL() != "https://example.com/latest" {
		t.Errorf("URL() = %q", src.URL())
	}
	if src.Method() != http.MethodGet {
		t.Errorf("Method() = %q, want GET", src.Method())
	}
	if src.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want SDK default", src.Timeout())
	}
	if src.Extractor() != nil {
		t.Error("default field should leave the SDK default extractor in place")
	}
}

func TestBuildSource_AllOptions(t *testing.T) {
	yaml := `
source:
  url: https://example.com/latest
  method: POST
  timeout: 3s
  headers:
    X-B: two
    X-A: one
  field: data.answer
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	src, err := BuildSource(cfg.Source)
	if err != nil {
		t.Fatalf("BuildSource() error = %v", err)
	}

	if src.Method() != http.MethodPost {
		t.Errorf("Method() = %q, want POST", src.Method())
	}
	if src.Timeout() != 3*time.Second {
		t.Errorf("Timeout() = %v, want 3s", src.Timeout())
	}
	headers := src.Headers()
	if headers["X-A"] != "one" || headers["X-B"] != "two" {
		t.Errorf("Headers() = %v", headers)
	}
	text, present, err := src.Extractor()([]byte(`{"data": {"answer": "42"}}`))
	if err != nil || !present || text != "42" {
		t.Errorf("Extractor() = (%q, %v, %v), want (42, true, nil)", text, present, err)
	}
}

func TestBuildSource_Formats(t *testing.T) {
	tests := []struct {
		name     string
		source   SourceConfig
		body     string
		wantText string
	}{
		{
			name:     "json custom field",
			source:   SourceConfig{URL: "https://example.com", Format: FormatJSON, Field: "text"},
			body:     `{"text": "from json"}`,
			wantText: "from json",
		},
		{
			name:     "text",
			source:   SourceConfig{URL: "https://example.com", Format: FormatText},
			body:     "  from text\n",
			wantText: "from text",
		},
		{
			name:     "regex",
			source:   SourceConfig{URL: "https://example.com", Format: FormatRegex, Pattern: `<p>(.*)</p>`},
			body:     `<html><p>from regex</p></html>`,
			wantText: "from regex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := BuildSource(tt.source)
			if err != nil {
				t.Fatalf("BuildSource() error = %v", err)
			}
			if src.Extractor() == nil {
				t.Fatal("Extractor() should be set")
			}
			text, present, err := src.Extractor()([]byte(tt.body))
			if err != nil || !present || text != tt.wantText {
				t.Errorf("Extractor() = (%q, %v, %v), want (%q, true, nil)", text, present, err, tt.wantText)
			}
		})
	}
}

func TestBuildSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source SourceConfig
	}{
		{"unknown format", SourceConfig{URL: "https://example.com", Format: "xml"}},
		{"bad pattern", SourceConfig{URL: "https://example.com", Format: FormatRegex, Pattern: "[bad"}},
		{"bad url", SourceConfig{URL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildSource(tt.source); err == nil {
				t.Error("BuildSource() expected error, got nil")
			}
		})
	}
}

func TestBuildOptions(t *testing.T) {
	yaml := `
title: Stream Overlay
port: 19400
poll_interval: 5s
placeholder: Thinking...
source:
  url: https://example.com/latest
animation:
  reveal_interval: 20ms
  fade_duration: 2s
  fade_tick: 10ms
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	o, err := typecast.New(opts...)
	if err != nil {
		t.Fatalf("typecast.New() error = %v", err)
	}

	if o.Port() != 19400 {
		t.Errorf("Port() = %d, want 19400", o.Port())
	}
	if o.PollingInterval() != 5*time.Second {
		t.Errorf("PollingInterval() = %v, want 5s", o.PollingInterval())
	}
	if o.RevealInterval() != 20*time.Millisecond {
		t.Errorf("RevealInterval() = %v, want 20ms", o.RevealInterval())
	}
	if o.FadeDuration() != 2*time.Second {
		t.Errorf("FadeDuration() = %v, want 2s", o.FadeDuration())
	}
	if o.FadeTick() != 10*time.Millisecond {
		t.Errorf("FadeTick() = %v, want 10ms", o.FadeTick())
	}
	if o.Source().URL() != "https://example.com/latest" {
		t.Errorf("Source().URL() = %q", o.Source().URL())
	}
}

func TestBuildOptions_InvalidSource(t *testing.T) {
	cfg := Default()
	cfg.Source.URL = "::not a url"
	if _, err := BuildOptions(cfg); err == nil {
		t.Error("BuildOptions() expected error for invalid source, got nil")
	}
}

// TestBuildOptions_EndToEnd runs an overlay built from YAML against a test
// source and checks the text reaches a frame callback.
func TestBuildOptions_EndToEnd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"answer": "configured"}})
	}))
	defer ts.Close()

	t.Setenv("TYPECAST_TEST_SOURCE", ts.URL)
	yaml := `
poll_on_start: true
source:
  url: ${TYPECAST_TEST_SOURCE}
  field: data.answer
animation:
  reveal_interval: 1ms
  fade_duration: 1h
  fade_tick: 1s
overlay:
  enabled: false
terminal:
  enabled: true
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	var mu sync.Mutex
	var last typecast.Frame
	done := make(chan struct{})
	var once sync.Once
	opts = append(opts, typecast.WithFrameCallback(func(f typecast.Frame) {
		mu.Lock()
		last = f
		mu.Unlock()
		if f.Text == "configured" {
			once.Do(func() { close(done) })
		}
	}))

	o, err := typecast.New(opts...)
	if err != nil {
		t.Fatalf("typecast.New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- o.Start(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		mu.Lock()
		t.Errorf("text never revealed, last frame %+v", last)
		mu.Unlock()
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

func TestMapToKeyValuePairs_Sorted(t *testing.T) {
	got := mapToKeyValuePairs(map[string]string{"b": "2", "a": "1", "c": "3"})
	want := []string{"a", "1", "b", "2", "c", "3"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pairs = %v, want %v", got, want)
			break
		}
	}
}
