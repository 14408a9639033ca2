package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestSource(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newSource(slog.New(slog.NewTextHandler(io.Discard, nil))).routes())
	t.Cleanup(ts.Close)
	return ts
}

func decodeResponse(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestLatestResponse_Initial(t *testing.T) {
	ts := newTestSource(t)

	resp, err := http.Get(ts.URL + "/latest_response")
	if err != nil {
		t.Fatalf("GET /latest_response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := decodeResponse(t, resp)["response"]; got != initialResponse {
		t.Errorf("response = %q, want %q", got, initialResponse)
	}
}

func TestQuery_UpdatesLatest(t *testing.T) {
	ts := newTestSource(t)

	resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(`{"input": "hello"}`))
	if err != nil {
		t.Fatalf("POST /query: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	reply := decodeResponse(t, resp)["response"]
	if !strings.Contains(reply, `"hello"`) {
		t.Errorf("reply = %q, want it to quote the input", reply)
	}

	resp, err = http.Get(ts.URL + "/latest_response")
	if err != nil {
		t.Fatalf("GET /latest_response: %v", err)
	}
	if got := decodeResponse(t, resp)["response"]; got != reply {
		t.Errorf("latest = %q, want %q", got, reply)
	}
}

func TestQuery_RotatesReplies(t *testing.T) {
	ts := newTestSource(t)

	seen := map[string]bool{}
	for i := 0; i < len(replyTemplates); i++ {
		resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(`{"input": "same"}`))
		if err != nil {
			t.Fatalf("POST /query: %v", err)
		}
		seen[decodeResponse(t, resp)["response"]] = true
	}
	if len(seen) != len(replyTemplates) {
		t.Errorf("got %d distinct replies, want %d", len(seen), len(replyTemplates))
	}
}

func TestQuery_MissingInput(t *testing.T) {
	ts := newTestSource(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"blank input", `{"input": "   "}`},
		{"not json", `input=hello`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST /query: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := decodeResponse(t, resp)["error"]; got != "No input provided" {
				t.Errorf("error = %q", got)
			}
		})
	}

	// a rejected query leaves the latest response alone
	resp, err := http.Get(ts.URL + "/latest_response")
	if err != nil {
		t.Fatalf("GET /latest_response: %v", err)
	}
	if got := decodeResponse(t, resp)["response"]; got != initialResponse {
		t.Errorf("latest = %q, want %q", got, initialResponse)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	ts := newTestSource(t)

	resp, err := http.Get(ts.URL + "/query")
	if err != nil {
		t.Fatalf("GET /query: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
