package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"
)

const maxResponseBodySize = 1 << 20 // 1MB

const tracerName = "github.com/jpalmerr/typecast/internal/poller"

// connection pooling limits; a single source only ever needs a handful
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Response holds the result of an HTTP request made by [Client].
//
// Response captures the body (limited to 1MB), status code, latency, and any
// error that occurred.
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	// nil indicates the request completed (though status may indicate an error).
	Error error
}

// Client is an HTTP client wrapper for polling the text source.
//
// Client uses per-request timeouts via context rather than a global timeout.
// The transport negotiates HTTP/2 when the source supports it, and each
// request is recorded as an OpenTelemetry span on the global tracer provider.
// Spans are dropped unless the program installs a provider with
// otel.SetTracerProvider.
type Client struct {
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a new polling [Client].
func NewClient() *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		MaxConnsPerHost:     defaultMaxConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		DisableKeepAlives:   false, // explicitly enable connection reuse
	}
	// only fails if the transport was already configured for HTTP/2
	_, _ = http2.ConfigureTransports(transport)

	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: transport,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// Fetch performs an HTTP request and returns a structured [Response].
//
// If method is empty, GET is used. The timeout is applied via context
// cancellation. Response bodies are limited to 1MB.
//
// Fetch always returns a Response; errors are captured in the Error field
// rather than returned separately. A status code of 400 or above is reported
// as an error with the body still attached.
func (c *Client) Fetch(ctx context.Context, method, url string, headers map[string]string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// default to GET if method is empty
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, "poller.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	resp := c.do(ctx, method, url, headers)

	if resp.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	if resp.Error != nil {
		span.RecordError(resp.Error)
		span.SetStatus(codes.Error, resp.Error.Error())
	}
	return resp
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string) Response {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	out := Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
	if resp.StatusCode >= http.StatusBadRequest {
		out.Error = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return out
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
