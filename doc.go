// Package typecast polls an HTTP endpoint for the latest AI response and
// plays each new response as a typewriter reveal followed by a slow fade,
// for use as a streaming overlay.
//
// typecast is designed as an SDK-first library: the CLI in cmd/typecast is a
// thin layer over [New] and [Overlay.Start].
//
// # Quick Start
//
//	src, _ := typecast.NewSource("http://localhost:5001/latest_response")
//	o, _ := typecast.New(typecast.WithSource(src))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	o.Start(ctx) // blocks until context is cancelled
//
// Then add http://localhost:8080/overlay as a browser source.
//
// # Display Loop
//
// Every polling interval the source is fetched and its text extracted. A
// value equal to the last accepted one is ignored. A new value is accepted
// only while the display is idle: its characters are revealed one at a time
// (100ms apart by default), then the text fades from opacity 1 to 0 over
// 10 seconds. Values that arrive during a reveal or fade are dropped, not
// queued. Failed polls are logged and leave the display untouched.
//
// # Configuration
//
//	o, err := typecast.New(
//	    typecast.WithSource(src),
//	    typecast.WithPollingInterval(time.Second),
//	    typecast.WithRevealInterval(50 * time.Millisecond),
//	    typecast.WithFadeDuration(5 * time.Second),
//	    typecast.WithPort(5000),
//	)
//
// Sources can also be configured with options:
//
//	src, err := typecast.NewSource("https://api.example.com/latest",
//	    typecast.WithHeaders("Authorization", "Bearer token"),
//	    typecast.WithTimeout(5 * time.Second),
//	    typecast.WithExtractor(typecast.JSONFieldExtractor("data.answer")),
//	)
//
// # Text Extractors
//
//   - [JSONFieldExtractor]: Reads a string field using dot notation
//   - [PlainTextExtractor]: Uses the whole body
//   - [RegexExtractor]: Uses the first capture group of a pattern
//   - [FirstPresent]: Tries extractors in order
//   - [DefaultExtractor]: The "response" field of a JSON object
//
// # Surfaces
//
// The overlay page is always fed. [WithSurface] adds more destinations,
// such as the terminal renderer used by the CLI, and [WithFrameCallback]
// delivers every change as a [Frame].
//
// # Tracing
//
// Each poll is recorded as an OpenTelemetry client span on the global tracer
// provider. The default provider discards spans; install one with
// otel.SetTracerProvider to export them.
//
// # Architecture
//
//   - internal/poller: HTTP polling of the source
//   - internal/display: The reveal and fade state machine
//   - internal/clock: Real and manual clocks driving the animation
//   - internal/store: Current frame with pub/sub for the server
//   - internal/server: HTTP server with the overlay page, SSE and WebSocket
//   - internal/metrics: Prometheus instruments
//   - internal/terminal: Terminal surface for the CLI
//   - overlay: Embedded overlay page
//
// The internal packages are not part of the public API and may change
// without notice.
package typecast
