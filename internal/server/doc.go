// Package server provides the HTTP server for the typecast overlay.
//
// This package is internal to typecast and handles all HTTP concerns:
//
//   - Overlay page: Serves the embedded page with the ai-response element at "/overlay"
//   - REST API: JSON endpoint at "/api/frame" for the current frame
//   - Server-Sent Events: Real-time frames at "/api/sse"
//   - WebSocket: Real-time frames at "/ws"
//   - Metrics: Prometheus exposition at "/metrics"
//
// Routing uses chi. The server supports graceful shutdown via context
// cancellation, with a 5-second timeout for in-flight requests.
//
// Users of the typecast library should not need to interact with this
// package directly. The server is started automatically by [typecast.Overlay.Start].
package server
