// Package overlay provides the embedded web page for the typecast overlay.
//
// The page holds a single ai-response element styled as a translucent box at
// the bottom of the screen, meant to be added as a browser source in
// streaming software. It renders frames from the server's SSE feed and falls
// back to polling /api/frame when the stream is unavailable. All animation
// timing happens server-side; the page only copies text and opacity.
package overlay

import "embed"

// Assets is an embedded filesystem containing the overlay page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Overlay page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
