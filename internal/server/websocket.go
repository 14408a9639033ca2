package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/typecast/internal/store"
)

const (
	// wsWriteWait is the time allowed to write a single message.
	wsWriteWait = 5 * time.Second

	// wsPongWait is how long a client may stay silent before it is dropped.
	wsPongWait = 60 * time.Second

	// wsPingPeriod must be less than wsPongWait.
	wsPingPeriod = wsPongWait * 9 / 10
)

// handleWebSocket streams frames as JSON text messages.
//
// The client never needs to send anything; incoming messages are read and
// discarded so that close frames and pongs are processed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	closed := make(chan struct{})
	go s.readWebSocket(conn, closed)

	if err := writeFrame(conn, s.store.Current()); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if err := writeFrame(conn, frame); err != nil {
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}

		case <-closed:
			return

		case <-r.Context().Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			return
		}
	}
}

// readWebSocket drains the connection until it fails, then closes done.
func (s *Server) readWebSocket(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame store.Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
