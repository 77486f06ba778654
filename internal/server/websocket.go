package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/docon/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients are local tools and scripts, not browsers on other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the request and serves control requests until
// the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := conn.RemoteAddr().String()
	if !s.track(remoteAddr, conn) {
		_ = conn.Close()
		return
	}
	defer func() {
		_ = conn.Close()
		s.untrack(remoteAddr)
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	if err := s.serveConnection(conn, remoteAddr); err != nil {
		logging.Info("WebSocket connection ended",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
	}
}

// serveConnection is the per-client receive loop. Replies are written from
// this goroutine only.
func (s *Server) serveConnection(conn *websocket.Conn, remoteAddr string) error {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var resp *Response
		if msgType != websocket.TextMessage {
			resp = &Response{Error: "only JSON text frames are accepted", Kind: "validation"}
		} else {
			resp = s.handleRequest(data, remoteAddr)
		}

		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return err
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := conn.WriteJSON(resp); err != nil {
			return fmt.Errorf("failed to write reply: %w", err)
		}
	}
}

func (s *Server) handleRequest(data []byte, remoteAddr string) *Response {
	req, err := ParseRequest(data)
	if err != nil {
		id := ""
		if req != nil {
			id = req.ID
		}
		return ErrorResponse(id, err)
	}

	logging.Debug("Control request",
		zap.String("remote_addr", remoteAddr),
		zap.String("id", req.ID),
		zap.String("op", req.Op),
		zap.Int("channel", req.Channel),
	)

	resp := Dispatch(s.svc, req)
	if !resp.OK {
		logging.Info("Control request failed",
			zap.String("remote_addr", remoteAddr),
			zap.String("op", req.Op),
			zap.String("kind", resp.Kind),
			zap.String("error", resp.Error),
		)
	}
	return resp
}

// keepAlive pings the peer until done is closed.
// WriteControl may be called concurrently with the reply writer.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
