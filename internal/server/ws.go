package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ppiankov/veridex/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSink streams recorder events over a WebSocket connection. Writes
// are serialized with a mutex since verification tasks emit
// concurrently.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  *zap.Logger
}

func (s *wsSink) Send(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(ev); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
	}
}

// handleAnalyzeWS upgrades to WebSocket, reads one analyze request,
// and streams pipeline events until the terminal result or error
// event.
func (s *Server) handleAnalyzeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	var req AnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(map[string]string{"type": "error", "message": "invalid request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Concurrency.AnalysisTimeout)
	defer cancel()

	sink := &wsSink{conn: conn, log: s.log}
	rec := events.NewRecorder(s.log, sink)

	// The terminal result or error event reaches the client through
	// the sink; the return values need no separate write.
	_, _ = s.pipeline.Analyze(ctx, rec, req.Input, req.Persist)
}
