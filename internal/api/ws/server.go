package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/reconcile"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server pushes pass summaries to WebSocket subscribers.
type Server struct {
	server *http.Server
	hub    *Hub
	logger *zap.Logger
}

func NewServer(logger *zap.Logger) *Server {
	return &Server{
		hub:    NewHub(),
		logger: logger,
	}
}

// Start runs the hub and serves WebSocket connections on the port.
func (s *Server) Start(port string) error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/passes", s.handlePasses)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	s.logger.Info("websocket server listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastSummary pushes a finished pass summary to all clients.
func (s *Server) BroadcastSummary(summary reconcile.PassSummary) {
	payload, err := json.Marshal(summary)
	if err != nil {
		s.logger.Warn("encoding pass summary for broadcast", zap.Error(err))
		return
	}
	s.hub.Broadcast(payload)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
