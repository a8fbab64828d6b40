// Package control exposes the HTTP endpoints used by the downstream
// processor to talk back to chats and to manage the request queue.
//
// Endpoints:
//   - POST /send-message: Send text or an image to a chat
//   - POST /send-status: Send a canned status update to a chat
//   - GET /queue-status: Queue counters and head of queue
//   - POST /clear-queue: Drop every pending request
//   - POST /clear-context: Forget reply context for one chat or all chats
//   - GET /health: Health monitor report
package control

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"loadbot/internal/contextstore"
	"loadbot/internal/health"
	"loadbot/internal/queue"
	"loadbot/internal/transport"
)

// maxBodySize limits request bodies read by the handlers.
const maxBodySize = 1 << 20

// Queue is the part of the request queue the control surface needs.
type Queue interface {
	Status() queue.Status
	Clear() int
}

// Deps are the collaborators behind the endpoints.
//
// Fields:
//   - Sender: Chat transport (nil makes the send endpoints answer 500)
//   - Contexts: Reply context store
//   - Queue: Request queue
//   - Monitor: Health monitor served on /health (may be nil)
type Deps struct {
	Sender   transport.Sender
	Contexts *contextstore.Store
	Queue    Queue
	Monitor  *health.Monitor
}

// Server is the control HTTP server.
type Server struct {
	deps Deps
	mux  *http.ServeMux
	http *http.Server
	now  func() time.Time
}

// NewServer creates a Server and registers all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps: deps,
		mux:  http.NewServeMux(),
		now:  time.Now,
	}

	s.mux.HandleFunc("POST /send-message", s.handleSendMessage)
	s.mux.HandleFunc("POST /send-status", s.handleSendStatus)
	s.mux.HandleFunc("GET /queue-status", s.handleQueueStatus)
	s.mux.HandleFunc("POST /clear-queue", s.handleClearQueue)
	s.mux.HandleFunc("POST /clear-context", s.handleClearContext)
	if deps.Monitor != nil {
		s.mux.Handle("GET /health", deps.Monitor.Handler())
	}

	return s
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on port in a background goroutine and returns immediately.
//
// Parameters:
//   - port: Port to listen on (e.g., "3000")
func (s *Server) Start(port string) {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("✓ Control server started on :%s", port)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️  Control server error: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	log.Println("🛑 Stopping control server...")
	return s.http.Shutdown(ctx)
}
