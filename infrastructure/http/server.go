// Package http exposes the chat over HTTP: credential endpoints, message
// reads and writes, and a websocket stream of realtime change batches.
package http

import (
	"log/slog"
	"net/http"

	"easychat/auth"
	"easychat/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

type Server struct {
	log    *slog.Logger
	auth   services.IAuthService
	chat   services.IChatService
	router chi.Router
}

func NewServer(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService) *Server {
	s := &Server{log: log, auth: authService, chat: chatService}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/reset", s.handleReset)

		r.Get("/messages", s.handleGetMessages)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/messages", s.handlePostMessage)
		})
	})
	r.Get("/ws", s.handleFeed)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encoding failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
