package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	logx "github.com/agent-poc-v1/server/pkg/logger"

	"github.com/agent-poc-v1/server/internal/agent"
	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
)

// Config holds the HTTP listener settings.
type Config struct {
	Host string `default:"0.0.0.0"`
	Port int    `default:"8080"`
}

// Server exposes the chat agent and conversation lifecycle over HTTP.
type Server struct {
	svc        *agent.Service
	httpServer *http.Server
	defaultAge time.Duration
	startTime  time.Time
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// RootResponse describes the service on the index route.
type RootResponse struct {
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
}

// MessageView is one conversation turn in transport form.
type MessageView struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationResponse is the full history payload for one conversation.
type ConversationResponse struct {
	model.ConversationSummary
	Messages []MessageView `json:"messages"`
}

// ConversationsResponse lists conversation summaries.
type ConversationsResponse struct {
	Conversations []model.ConversationSummary `json:"conversations"`
	Total         int                         `json:"total"`
}

// DeleteResponse confirms a conversation removal.
type DeleteResponse struct {
	ConversationID string `json:"conversation_id"`
	Deleted        bool   `json:"deleted"`
}

// CleanupRequest optionally overrides the configured cleanup age.
type CleanupRequest struct {
	MaxAge string `json:"max_age,omitempty"`
}

// CleanupResponse reports how many conversations were removed.
type CleanupResponse struct {
	Removed int    `json:"removed"`
	MaxAge  string `json:"max_age"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New wires up the routes and returns a Server ready to Start.
func New(cfg Config, svc *agent.Service, defaultCleanupAge time.Duration) *Server {
	s := &Server{
		svc:        svc,
		defaultAge: defaultCleanupAge,
		startTime:  time.Now(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the route mux. Exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/postman", s.postmanHandler)
	mux.HandleFunc("/conversations", s.conversationsHandler)
	mux.HandleFunc("/conversations/", s.conversationHandler)
	mux.HandleFunc("/cleanup", s.cleanupHandler)
	return mux
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	logx.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, errx.NotFound("unknown route"))
		return
	}
	writeJSON(w, http.StatusOK, RootResponse{
		Service: "agent-poc",
		Endpoints: []string{
			"GET /health",
			"POST /chat",
			"POST /postman",
			"GET /conversations",
			"GET /conversations/{id}",
			"DELETE /conversations/{id}",
			"POST /cleanup",
		},
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req agent.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errx.InvalidArgument("invalid request body"))
		return
	}

	resp, err := s.svc.Chat(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// postmanHandler is a demo-friendly alias of /chat: failures never surface as
// transport errors, the client always gets a card response.
func (s *Server) postmanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req agent.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, model.NewOtherResponse("", "I could not read that request. Please send JSON with text and user_id."))
		return
	}

	resp, err := s.svc.Chat(r.Context(), req)
	if err != nil {
		logx.Error().Err(err).Msg("Chat failed on postman route; answering with fallback card")
		writeJSON(w, http.StatusOK, model.NewOtherResponse(req.ConversationID, "Something went wrong while handling that request. Please try again."))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) conversationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries, err := s.svc.ListConversations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConversationsResponse{
		Conversations: summaries,
		Total:         len(summaries),
	})
}

func (s *Server) conversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if conversationID == "" || strings.Contains(conversationID, "/") {
		writeError(w, errx.NotFound("unknown route"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		history, err := s.svc.GetConversation(r.Context(), conversationID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := ConversationResponse{
			ConversationSummary: history.Summary,
			Messages:            make([]MessageView, 0, len(history.Messages)),
		}
		for _, m := range history.Messages {
			resp.Messages = append(resp.Messages, MessageView{
				Role:    string(m.Role),
				Content: m.Content,
			})
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodDelete:
		if err := s.svc.DeleteConversation(r.Context(), conversationID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, DeleteResponse{ConversationID: conversationID, Deleted: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) cleanupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxAge := s.defaultAge
	var req CleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.MaxAge != "" {
		parsed, err := time.ParseDuration(req.MaxAge)
		if err != nil {
			writeError(w, errx.InvalidArgument("max_age must be a duration like 24h or 30m"))
			return
		}
		maxAge = parsed
	}

	removed, err := s.svc.Cleanup(r.Context(), maxAge)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{Removed: removed, MaxAge: maxAge.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeError maps the failure taxonomy onto HTTP statuses. Internal detail
// stays in the logs, not the response body.
func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	message := errx.SystemErrorMessage

	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	} else {
		switch {
		case errors.Is(err, errx.ErrStorageUnavailable):
			status = http.StatusBadGateway
			message = "conversation storage is unavailable"
		case errors.Is(err, errx.ErrUpstreamReasoning):
			status = http.StatusBadGateway
			message = "agent is temporarily unavailable"
		case errors.Is(err, errx.ErrNotFound):
			status = http.StatusNotFound
			message = "not found"
		case errors.Is(err, errx.ErrInvalidArgument):
			status = http.StatusBadRequest
			message = "invalid argument"
		}
	}

	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		logx.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}
