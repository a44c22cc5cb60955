package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"synapse-assistant/internal/chat"
	"synapse-assistant/internal/config"
	"synapse-assistant/internal/store"
	"synapse-assistant/internal/types"
)

type Server struct {
	router    *chi.Mux
	store     *store.MemoryStore
	cfg       config.Config
	recipient string
	log       *zap.Logger
}

// NewServer wires the chat and contact endpoints. recipient is the address
// contact drafts are addressed to.
func NewServer(cfg config.Config, sessions *store.MemoryStore, recipient string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:    r,
		store:     sessions,
		cfg:       cfg,
		recipient: recipient,
		log:       log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/api/chat/transcript", s.handleTranscript)
	s.router.Delete("/api/chat/session", s.handleEndSession)
	s.router.Post("/api/contact", s.handleContact)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sid := getSessionID(r)
	if sid == "" {
		sid = strings.TrimSpace(req.SessionID)
	}
	if sid == "" {
		sid = newSessionID()
	}
	sess, created := s.store.GetOrCreate(sid)
	if created {
		s.log.Info("session created", zap.String("session", sid), zap.String("path", r.URL.Path))
	}
	SetSessionCookie(w, sid, s.cfg.SecureCookies)
	w.Header().Set("X-Session-Id", sid)

	done, err := sess.Submit(req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrSessionClosed) {
			s.writeError(w, http.StatusConflict, "chat session has ended")
			return
		}
		s.log.Error("chat submit failed", zap.String("session", sid), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not accept your message")
		return
	}

	select {
	case msg, ok := <-done:
		if !ok {
			s.writeError(w, http.StatusConflict, "chat session ended before the reply")
			return
		}
		s.log.Debug("chat reply", zap.String("session", sid), zap.String("intent", string(msg.Intent)))
		s.writeJSON(w, http.StatusOK, types.ChatResponse{
			SessionID: sid,
			Reply:     msg.Text,
			Intent:    string(msg.Intent),
		})
	case <-r.Context().Done():
		// The reply still lands in the transcript.
		s.log.Debug("client left before reply", zap.String("session", sid))
	}
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)
	sess, ok := s.store.Get(sid)
	if sid == "" || !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	entries := sess.Transcript()
	msgs := make([]types.TranscriptMessage, 0, len(entries))
	for _, m := range entries {
		msgs = append(msgs, types.TranscriptMessage{
			Role:   string(m.Role),
			Text:   m.Text,
			Intent: string(m.Intent),
			At:     m.At,
		})
	}
	s.writeJSON(w, http.StatusOK, types.TranscriptResponse{SessionID: sid, Messages: msgs, Pending: sess.Pending()})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)
	ClearSessionCookie(w, s.cfg.SecureCookies)
	if sid == "" || !s.store.Delete(sid) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.log.Info("session ended", zap.String("session", sid))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func newSessionID() string {
	return "s_" + uuid.NewString()
}

// getSessionID reads the session ID from the cookie, then the X-Session-Id
// header, then the sessionId query parameter.
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	return r.URL.Query().Get("sessionId")
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
