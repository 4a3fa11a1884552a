// Package server exposes the dashboard API: login, role-scoped retrieval and
// chat, document upload and the per-role landing view.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"finrag/config"
	"finrag/internal/adapter/auth"
	"finrag/internal/adapter/cache"
	"finrag/internal/domain"
	"finrag/internal/port"
	"finrag/internal/usecase"
)

// Server wires the use cases behind HTTP handlers.
type Server struct {
	cfg       *config.Config
	logger    *log.Logger
	creds     *auth.CredentialsFile
	signer    *auth.Signer
	sessions  *Registry
	ingestor  *usecase.Ingestor
	answerer  *usecase.Answerer
	retriever *usecase.Retriever
	extractor port.Extractor
	answers   *cache.AnswerCache
}

// New assembles a server from its dependencies.
func New(
	cfg *config.Config,
	logger *log.Logger,
	creds *auth.CredentialsFile,
	ingestor *usecase.Ingestor,
	answerer *usecase.Answerer,
	retriever *usecase.Retriever,
	extractor port.Extractor,
) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		creds:     creds,
		signer:    auth.NewSigner(creds.Cookie),
		sessions:  NewRegistry(),
		ingestor:  ingestor,
		answerer:  answerer,
		retriever: retriever,
		extractor: extractor,
		answers:   cache.NewAnswerCache(100, 5*time.Minute),
	}
}

// Routes builds the router with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.requireSession(s.handleLogout))

	mux.HandleFunc("GET /api/v1/dashboard", s.requireSession(s.handleDashboard))
	mux.HandleFunc("POST /api/v1/query", s.requireSession(s.handleQuery))
	mux.HandleFunc("POST /api/v1/chat", s.requireSession(s.handleChat))
	mux.HandleFunc("POST /api/v1/docs/upload", s.requireSession(s.handleUpload))

	return s.middleware(mux)
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second, // uploads run OCR and a full re-embed
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)

		s.logger.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *domain.Session)

// requireSession verifies the signed cookie and resolves the live session
// before letting the handler run.
func (s *Server) requireSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.signer.Name())
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, "not logged in")
			return
		}
		id, err := s.signer.Verify(c.Value)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, "session invalid or expired")
			return
		}
		sess, err := s.sessions.Get(id)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, "session not found, log in again")
			return
		}
		h(w, r, sess)
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, StandardResponse{Success: false, Error: msg})
}
