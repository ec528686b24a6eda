package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"aria-support-chat/internal/usecase"
)

type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	Metrics      bool // expose GET /metrics
}

// Server is the public chat API consumed by the browser widget.
type Server struct {
	chat    usecase.ChatUseCase
	phrases usecase.Phrases
	log     *zerolog.Logger
	opts    Options

	srv *http.Server
}

func NewServer(chat usecase.ChatUseCase, phrases usecase.Phrases, logger *zerolog.Logger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	l := logger.With().Str("component", "http").Logger()
	return &Server{chat: chat, phrases: phrases, log: &l, opts: opts}
}

// Routes builds the router with the recover, trace and request-log chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), CORS(), TraceID(), RequestLog(s.log))

	r.Post("/init-session", s.handleInitSession)
	r.Post("/chat", s.handleChat)
	r.Post("/save-conversation", s.handleSaveConversation)
	r.Get("/conversation/{userId}", s.handleConversation)
	r.Get("/download-all", s.handleDownloadAll)
	r.Get("/sessions", s.handleSessions)
	r.Get("/health", s.handleHealth)
	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// Start blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
