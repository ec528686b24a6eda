// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"aria-support-chat/internal/config"
	"aria-support-chat/internal/domain/ports/adapter"
	"aria-support-chat/internal/domain/ports/repository"
	aiAdapters "aria-support-chat/internal/infra/adapters/ai"
	pg "aria-support-chat/internal/infra/db/postgres"
	"aria-support-chat/internal/infra/i18n"
	"aria-support-chat/internal/infra/logging"
	"aria-support-chat/internal/infra/memory"
	"aria-support-chat/internal/infra/metrics"
	red "aria-support-chat/internal/infra/redis"
	"aria-support-chat/internal/infra/transcript"
	"aria-support-chat/internal/infra/web"
	"aria-support-chat/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted contacts)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	if cfg.Metrics.Enabled {
		metrics.MustRegister()
		metrics.SetBuildInfo(version, commit)
	}

	// ---- Locale & persona ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Chat.Locale)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	persona := tr.Persona()
	if cfg.AI.PersonaFile != "" {
		b, err := os.ReadFile(cfg.AI.PersonaFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.AI.PersonaFile).Msg("persona")
		}
		persona = string(b)
	}

	// ---- Stores ----
	sessions := memory.NewSessionRepo()
	conversations := memory.NewConversationRepo()

	// ---- AI adapter ----
	ai, err := aiAdapters.New(cfg.AI)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai adapter")
	}
	gateway := usecase.NewCompletionGateway(ai, persona, cfg.AI.Timeout, logger)

	// ---- Redis (optional turn limiter) ----
	var limiter adapter.TurnLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient, cfg.Redis.TurnLimit, cfg.Redis.TurnWindow)
	}

	// ---- Postgres (optional transcript archive) ----
	var archives []repository.TranscriptArchive
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		archives = append(archives, pg.NewTranscriptArchive(pool))
	}

	// ---- Transcript writer ----
	writer, err := transcript.NewWriter(cfg.Storage.Dir, cfg.Storage.CSVName, logger, archives...)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage")
	}

	// ---- Use case ----
	chatUC := usecase.NewChatUseCase(sessions, conversations, gateway, writer, limiter, tr, logger, usecase.ChatOptions{
		HistoryWindow:   cfg.Chat.HistoryWindow,
		RetentionWindow: cfg.Chat.RetentionWindow,
		AutosaveEvery:   cfg.Chat.AutosaveEvery,
		Selector:        usecase.RandomSelector(cfg.Chat.FallbackSeed),
		Dev:             cfg.Runtime.Dev,
	})

	// ---- HTTP ----
	srv := web.NewServer(chatUC, tr, logger, web.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Metrics:      cfg.Metrics.Enabled,
	})
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	banner(logger, cfg, ai, limiter != nil, len(archives) > 0)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			exitCode = 1
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("saving all conversations")
	if err := chatUC.ShutdownFlush(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown flush incomplete")
		exitCode = 1
	} else {
		logger.Info().Msg("all saved, goodbye")
	}
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func banner(logger *zerolog.Logger, cfg *config.Config, ai adapter.AIServiceAdapter, limited, archived bool) {
	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)).
		Str("storage", cfg.Storage.Dir).
		Str("provider", ai.Provider()).
		Str("model", ai.Model()).
		Bool("api_key_configured", ai.Configured()).
		Bool("rate_limit", limited).
		Bool("archive", archived).
		Str("endpoints", strings.Join([]string{
			"POST /init-session",
			"POST /chat",
			"POST /save-conversation",
			"GET /conversation/{userId}",
			"GET /download-all",
			"GET /sessions",
			"GET /health",
		}, ", ")).
		Str("version", version).
		Msg("Air New Zealand smart assistant ready")

	if !ai.Configured() {
		logger.Warn().
			Str("provider", cfg.AI.Provider).
			Msg("completion API key missing; chat turns will return fallback replies. Set OPENAI_API_KEY (or GEMINI_API_KEY) in .env")
	}
}
