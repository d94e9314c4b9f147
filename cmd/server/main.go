package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"

	"github.com/spendlens/backend/internal/ai"
	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/insight"
	"github.com/spendlens/backend/internal/logger"
	"github.com/spendlens/backend/internal/ocr"
	"github.com/spendlens/backend/internal/service"
	"github.com/spendlens/backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	var st store.Store
	if cfg.FirestoreProject != "" {
		client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			log.Fatal().Err(err).Str("project", cfg.FirestoreProject).Msg("create firestore client")
		}
		defer client.Close()
		st = store.NewFirestoreStore(client)
		log.Info().Str("project", cfg.FirestoreProject).Msg("using firestore store")
	} else {
		st = store.NewMemoryStore()
		log.Info().Msg("using in-memory store")
	}

	// A typed nil *GeminiProvider must not reach the interface-valued
	// orchestrator field, or Enabled would misreport.
	var provider ai.Provider
	if gemini := ai.NewGeminiProvider(cfg.GeminiAPIKey); gemini != nil {
		provider = gemini
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, AI operations run in degraded mode")
	}
	orchestrator := ai.New(provider, log)

	cache := insight.NewCache(st, cfg.InsightTTL, log)
	documents := ocr.NewPool(ocr.TextEngine{}, int64(cfg.OCRMaxConcurrent), time.Duration(cfg.OCRTimeoutSeconds)*time.Second, log)
	svc := service.NewAIService(st, orchestrator, cache, documents, log)

	mux := service.NewHandler(svc, log).Routes()

	c := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSAllowedOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
