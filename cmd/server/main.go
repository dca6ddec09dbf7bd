// Package main starts the query gateway server.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pondpilot/pondpilot-sub007/pkg/attachments"
	"github.com/pondpilot/pondpilot-sub007/pkg/config"
	"github.com/pondpilot/pondpilot-sub007/pkg/connection"
	"github.com/pondpilot/pondpilot-sub007/pkg/gateway"
	"github.com/pondpilot/pondpilot-sub007/pkg/notify"
	"github.com/pondpilot/pondpilot-sub007/pkg/retry"
	"github.com/pondpilot/pondpilot-sub007/server/handlers"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}).
		With().Timestamp().Logger()

	v := config.NewViper()
	if path := os.Getenv("PONDPILOT_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to read config file")
		}
	}

	store, err := config.NewStoreFromViper(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid proxy configuration")
	}

	mgr, err := connection.Open(v.GetString("db.path"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	repo, err := attachments.NewRepository(context.Background(), mgr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize attachment registry")
	}

	buffer := notify.NewBuffer(64)
	policy := retry.Policy{
		MaxAttempts:        v.GetInt("retry.max_attempts"),
		BaseDelay:          v.GetDuration("retry.base_delay"),
		ExponentialBackoff: v.GetBool("retry.exponential"),
		Timeout:            v.GetDuration("retry.timeout"),
	}

	gw := gateway.New(mgr, store,
		gateway.WithRegistry(repo),
		gateway.WithNotifier(notify.Multi{notify.NewLogSink(log), buffer}),
		gateway.WithPolicy(policy),
		gateway.WithLogger(log),
	)

	queryHandler := handlers.NewQueryHandler(gw, log)
	adminHandler := handlers.NewAdminHandler(repo, store, buffer, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", adminHandler.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", queryHandler.ExecuteQuery)
		r.Get("/attachments", adminHandler.ListAttachments)
		r.Get("/config/proxy", adminHandler.GetProxyConfig)
		r.Put("/config/proxy", adminHandler.UpdateProxyConfig)
		r.Get("/notifications", adminHandler.ListNotifications)
	})

	addr := v.GetString("server.addr")
	log.Info().Str("addr", addr).Msg("starting server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
