// Package server wires the DealHunter backend together: configuration,
// telemetry, store selection, services, and the HTTP router.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/internal/alerts"
	"github.com/dealhunter/dealhunter/internal/api"
	"github.com/dealhunter/dealhunter/internal/api/handlers"
	"github.com/dealhunter/dealhunter/internal/catalog"
	"github.com/dealhunter/dealhunter/internal/chat"
	"github.com/dealhunter/dealhunter/internal/config"
	"github.com/dealhunter/dealhunter/internal/mailer"
	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/internal/telemetry"
	"github.com/dealhunter/dealhunter/internal/tracking"
)

// Server holds the initialized DealHunter backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (Postgres, or in-memory when no
	// DATABASE_URL is configured).
	Store store.Store

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var dataStore store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		dataStore = pg
	} else {
		log.Info().Msg("no DATABASE_URL configured, using in-memory store with demo catalog")
		dataStore = store.NewSeededMemoryStore()
	}

	cat := catalog.New(dataStore)
	tracker := tracking.New(dataStore, cfg.Email.AlertEmail)
	mail := mailer.New(cfg.Email)
	simulator := alerts.NewSimulator(dataStore, tracker, mail)

	engine := chat.NewEngine(cfg.OpenAI)
	dispatcher := chat.NewDispatcher(cat, tracker)
	chatSvc := chat.NewService(engine, dispatcher, chat.NewSessionStore())

	h := handlers.New(cat, tracker, chatSvc, simulator)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
