package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/config"
	"github.com/guttosm/mandipulse/internal/agmarknet"
	"github.com/guttosm/mandipulse/internal/api"
	"github.com/guttosm/mandipulse/internal/groq"
	"github.com/guttosm/mandipulse/internal/service"
	"github.com/guttosm/mandipulse/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Builds the AGMARKNET and Groq clients with their credentials injected.
//   - Wires the price, assistant and auth services into the HTTP handler.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	// ─── Outbound clients ─────────────────────────
	prices := agmarknet.NewClient(agmarknet.Config{
		APIKey:     cfg.DataGov.APIKey,
		BaseURL:    cfg.DataGov.BaseURL,
		ResourceID: cfg.DataGov.ResourceID,
		Timeout:    cfg.DataGov.Timeout,
	})
	chat := groq.NewClient(groq.Config{
		APIKey:  cfg.Groq.APIKey,
		APIURL:  cfg.Groq.APIURL,
		Timeout: cfg.Groq.Timeout,
	})

	// ─── Services ─────────────────────────────────
	priceSvc := service.NewPriceService(prices)
	assistantSvc := service.NewAssistantService(chat, cfg.Groq.Model, cfg.Groq.VisionModel)
	authSvc := service.NewAuthService(storage.NewUsersRepository(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	handler := api.NewHandler(priceSvc, assistantSvc, authSvc)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	// Register health and readiness probes
	api.NewHealthHandler(db.Ping).Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
