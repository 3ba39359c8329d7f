package main

//
//  @title           mandipulse API
//  @version         1.0
//  @description     Mandi (agricultural market) prices, farming assistant and accounts for the Bharti Kisan frontend.
//  @termsOfService  https://github.com/guttosm/mandipulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/mandipulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8787
//  @BasePath        /
//  @schemes         http
//
//  @securityDefinitions.apikey  BearerAuth
//  @in                          header
//  @name                        Authorization
//
//  @tag.name        prices
//  @tag.description AGMARKNET daily prices, series and trend
//
//  @tag.name        assistant
//  @tag.description Farming assistant backed by a hosted LLM
//
//  @tag.name        auth
//  @tag.description Signup, login and current user
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/mandipulse/config"
	_ "github.com/guttosm/mandipulse/docs" // swagger docs
	"github.com/guttosm/mandipulse/internal/app"
	"github.com/guttosm/mandipulse/internal/logger"
	"github.com/guttosm/mandipulse/internal/trends"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the mandipulse application.
//
// Modes (selected via --mode flag):
//   - api:    Starts the REST API (prices, assistant, auth).
//   - trends: Computes the latest price trend for a list of commodities.
//
// Flags:
//   - --mode:        Execution mode ("api" or "trends"). Default: "api".
//   - --port:        Port for the API server. Defaults to SERVER_PORT.
//   - --commodities: Comma-separated commodities for trends mode.
//   - --state, --market: Optional filters applied to every commodity.
//   - --days:        Lookback window in days (1-30).
//   - --parallel:    Concurrent commodities (0=auto up to CPU, max 8).
//   - --persist:     Store series in Postgres.
//   - --force:       Recompute commodities already stored today.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "api", "Mode: api or trends")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	commodities := flag.String("commodities", "Wheat,Rice,Onion,Potato,Tomato", "Comma-separated commodities for trends mode")
	state := flag.String("state", "", "State filter for trends mode")
	market := flag.String("market", "", "Market filter for trends mode")
	days := flag.Int("days", trends.DefaultLookbackDays, "Lookback window in days (1-30)")
	parallel := flag.Int("parallel", 0, "How many commodities to process concurrently (0=auto up to CPU, max 8)")
	persist := flag.Bool("persist", false, "Store computed series in Postgres")
	force := flag.Bool("force", false, "Recompute commodities already stored for today")
	flag.Parse()

	switch *mode {
	case "trends":
		logger.L().Info().Msg("running trends")

		results, err := app.RunTrends(ctx, config.AppConfig, app.TrendsInput{
			Commodities:  *commodities,
			State:        *state,
			Market:       *market,
			LookbackDays: *days,
			Parallel:     *parallel,
			Persist:      *persist,
			Force:        *force,
		})
		if err != nil {
			logger.L().Fatal().Err(err).Msg("trends failed")
		}
		logger.L().Info().Int("commodities", len(results)).Msg("trends completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
