package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// maxBodyBytes caps JSON request bodies; image prompts may carry data URIs.
const maxBodyBytes = 5 << 20

// RouterConfig holds the HTTP settings that come from configuration.
type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter creates a Gin engine with routes configured.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler,
//     RateLimiter, CORS, timeout, body limit).
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures price, assistant and auth routes under /api.
//
// Health endpoints are registered separately by app.InitializeApp.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.BodyLimit(maxBodyBytes),
	)

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API ──────────────────────────────────────
	api := router.Group("/api")
	if handler.prices != nil {
		api.GET("/prices", handler.GetPrices)
		api.GET("/prices/series", handler.GetSeries)
	}
	if handler.assistant != nil {
		api.POST("/ai", handler.Ask)
	}
	if handler.auth != nil {
		auth := api.Group("/auth")
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.GET("/me", middleware.RequireAuth(handler.auth), handler.Me)
	}

	return router
}
