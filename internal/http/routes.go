package http

import (
	"time"

	"sealed_rps/internal/config"
	"sealed_rps/internal/http/handlers"
	"sealed_rps/internal/http/middleware"
	"sealed_rps/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config  *config.Config
	Handler *handlers.Handler
	Hub     *ws.Hub
	Checks  map[string]handlers.Check
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := d.Handler
	healthHandler := handlers.NewHealthHandler(d.Version, d.Checks)

	r.Use(middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	gameRateWindow := time.Duration(cfg.GameRateWindow) * time.Second

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.APIRateLimit, apiRateWindow))

	v1.POST("/auth", h.Auth)
	v1.GET("/moves", h.Moves)

	games := v1.Group("/games")
	{
		games.POST("", middleware.JWT(), middleware.GameRateLimit("create", cfg.GameRateLimit, gameRateWindow), h.CreateGame)
		games.GET("/:id", h.GetGame)
		games.GET("/:id/choices", middleware.JWT(), h.GameChoices)
		games.POST("/:id/choice", middleware.JWT(), middleware.GameRateLimit("choice", cfg.GameRateLimit, gameRateWindow), h.SubmitChoice)
		games.POST("/:id/reveal", middleware.JWT(), middleware.GameRateLimit("reveal", cfg.GameRateLimit, gameRateWindow), h.RequestReveal)
		games.GET("/:id/events", h.GameEvents)
	}

	v1.GET("/players/:address/games", h.PlayerGames)

	v1.GET("/decryption", h.DecryptionStatus)
	v1.POST("/decryption/callback", h.DecryptionCallback)

	admin := v1.Group("/admin")
	admin.Use(middleware.JWT())
	{
		admin.POST("/decryption/reset", h.ResetDecryption)
	}

	// live event stream
	r.GET("/ws", ws.HandleWS(d.Hub, h.Ledger.PlayerGames, cfg.AllowedOrigin))
}
