package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prepbox/examsim-backend/internal/config"
	"github.com/prepbox/examsim-backend/internal/handler"
	"github.com/prepbox/examsim-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Setting *handler.SettingHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Session (the view layer's intents) ────────────────────────────
	sessionAPI := router.Group("/api/v1/session")
	{
		sessionAPI.GET("", handlers.Session.GetState)
		sessionAPI.POST("/login", handlers.Session.Login)
		sessionAPI.POST("/logout", handlers.Session.Logout)
		sessionAPI.POST("/exam/start", handlers.Session.StartExam)
		sessionAPI.POST("/exam/timer/start", handlers.Session.StartTimer)
		sessionAPI.POST("/exam/answer", handlers.Session.SelectAnswer)
		sessionAPI.POST("/exam/submit", handlers.Session.Submit)
		sessionAPI.POST("/review", handlers.Session.Review)
		sessionAPI.POST("/dashboard", handlers.Session.Dashboard)
		sessionAPI.GET("/progress", handlers.Session.Progress)
		sessionAPI.POST("/theme", handlers.Session.ToggleTheme)
		sessionAPI.GET("/attempts", handlers.Session.ListAttempts)
	}

	// ─── Settings ───────────────────────────────────────────────────────
	settingsAPI := router.Group("/api/v1/settings")
	{
		settingsAPI.GET("", handlers.Setting.GetSettings)
		settingsAPI.PUT("", handlers.Setting.UpdateSettings)
	}

	// ─── WebSocket ──────────────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	{
		wsGroup.GET("/session/timer", handlers.WS.TimerStream)
	}

	return router
}
