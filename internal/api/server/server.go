package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microcasa/internal/config"
	"microcasa/internal/research"
	"microcasa/internal/session"
	"microcasa/internal/storage"
	"microcasa/internal/telemetry"
	"microcasa/internal/web"

	"microcasa/internal/api/handlers"
	"microcasa/internal/api/middleware"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Sessions *session.Manager
	Renderer *web.Renderer
	Research *research.Data
	// Storage receives CSV exports; nil disables the export routes.
	Storage *storage.Client
	// Pacer spaces burst steps; nil means real sleeps.
	Pacer  telemetry.Pacer
	Logger *zap.Logger
}

type Server struct {
	cfg    *config.Config
	deps   Deps
	router *gin.Engine
}

func New(cfg *config.Config, deps Deps) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if deps.Pacer == nil {
		deps.Pacer = telemetry.SleepPacer{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), middleware.RequestLogger(s.deps.Logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	deckHandler := handlers.NewDeckHandler(s.deps.Renderer)
	telemetryHandler := handlers.NewTelemetryHandler(
		s.deps.Research,
		s.deps.Renderer,
		s.deps.Storage,
		s.deps.Pacer,
		s.cfg.BurstPace(),
		s.deps.Logger,
	)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "microcasa", "sessions": s.deps.Sessions.Len()})
	})

	cookie := middleware.SessionCookie{
		Name:   s.cfg.Session.CookieName,
		Secret: []byte(s.cfg.Session.Secret),
		TTL:    s.cfg.SessionTTL(),
	}

	// Everything below belongs to the caller's deck session.
	deck := s.router.Group("/")
	deck.Use(middleware.RequireSession(s.deps.Sessions, cookie, s.deps.Logger))
	{
		deck.GET("/", deckHandler.Page)
		deck.POST("/nav/goto/:slide", deckHandler.GoTo)
		deck.POST("/nav/next", deckHandler.Next)
		deck.POST("/nav/previous", deckHandler.Previous)
		deck.POST("/nav/begin", deckHandler.Begin)

		deck.POST("/simulate", telemetryHandler.Simulate)
		deck.POST("/submit", telemetryHandler.Submit)

		v1 := deck.Group("/api/v1")
		v1.GET("/deck", deckHandler.State)
		v1.GET("/telemetry", telemetryHandler.Table)
		v1.GET("/charts/:name", telemetryHandler.Chart)
		v1.POST("/telemetry/export", telemetryHandler.Export)
		v1.GET("/telemetry/exports", telemetryHandler.Exports)
		v1.GET("/telemetry/exports/:file", telemetryHandler.Download)
		v1.DELETE("/telemetry/exports/:file", telemetryHandler.DeleteExport)
	}
}

// Handler exposes the router for an http.Server or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
