package server

import (
	"fmt"
	"strings"

	"sim-trader/src/interfaces"
	"sim-trader/src/logger"
	"sim-trader/src/models"
	"sim-trader/src/simclock"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

type Server struct {
	Config      *models.MConfig
	Logger      *logger.Logger
	Broadcaster *Broadcaster

	engine   *gin.Engine
	store    interfaces.IClockStore
	calendar *simclock.Calendar
	alpaca   *alpaca.Client
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(cfg *models.MConfig, store interfaces.IClockStore, broadcaster *Broadcaster,
	cal *simclock.Calendar, log *logger.Logger) *Server {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config:      cfg,
		Logger:      log,
		Broadcaster: broadcaster,
		engine:      gin.Default(),
		store:       store,
		calendar:    cal,
	}

	// The real-market clock relay is optional; it needs Alpaca credentials.
	if cfg.Alpaca.APIKey != "" {
		s.alpaca = alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.Alpaca.APIKey,
			APISecret: cfg.Alpaca.APISecret,
			BaseURL:   cfg.Alpaca.BaseURL,
		})
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/market/clock", s.getMarketClock)

	s.engine.POST("/api/settings/:user_id", s.createSettings)
	s.engine.GET("/api/settings/:user_id", s.getSettings)
	s.engine.PATCH("/api/settings/:user_id/speed", s.setSpeed)
	s.engine.PATCH("/api/settings/:user_id/pause", s.setPause)
	s.engine.PATCH("/api/settings/:user_id/start-time", s.setStartTime)

	// WebSocket endpoint
	s.engine.GET("/ws/sim-time", s.handleSimTimeWS)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": s.Broadcaster.ConnectedCount(),
	})
}
