package main

import (
	"os"

	"github.com/ezekaj/learning-sol-sub000/internal/api/handlers"
	"github.com/ezekaj/learning-sol-sub000/internal/api/middleware"
	"github.com/ezekaj/learning-sol-sub000/internal/config"
	"github.com/ezekaj/learning-sol-sub000/internal/crypto"
	"github.com/ezekaj/learning-sol-sub000/internal/database"
	"github.com/ezekaj/learning-sol-sub000/internal/debug"
	"github.com/ezekaj/learning-sol-sub000/internal/websocket"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if lvl, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		logger.Warnf("Unknown log level %q, keeping default", cfg.LogLevel)
	} else {
		logger.SetLevel(lvl)
	}
	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Dev-only: wipe chat history between manual test runs
	if os.Getenv("COLLAB_DEV_PRUNE_MESSAGES") == "1" || os.Getenv("COLLAB_DEV_PRUNE_MESSAGES") == "true" {
		logger.Warnf("COLLAB_DEV_PRUNE_MESSAGES enabled - pruning chat_messages table")
		if err := debug.PruneChatMessages(db.DB); err != nil {
			logger.Warnf("Failed to prune chat messages: %v", err)
		}
	}

	// Initialize JWT manager
	logger.Infof("Initializing JWT manager...")
	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	// Initialize Socket.IO server
	logger.Infof("Initializing Socket.IO server...")
	socketIOServer := websocket.NewSocketIOServer(db.DB, jwtManager)
	defer socketIOServer.Close()

	// Initialize the read-only observer stream and mirror broadcasts into it
	streamServer := websocket.NewStreamServer(db.DB)
	socketIOServer.AttachStream(streamServer)

	// Create Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Root endpoint - returns plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Collab Server!")
	})

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db.DB, socketIOServer)

	// Protected routes (auth required)
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(jwtManager))
	{
		// Sessions
		v1.GET("/sessions", sessionHandler.ListSessions)
		v1.POST("/sessions", sessionHandler.CreateSession)
		v1.GET("/sessions/:id", sessionHandler.GetSession)
		v1.GET("/sessions/:id/messages", sessionHandler.GetSessionMessages)
		v1.POST("/sessions/:id/participants", sessionHandler.AddParticipant)

		// Observer stream (plain WebSocket, read-only)
		v1.GET("/sessions/:id/stream", streamServer.HandleStream)
	}

	// Mount Socket.IO endpoint at /v1/collab (accessible without auth for handshake)
	// Auth will be checked after connection is established
	router.Any("/v1/collab", socketIOServer.HandleSocketIO())
	router.Any("/v1/collab/*any", socketIOServer.HandleSocketIO())

	// Start HTTP server
	logger.Infof("Database: %s", cfg.DatabasePath)
	logger.Infof("JWT signing enabled")

	if cfg.TLS != nil {
		logger.Infof("Collab Server starting on https://localhost%s", cfg.Addr)
		err = router.RunTLS(cfg.Addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
	} else {
		logger.Infof("Collab Server starting on http://localhost%s", cfg.Addr)
		err = router.Run(cfg.Addr)
	}
	if err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
