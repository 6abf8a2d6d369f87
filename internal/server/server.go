package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/database"
	"github.com/kurodate/qa-board/backend/internal/handlers"
	"github.com/kurodate/qa-board/backend/internal/middleware"
)

type Server struct {
	db      *database.Database
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.IdentityHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Identity is resolved for every request; handlers decide whether
	// they need one.
	r.Use(middleware.Identity())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := r.Group("/api")
	{
		// DB health (connection pool stats)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, database.New().Health())
		})

		// Session routes
		api.POST("/session", s.handler.Session.CreateSession)
		api.GET("/me", s.handler.Session.GetMe)

		// Question routes
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.POST("/questions", s.handler.Question.CreateQuestion)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)
		api.POST("/questions/:id/views", s.handler.Question.IncrementViews)
		api.POST("/questions/:id/vote", s.handler.Question.VoteQuestion)

		// Answer routes
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)
		api.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)
		api.POST("/answers/:id/vote", s.handler.Answer.VoteAnswer)

		// Tag routes
		api.GET("/tags", s.handler.Tag.GetTags)
		api.GET("/tags/:id", s.handler.Tag.GetTag)
	}

	return r
}
