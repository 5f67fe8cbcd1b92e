package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uslugo/config"
	"uslugo/internal/handler"
	"uslugo/internal/middleware"
	"uslugo/internal/redis"
	"uslugo/internal/services"
	"uslugo/internal/transport/httpdto"
	"uslugo/internal/ws"
	"uslugo/pkg/database"
	"uslugo/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	db         *gorm.DB
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Message  *handler.MessageHandler
	Service  *handler.ServiceHandler
	Review   *handler.ReviewHandler
	Favorite *handler.FavoriteHandler
	WS       *ws.Handler
}

func New(cfg *config.Config, l *logger.Logger, db *gorm.DB) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		db:     db,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	if limiter != nil {
		s.engine.Use(middleware.RateLimitMiddleware(limiter))
	}

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authn := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/api/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	users := s.engine.Group("/api/users", authn)
	{
		users.GET("/me", handlers.User.Me)
		users.PUT("/me", handlers.User.Update)
		users.DELETE("/me", handlers.User.Delete)
		users.POST("/me/avatar", handlers.User.UploadAvatar)
		users.GET("/:userId", handlers.User.Get)
	}

	messages := s.engine.Group("/api/messages", authn)
	{
		messages.GET("/conversations", handlers.Message.Conversations)
		messages.GET("/unread-count", handlers.Message.UnreadCount)
		messages.GET("/:userId", handlers.Message.History)
		messages.POST("/markRead", handlers.Message.MarkRead)
		if limiter != nil {
			messages.POST("", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.Send)
		} else {
			messages.POST("", handlers.Message.Send)
		}
	}

	servicesGroup := s.engine.Group("/api/services")
	{
		servicesGroup.GET("", handlers.Service.List)
		servicesGroup.GET("/my", authn, handlers.Service.Mine)
		servicesGroup.GET("/:id", handlers.Service.Get)
		servicesGroup.POST("", authn, handlers.Service.Create)
		servicesGroup.PUT("/:id", authn, handlers.Service.Update)
		servicesGroup.DELETE("/:id", authn, handlers.Service.Delete)
		servicesGroup.POST("/:id/images", authn, handlers.Service.UploadImage)
	}

	reviews := s.engine.Group("/api/reviews")
	{
		reviews.POST("", authn, handlers.Review.Create)
		reviews.GET("/:userId", handlers.Review.ForUser)
	}

	favorites := s.engine.Group("/api/favorites", authn)
	{
		favorites.GET("", handlers.Favorite.List)
		favorites.POST("/:serviceId", handlers.Favorite.Toggle)
	}

	// Realtime channel: auth happens on the token query parameter inside
	// the handler, before the upgrade.
	s.engine.GET("/ws", handlers.WS.Connect)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
