package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"parkhub/internal/booking"
	"parkhub/internal/cache"
	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/external"
	"parkhub/internal/handlers"
	"parkhub/internal/logger"
	"parkhub/internal/messaging"
	"parkhub/internal/metrics"
	"parkhub/internal/middleware"
	"parkhub/internal/repository"
	"parkhub/internal/search"
	"parkhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Поиск и кеш опциональны: без них сервис деградирует, но работает
	searchClient, err := search.NewClient(cfg.Search)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, free-text search disabled", "error", err)
		searchClient = nil
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, caching disabled", "error", err)
		valkeyClient = nil
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	repos := repository.NewRepositories(db)

	engine := booking.NewEngine(
		repos.Spaces,
		repos.Bookings,
		paymentClient,
		natsClient,
		booking.NewQRSigner(cfg.QRSecret),
		cfg.StoreTimeout,
	)

	services := service.NewServices(repos, natsClient, searchClient, engine)

	metrics.Register()

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	// API routes
	api := s.router.Group("/api")
	// Обязательная Basic Auth для всех API роутов
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		// Spaces endpoints
		spaces := api.Group("/spaces")
		{
			spaces.GET("", h.ListSpaces)
			spaces.POST("", h.CreateSpace)
			spaces.PATCH("/status", h.UpdateSpaceStatus)
			spaces.GET("/availability", h.GetAvailability)
		}

		// Bookings endpoints
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.PATCH("/status", h.UpdateBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
			bookings.GET("/qr/verify", h.VerifyQR)
		}

		// Payments endpoints
		payments := api.Group("/payments")
		{
			payments.POST("/process", h.ProcessPayment)
		}
	}

	// Health check and metrics endpoints
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "parkhub-api",
		"database": dbHealth,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
