package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/config"
	"taskify/backend/internal/database"
	"taskify/backend/internal/handlers"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/monitoring"
	"taskify/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	taskCache := buildCache(cfg)

	router := buildRouter(cfg, db, taskCache)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	if taskCache != nil {
		taskCache.Close()
	}
}

// buildCache wires the multi-level cache. A Redis that is disabled or
// unreachable at boot degrades to the in-process level only.
func buildCache(cfg *config.Config) *cache.MultiLevelCache {
	if !cfg.Redis.Enabled {
		return cache.NewMultiLevelCache(nil)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := redisCache.Health(); err != nil {
		log.Printf("redis unavailable, falling back to in-process cache: %v", err)
		redisCache.Close()
		return cache.NewMultiLevelCache(nil)
	}

	return cache.NewMultiLevelCache(redisCache)
}

func buildRouter(cfg *config.Config, db *gorm.DB, taskCache *cache.MultiLevelCache) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.RateLimit(cfg.RateLimit))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	authService := services.NewAuthService(cfg.Auth)
	registerService := services.NewRegisterService(cfg.Auth)
	userService := services.NewUserService()

	var taskService services.TaskService = services.NewTaskService(cfg.Pagination.PageSize)
	if taskCache != nil {
		taskService = services.NewCachedTaskService(taskService, taskCache)
	}

	registerHandler := handlers.NewRegisterHandler(db, registerService, authService)
	authHandler := handlers.NewAuthHandler(db, authService)
	refreshHandler := handlers.NewRefreshHandler(db, authService)
	logoutHandler := handlers.NewLogoutHandler(db, authService)
	profileHandler := handlers.NewProfileHandler(db, userService)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	router.GET("/healthz", monitoring.HealthHandler(db, taskCache))
	router.GET("/metrics", monitoring.MetricsHandler())

	auth := router.Group("/auth")
	{
		auth.POST("/register", registerHandler.Registration)
		auth.POST("/login", authHandler.Login)
		auth.POST("/token/refresh", refreshHandler.Refresh)
		auth.POST("/logout", logoutHandler.Logout)

		protected := auth.Group("")
		protected.Use(middleware.Authz(cfg.Auth))
		protected.GET("/profile", profileHandler.GetProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
	}

	tasks := router.Group("/tasks")
	tasks.Use(middleware.Authz(cfg.Auth))
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/stats", taskHandler.GetTaskStats)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.PUT("/:id", taskHandler.ReplaceTask)
		tasks.PATCH("/:id", taskHandler.PatchTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	return router
}
