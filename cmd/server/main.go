package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/credinta-blog/backend/internal/api/handlers"
	"github.com/credinta-blog/backend/internal/database"
	"github.com/credinta-blog/backend/internal/metrics"
	"github.com/credinta-blog/backend/internal/middleware"
	"github.com/credinta-blog/backend/internal/services"
)

const metricsRefreshInterval = 5 * time.Minute

func main() {
	// .env is optional; real deployments configure through the environment
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	dbPath := os.Getenv("BLOG_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/blog.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	originLang := os.Getenv("BLOG_ORIGIN_LANG")
	if originLang == "" {
		originLang = services.DefaultOriginLang
	}

	orchestrator := services.NewTranslationOrchestrator(db)
	cacheService := services.NewTranslationCacheService(db)
	searchService := services.NewSearchService(db, originLang)
	prewarmWorker := services.NewPrewarmWorker(db, orchestrator, originLang)

	translateHandler := handlers.NewTranslateHandler(orchestrator)
	searchHandler := handlers.NewSearchHandler(searchService)
	postHandler := handlers.NewPostHandler()
	adminHandler := handlers.NewAdminHandler(cacheService, prewarmWorker)

	router := gin.Default()
	router.Use(metrics.HTTPMetrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/translate", translateHandler.Health)
		api.POST("/translate", translateHandler.Translate)
		api.GET("/search", searchHandler.Search)
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:slug", postHandler.GetPost)
		api.GET("/auth/status", middleware.GetAuthStatus)
		api.GET("/auth/verify", middleware.VerifyAdminKey)

		admin := api.Group("/admin", middleware.AdminKeyAuth())
		{
			admin.POST("/posts", postHandler.UpsertPost)
			admin.GET("/cache/stats", adminHandler.GetCacheStats)
			admin.POST("/prewarm", adminHandler.TriggerPrewarm)
			admin.GET("/prewarm/status", adminHandler.GetPrewarmStatus)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go prewarmWorker.Start(ctx)

	// Keep content gauges fresh
	go func() {
		metrics.UpdateContentMetrics(db)
		ticker := time.NewTicker(metricsRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateContentMetrics(db)
			}
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on :%s (origin language %s)", port, originLang)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
