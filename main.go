package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-service/access"
	"restaurant-service/cache"
	"restaurant-service/common/auth"
	apperrors "restaurant-service/common/errors"
	"restaurant-service/common/logger"
	commonmw "restaurant-service/common/middleware"
	"restaurant-service/controllers"
	"restaurant-service/database"
	"restaurant-service/middleware"
	awspkg "restaurant-service/pkg/aws"
	"restaurant-service/repository"
	"restaurant-service/routes"
	"restaurant-service/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "restaurant-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Initialize(os.Getenv("APP_ENV")).Fatal("Config load failed", zap.Error(err))
	}

	log := logger.Initialize(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Database ---
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	groupRepo := repository.NewGormGroupRepository(db)
	if err := database.Seed(context.Background(), groupRepo, cfg.BootstrapAdminUsername, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	// --- CloudWatch metrics (non-fatal) ---
	var metricsClient *awspkg.MetricsClient
	if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err != nil {
		log.Warn("AWS config load failed, metrics disabled", zap.Error(err))
	} else {
		metricsClient = awspkg.NewMetricsClient(awsCfg)
	}

	// --- Menu cache ---
	var menuCache cache.MenuCache = cache.Noop{}
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, menu cache disabled", zap.Error(err))
		} else {
			menuCache = cache.NewRedisMenuCache(redisClient, cfg.MenuCacheTTL, log, metricsClient)
			log.Info("Connected to Redis")
		}
	}

	// --- Dependency injection ---
	categoryRepo := repository.NewGormCategoryRepository(db)
	menuItemRepo := repository.NewGormMenuItemRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	categoryService := services.NewCategoryService(categoryRepo, menuCache, log)
	menuItemService := services.NewMenuItemService(menuItemRepo, categoryRepo, menuCache, log)
	cartService := services.NewCartService(cartRepo, menuItemRepo, log)
	orderService := services.NewOrderService(repository.NewGormTransactor(db), orderRepo, groupRepo, metricsClient, log)

	validator := controllers.NewRequestValidator()
	ctrl := routes.Controllers{
		Categories: controllers.NewCategoryController(categoryService, validator),
		MenuItems:  controllers.NewMenuItemController(menuItemService, validator),
		Cart:       controllers.NewCartController(cartService, validator),
		Orders:     controllers.NewOrderController(orderService, validator),
	}

	// --- HTTP router ---
	limiter := commonmw.NewRateLimiter(rate.Limit(20), 40, 10*time.Minute)
	stopSweep := make(chan struct{})
	go sweepLimiters(limiter, stopSweep)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(commonmw.RateLimitMiddleware(limiter))
	r.Use(commonmw.RequestTimeout(30 * time.Second))
	r.Use(commonmw.MetricsMiddleware(metricsClient, serviceName))
	r.Use(apperrors.ErrorMiddleware(log))

	authMW := middleware.AuthMiddleware(auth.NewTokenVerifier(cfg.JWTSecret), access.NewResolver(groupRepo), log)
	routes.RegisterRoutes(r, ctrl, authMW, middleware.RequireCatalogWriter())
	routes.RegisterHealth(r, serviceName)

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Restaurant Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	close(stopSweep)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Restaurant Service stopped gracefully")
}

func connectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// sweepLimiters drops idle per-IP limiters until stop is closed.
func sweepLimiters(rl *commonmw.RateLimiter, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			rl.Sweep(now)
		case <-stop:
			return
		}
	}
}
