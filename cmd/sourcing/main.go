package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bitfantasy/nimo-sourcing/internal/config"
	"github.com/bitfantasy/nimo-sourcing/internal/middleware"
	"github.com/bitfantasy/nimo-sourcing/internal/shared/feishu"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/handler"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/repository"
	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/service"
)

func main() {
	// .env 仅本地开发用，生产环境直接注入环境变量
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	db, err := initDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unavailable, feishu token cache degraded to in-process only", zap.Error(err))
	}

	var feishuClient *feishu.FeishuClient
	if cfg.Feishu.AppID != "" {
		feishuClient = feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret, rdb)
	} else {
		logger.Warn("Feishu app credentials not configured, alert notifications disabled")
	}

	repos := repository.NewRepositories(db)
	seqSvc := service.NewSequenceService(repos.Sequence, cfg)
	aggregatorSvc := service.NewAggregatorService(repos.JobSheet, repos.Record, logger)
	requirementSvc := service.NewRequirementService(db, repos.JobSheet, repos.Record, repos.User, seqSvc, feishuClient, logger)
	splitSvc := service.NewSplitService(db, repos.Record, seqSvc, requirementSvc, logger)
	poSvc := service.NewPOService(db, repos.Record, repos.Product, repos.Vendor, repos.PO, seqSvc, cfg, logger)
	referenceSvc := service.NewReferenceService(repos.JobSheet, repos.Vendor, repos.Fulfilled)

	handlers := handler.NewHandlers(aggregatorSvc, requirementSvc, splitSvc, poSvc, referenceSvc)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Logger(logger),
		middleware.CORS(),
		middleware.RequestID(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	registerRoutes(r, cfg, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	rdb.Close()
	logger.Info("Server exited")
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h *handler.Handlers) {
	api := r.Group("/api/v1/sourcing", middleware.JWTAuth(cfg.JWT.Secret))

	requirements := api.Group("/requirements")
	{
		requirements.GET("", h.Requirement.List)
		requirements.POST("", h.Requirement.Materialize)
		requirements.PUT("/:id", h.Requirement.Update)
		requirements.POST("/:id/split", h.Requirement.Split)
	}

	pos := api.Group("/purchase-orders")
	{
		pos.POST("/from-requirement/:id", h.PO.Generate)
		pos.GET("", h.PO.List)
		pos.GET("/:id", h.PO.Get)
		pos.DELETE("/:id", h.PO.Delete)
	}

	jobSheets := api.Group("/job-sheets")
	{
		jobSheets.GET("", h.Reference.ListJobSheets)
		jobSheets.GET("/:id", h.Reference.GetJobSheet)
	}

	vendors := api.Group("/vendors")
	{
		vendors.GET("", h.Reference.ListVendors)
		vendors.GET("/:id", h.Reference.GetVendor)
	}

	fulfilled := api.Group("/fulfilled")
	{
		fulfilled.GET("", h.Reference.ListFulfilled)
		fulfilled.GET("/:id/split-logs", h.Reference.GetSplitLogs)
	}
}

func initLogger(cfg *config.Config) *zap.Logger {
	level := zapcore.InfoLevel
	_ = level.UnmarshalText([]byte(cfg.Log.Level))

	zapCfg := zap.NewProductionConfig()
	if cfg.Log.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{cfg.Log.Output}

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func initDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode)

	gormLogLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)
	return db, nil
}
