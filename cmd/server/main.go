package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kitabu/kitabu/internal/adapter/events/kafka"
	httpadapter "github.com/kitabu/kitabu/internal/adapter/http"
	"github.com/kitabu/kitabu/internal/adapter/http/middleware"
	"github.com/kitabu/kitabu/internal/adapter/persistence"
	"github.com/kitabu/kitabu/internal/config"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/identity"
	"github.com/kitabu/kitabu/internal/service/logger"
	"github.com/kitabu/kitabu/internal/service/ratelimit"
	"github.com/kitabu/kitabu/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "kitabu",
	})
	structuredLogger.Info(ctx, "application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	db, err := persistence.Open(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxIdleTime)
	if err != nil {
		structuredLogger.Error(ctx, "failed to connect to database", err, nil)
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	structuredLogger.Info(ctx, "database connection established", nil)

	limiter, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
	}, logrus.New())
	if err != nil {
		structuredLogger.Error(ctx, "failed to initialize rate limiter", err, map[string]interface{}{
			"redis_url": cfg.RedisURL,
		})
		log.Fatalf("failed to initialize rate limiter: %v", err)
	}

	tokenService, err := identity.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("failed to initialize token service: %v", err)
	}
	passwordService := identity.NewBcryptPasswordService(10)

	var publisher ports.EventPublisher
	if cfg.KafkaEnabled {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		structuredLogger.Info(ctx, "kafka publisher initialized", map[string]interface{}{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		})
	}

	uow := persistence.NewUnitOfWork(db)
	entryRepo := persistence.NewEntryRepository(db)
	inventoryRepo := persistence.NewInventoryRepository(db)
	auditRepo := persistence.NewAuditRepository(db)
	programRepo := persistence.NewProgramRepository(db)
	actorRepo := persistence.NewActorRepository(db)
	currencyRepo := persistence.NewCurrencyRepository(db)
	reportRepo := persistence.NewReportRepository(db)

	ledgerUseCase := usecase.NewLedgerUseCase(uow, entryRepo, currencyRepo, auditRepo, publisher, structuredLogger)
	inventoryUseCase := usecase.NewInventoryUseCase(uow, entryRepo, inventoryRepo, structuredLogger)
	budgetUseCase := usecase.NewBudgetUseCase(uow, programRepo, reportRepo, structuredLogger)
	authUseCase := usecase.NewAuthUseCase(actorRepo, tokenService, passwordService, structuredLogger)

	authMiddleware := middleware.NewAuth(tokenService)
	limit := middleware.RateLimit(limiter, cfg.RateLimitCalls, cfg.RateLimitWindow)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		structuredLogger,
		httpadapter.NewAuthHandler(authUseCase),
		httpadapter.NewLedgerHandler(ledgerUseCase, authMiddleware, limit),
		httpadapter.NewInventoryHandler(inventoryUseCase, authMiddleware, limit),
		httpadapter.NewBudgetHandler(budgetUseCase, authMiddleware, limit),
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "server failed", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "graceful shutdown failed", err, nil)
	}
}
