package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/landingkit/seminar-signups/internal/config"
	"github.com/landingkit/seminar-signups/internal/entity"
	"github.com/landingkit/seminar-signups/internal/infra/database"
	"github.com/landingkit/seminar-signups/internal/infra/dedupe"
	"github.com/landingkit/seminar-signups/internal/infra/http/handlers"
	"github.com/landingkit/seminar-signups/internal/infra/http/middleware"
	"github.com/landingkit/seminar-signups/internal/infra/mail"
	"github.com/landingkit/seminar-signups/internal/infra/memory"
	"github.com/landingkit/seminar-signups/internal/infra/queue"
	"github.com/landingkit/seminar-signups/internal/infra/sheets"
	"github.com/landingkit/seminar-signups/internal/usecase"
)

var version = "dev"

// store is what the registration handler writes to and the health check pings.
type store interface {
	entity.RowStore
	handlers.Pinger
}

func main() {
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := cfg.RegistrationPolicy()

	// 1. Store
	rows, closeStore, err := openStore(ctx, cfg, policy, logger)
	if err != nil {
		logger.Fatal("open registration store", zap.Error(err))
	}
	defer closeStore()

	// 2. Mail
	brand := cfg.Branding()
	composer, err := mail.NewComposer(brand)
	if err != nil {
		logger.Fatal("parse email templates", zap.Error(err))
	}
	smtp := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, brand.From)

	var mailer usecase.Mailer = smtp
	var rabbitState handlers.ConnectionState
	if cfg.Mail.Delivery == "queue" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatal("connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitMQ.Close()
		rabbitState = rabbitMQ

		mailer = queue.NewProducer(rabbitMQ.Ch, logger)
		worker := queue.NewWorker(rabbitMQ.Ch, smtp, logger)
		go func() {
			if err := worker.Start(ctx, queue.QueueName); err != nil {
				logger.Error("email worker stopped", zap.Error(err))
			}
		}()
	}

	// 3. Use case
	uc := usecase.NewRegisterUseCase(rows, mailer, composer, policy, cfg.Mail.OperatorEmail, logger).
		WithMetrics(middleware.Recorder{})

	var guardPinger handlers.Pinger
	if cfg.Redis.Addr != "" {
		client, err := dedupe.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("connect to Redis", zap.Error(err))
		}
		defer client.Close()
		guard := dedupe.NewRedisGuard(client, cfg.Redis.ClaimTTL, logger)
		uc.WithGuard(guard)
		guardPinger = guard
	}

	// 4. HTTP
	regHandler := handlers.NewRegistrationHandler(uc, middleware.Recorder{}, logger)
	healthHandler := handlers.NewHealthHandler(rows, rabbitState, guardPinger, version)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(regHandler, healthHandler, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("schema", string(policy.Schema.Name)),
			zap.String("duplicates", string(policy.Duplicates)),
			zap.String("mail_delivery", cfg.Mail.Delivery))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, policy entity.Policy, logger *zap.Logger) (store, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.NewDBConnection(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewRegistrationRepository(db, cfg.Store.Table, policy.SkipsDuplicates(), logger)
		return repo, func() { db.Close() }, nil
	case "memory":
		logger.Warn("using in-memory store, registrations are lost on restart")
		return memory.NewSheet(), func() {}, nil
	default:
		svc, err := sheets.NewService(ctx, cfg.Store.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return sheets.NewStore(svc, cfg.Store.SpreadsheetID, cfg.Store.SheetName, logger), func() {}, nil
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
