package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/database"
	"github.com/Rahmadjon0038/avto-test-backend/internal/handler"
	"github.com/Rahmadjon0038/avto-test-backend/internal/logger"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
	"github.com/Rahmadjon0038/avto-test-backend/internal/router"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
	"github.com/Rahmadjon0038/avto-test-backend/internal/validator"
	"github.com/Rahmadjon0038/avto-test-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	validator.Setup()

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewFinalExamRepository(pool)
	mistakeRepo := repository.NewMistakeRepository(pool)

	// Services.
	authSvc := service.NewAuthService(userRepo, rdb, cfg, log)
	ticketSvc := service.NewTicketService(ticketRepo, questionRepo, log)
	questionSvc := service.NewQuestionService(questionRepo, ticketRepo, log)
	examSvc := service.NewExamService(examRepo, questionRepo, log)
	mistakeSvc := service.NewMistakeService(mistakeRepo, ticketRepo, questionRepo, log)
	subscriptionSvc := service.NewSubscriptionService(userRepo, log)
	mediaSvc := service.NewMediaService(cfg, log)

	engine := router.New(router.Deps{
		Config:        cfg,
		Log:           log,
		AuthService:   authSvc,
		Auth:          handler.NewAuthHandler(authSvc, log),
		Tickets:       handler.NewTicketHandler(ticketSvc, authSvc, log),
		Questions:     handler.NewQuestionHandler(questionSvc, log),
		Exams:         handler.NewExamHandler(examSvc, log),
		Mistakes:      handler.NewMistakeHandler(mistakeSvc, authSvc, log),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionSvc, log),
		Media:         handler.NewMediaHandler(mediaSvc, log),
		WS:            handler.NewWSHandler(examSvc, cfg, log),
	})

	go worker.NewExpiryWorker(examSvc, log).Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
