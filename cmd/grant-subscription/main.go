package main

import (
	"context"
	"errors"
	"flag"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/database"
	"github.com/Rahmadjon0038/avto-test-backend/internal/logger"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// Manual subscription grant for support cases (payment arrived outside the
// simulated flow).
func main() {
	var (
		phone  = flag.String("phone", "", "user phone number")
		amount = flag.Int("amount", service.MinSubscriptionAmount, "paid amount in so'm")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "pretty")

	if *phone == "" {
		log.Fatal().Msg("-phone is required")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	user, err := users.GetByPhone(ctx, *phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Fatal().Str("phone", *phone).Msg("user not found")
		}
		log.Fatal().Err(err).Msg("lookup failed")
	}

	state, err := service.NewSubscriptionService(users, log).Activate(ctx, user.ID, *amount)
	if err != nil {
		log.Fatal().Err(err).Msg("grant failed")
	}

	log.Info().
		Int("user_id", user.ID).
		Time("subscription_end", state.SubscriptionEnd).
		Msg("subscription granted")
}
