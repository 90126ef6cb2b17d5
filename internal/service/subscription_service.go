package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

// Subscription rules.
const (
	MinSubscriptionAmount = 50_000 // so'm
	SubscriptionPeriod    = 30 * 24 * time.Hour
)

var ErrPaymentAmountTooLow = errors.New("payment amount below the subscription minimum")

// SubscriptionStore is the user subscription write surface.
type SubscriptionStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	UpdateSubscription(ctx context.Context, userID int, start, end time.Time) error
}

// SubscriptionService handles the simulated payment flow: any payment at or
// above the minimum buys 30 days, stacked on top of an unexpired window.
type SubscriptionService struct {
	users SubscriptionStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(users SubscriptionStore, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		users: users,
		log:   log.With().Str("component", "subscription_service").Logger(),
		now:   time.Now,
	}
}

// SubscriptionState is the user's resulting subscription window.
type SubscriptionState struct {
	IsSubscribed      bool      `json:"is_subscribed"`
	SubscriptionStart time.Time `json:"subscription_start"`
	SubscriptionEnd   time.Time `json:"subscription_end"`
	DaysAdded         int       `json:"days_added"`
}

// Activate applies a payment to the user's subscription. An active window
// is extended from its end; an expired or missing one restarts from now.
func (s *SubscriptionService) Activate(ctx context.Context, userID, amount int) (*SubscriptionState, error) {
	if amount < MinSubscriptionAmount {
		return nil, ErrPaymentAmountTooLow
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now()
	start := now
	if user.SubscriptionStart != nil && user.HasActiveSubscription(now) {
		start = *user.SubscriptionStart
	}

	base := now
	if user.HasActiveSubscription(now) {
		base = *user.SubscriptionEnd
	}
	end := base.Add(SubscriptionPeriod)

	if err := s.users.UpdateSubscription(ctx, userID, start, end); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Int("amount", amount).
		Time("subscription_end", end).
		Msg("subscription activated")

	return &SubscriptionState{
		IsSubscribed:      true,
		SubscriptionStart: start,
		SubscriptionEnd:   end,
		DaysAdded:         int(SubscriptionPeriod.Hours() / 24),
	}, nil
}
