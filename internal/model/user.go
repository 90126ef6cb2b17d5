package model

import "time"

// Role distinguishes ordinary users from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered platform user.
type User struct {
	ID                int        `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Phone             string     `json:"phone"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	IsSubscribed      bool       `json:"is_subscribed"`
	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasActiveSubscription reports whether the user's subscription is still
// running at the given instant.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.SubscriptionEnd != nil && u.SubscriptionEnd.After(now)
}

// CanAccessTicket is the access gate for subscription-gated tickets:
// demo tickets are free, everything else requires an active subscription
// or the admin role.
func (u *User) CanAccessTicket(t *Ticket, now time.Time) bool {
	return t.IsDemo || u.HasActiveSubscription(now) || u.IsAdmin()
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=100"`
	LastName  string `json:"last_name" binding:"required,min=2,max=100"`
	Phone     string `json:"phone" binding:"required,min=9,max=20"`
	Password  string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for user authentication.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required,min=9,max=20"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// RefreshRequest is the payload for exchanging a refresh token.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// ActivateSubscriptionRequest is the payload for the simulated payment flow.
type ActivateSubscriptionRequest struct {
	Amount        int    `json:"amount" binding:"required,min=1"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=Click Payme"`
}
