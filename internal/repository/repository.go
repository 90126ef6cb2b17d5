package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// Sentinel errors shared by all repositories.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with a uniqueness
	// constraint (unique phone, one pending exam per user, ...).
	ErrDuplicate = errors.New("record already exists")
)

// wrapNotFound maps pgx's no-rows error to the repository sentinel so
// callers never depend on the driver.
func wrapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
