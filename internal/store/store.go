// Package store defines the persistence contract of the journal. Backends live
// in internal/store/mongostore (document store) and internal/database (embedded
// sqlite through gorm).
package store

import (
	"context"
	"errors"

	"trading-journal-go/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is the set of single-document reads and writes the HTTP layer performs.
// List methods return non-nil slices.
type Store interface {
	ListHoldings(ctx context.Context) ([]models.Holding, error)
	ListPositions(ctx context.Context) ([]models.Position, error)

	// CreateOrder persists o and assigns its ID.
	CreateOrder(ctx context.Context, o *models.Order) error
	// ListOrders returns every order, most recently created first.
	ListOrders(ctx context.Context) ([]models.Order, error)

	// CreateUser persists u and assigns its ID. ErrDuplicate if the email exists.
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)

	// InsertHoldings and InsertPositions are the seeding path used by
	// journalctl; the HTTP surface never writes these collections.
	InsertHoldings(ctx context.Context, hs []models.Holding) error
	InsertPositions(ctx context.Context, ps []models.Position) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
