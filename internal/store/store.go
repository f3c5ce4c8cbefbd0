// Package store persists users and claims. Two implementations share the
// same contract: MemoryStore for tests and local runs, GormStore for
// PostgreSQL.
package store

import (
	"context"
	"errors"

	"claimflow/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns users in creation order.
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// ClaimMutator edits a claim loaded under the store's per-claim lock. A
// non-nil error aborts the update and is returned unchanged.
type ClaimMutator func(c *models.Claim) error

type ClaimStore interface {
	InsertClaim(ctx context.Context, c *models.Claim) error
	GetClaim(ctx context.Context, id string) (*models.Claim, error)
	// ListClaims, ListClaimsByUser and ListClaimsByStatus return newest first.
	ListClaims(ctx context.Context) ([]models.Claim, error)
	ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error)
	ListClaimsByStatus(ctx context.Context, status models.Status) ([]models.Claim, error)
	// UpdateClaim loads, mutates and writes back one claim atomically. Only
	// the status and the audit trail are persisted.
	UpdateClaim(ctx context.Context, id string, fn ClaimMutator) (*models.Claim, error)
}

type Store interface {
	UserStore
	ClaimStore
}
