package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"claimflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the users and claims tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Claim{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "LOWER(email) = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at asc").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("created_at asc").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) InsertClaim(ctx context.Context, c *models.Claim) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var c models.Claim
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) ListClaims(ctx context.Context) ([]models.Claim, error) {
	return s.findClaims(s.db.WithContext(ctx))
}

func (s *GormStore) ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []models.Claim{}, nil
	}
	return s.findClaims(s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *GormStore) ListClaimsByStatus(ctx context.Context, status models.Status) ([]models.Claim, error) {
	return s.findClaims(s.db.WithContext(ctx).Where("status = ?", status))
}

func (s *GormStore) findClaims(q *gorm.DB) ([]models.Claim, error) {
	var claims []models.Claim
	err := q.Order("created_at desc").Find(&claims).Error
	return claims, translate(err)
}

// UpdateClaim holds a row lock on the claim for the whole read-modify-write.
func (s *GormStore) UpdateClaim(ctx context.Context, id string, fn ClaimMutator) (*models.Claim, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var out models.Claim
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&out, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Model(&models.Claim{}).Where("id = ?", id).Updates(map[string]any{
			"status": out.Status,
			"logs":   out.Logs,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
