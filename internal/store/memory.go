package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"claimflow/internal/models"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.User
	userOrder  []string
	claims     map[string]models.Claim
	claimOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		claims: make(map[string]models.Claim),
	}
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.userOrder {
		if u := s.users[id]; strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.filterUsers(ctx, func(models.User) bool { return true })
}

func (s *MemoryStore) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.filterUsers(ctx, func(u models.User) bool { return u.Role == role })
}

func (s *MemoryStore) filterUsers(ctx context.Context, keep func(models.User) bool) ([]models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		if u := s.users[id]; keep(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertClaim(ctx context.Context, c *models.Claim) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := s.claims[c.ID]; ok {
		return ErrDuplicate
	}
	s.claims[c.ID] = c.Clone()
	s.claimOrder = append(s.claimOrder, c.ID)
	return nil
}

func (s *MemoryStore) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = c.Clone()
	return &c, nil
}

func (s *MemoryStore) ListClaims(ctx context.Context) ([]models.Claim, error) {
	return s.filterClaims(ctx, func(models.Claim) bool { return true })
}

func (s *MemoryStore) ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	return s.filterClaims(ctx, func(c models.Claim) bool { return c.UserID == userID })
}

func (s *MemoryStore) ListClaimsByStatus(ctx context.Context, status models.Status) ([]models.Claim, error) {
	return s.filterClaims(ctx, func(c models.Claim) bool { return c.Status == status })
}

// filterClaims walks insertion order backwards so claims created in the same
// instant still come out newest first.
func (s *MemoryStore) filterClaims(ctx context.Context, keep func(models.Claim) bool) ([]models.Claim, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Claim, 0, len(s.claimOrder))
	for i := len(s.claimOrder) - 1; i >= 0; i-- {
		if c := s.claims[s.claimOrder[i]]; keep(c) {
			out = append(out, c.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateClaim(ctx context.Context, id string, fn ClaimMutator) (*models.Claim, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.claims[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	current.Status = working.Status
	current.Logs = working.Logs
	s.claims[id] = current.Clone()
	return &current, nil
}
