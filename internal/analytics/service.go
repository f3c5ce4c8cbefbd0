// Package analytics computes read-only dashboard statistics over the claim
// set. Every call reloads all claims and recomputes from scratch; nothing is
// cached between calls.
package analytics

import (
	"context"
	"fmt"
	"time"

	"claimflow/internal/apperr"
	"claimflow/internal/models"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var tracer = otel.Tracer("claimflow/internal/analytics")

type ClaimSource interface {
	ListClaims(ctx context.Context) ([]models.Claim, error)
}

type UserSource interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type Service struct {
	claims ClaimSource
	users  UserSource
	lg     *zap.SugaredLogger
}

func NewService(claims ClaimSource, users UserSource, lg *zap.SugaredLogger) *Service {
	return &Service{claims: claims, users: users, lg: lg}
}

// DateRange is an inclusive window over Claim.Date. Either bound may be empty.
type DateRange struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

func (r DateRange) IsZero() bool { return r.Start == "" && r.End == "" }

func (r DateRange) Validate() error {
	bounds := []struct{ name, value string }{{"startDate", r.Start}, {"endDate", r.End}}
	for _, b := range bounds {
		if b.value == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, b.value); err != nil {
			return apperr.Validation("%s must be YYYY-MM-DD, got %q", b.name, b.value)
		}
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		return apperr.Validation("startDate %s is after endDate %s", r.Start, r.End)
	}
	return nil
}

// Contains compares ISO calendar dates, which order lexicographically.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

func (r DateRange) filter(claims []models.Claim) []models.Claim {
	if r.IsZero() {
		return claims
	}
	out := claims[:0:0]
	for _, c := range claims {
		if r.Contains(c.Date) {
			out = append(out, c)
		}
	}
	return out
}

// load returns the claims in range, newest first.
func (s *Service) load(ctx context.Context, r DateRange) ([]models.Claim, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	claims, err := s.claims.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return r.filter(claims), nil
}

func parseDate(d string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, d)
	return t, err == nil
}
