// Package claims runs the claim lifecycle: submission by an employee and the
// four-level approve/reject chain, each step appending to the claim's audit
// trail in the same atomic write as the status change.
package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"claimflow/internal/apperr"
	"claimflow/internal/models"
	"claimflow/internal/store"
	"claimflow/internal/workflow"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DateLayout is the calendar-date format of Claim.Date.
const DateLayout = "2006-01-02"

var tracer = otel.Tracer("claimflow/internal/claims")

// Actor is the identity performing an operation, injected by the caller.
type Actor struct {
	UserID string
	Name   string
	Role   models.Role
}

type CreateInput struct {
	UserID      string
	UserName    string
	Title       string
	Amount      decimal.Decimal
	Description string
	Date        string
}

type Service struct {
	store store.Store
	lg    *zap.SugaredLogger
	now   func() time.Time
}

type Option func(*Service)

// WithClock overrides the source of audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, lg *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{store: st, lg: lg, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (in CreateInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.UserID) == "" {
		problems = append(problems, "user_id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if !in.Amount.IsPositive() {
		problems = append(problems, "amount must be positive")
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		problems = append(problems, "date must be YYYY-MM-DD")
	}
	if len(problems) > 0 {
		return apperr.Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

// Create submits a new claim for in.UserID. The owning user must exist; the
// stored user name is a snapshot taken now.
func (s *Service) Create(ctx context.Context, in CreateInput) (claim *models.Claim, err error) {
	ctx, span := tracer.Start(ctx, "claims.Create")
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	owner, err := s.store.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, s.storeErr(err, "user %s", in.UserID)
	}
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		name = owner.Name
	}
	now := s.now()
	c := &models.Claim{
		UserID:      owner.ID,
		UserName:    name,
		Title:       strings.TrimSpace(in.Title),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Status:      models.StatusSubmitted,
		Logs:        models.AuditTrail{workflow.SubmitEntry(owner.ID, name, now)},
		CreatedAt:   now,
	}
	if err := s.store.InsertClaim(ctx, c); err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	span.SetAttributes(attribute.String("claim.id", c.ID))
	s.lg.Infow("claim submitted", "claim_id", c.ID, "user_id", c.UserID, "amount", c.Amount.String())
	return c, nil
}

// Approve advances a claim one level. The actor must hold the role that is
// responsible for the claim's current status.
func (s *Service) Approve(ctx context.Context, claimID, remarks string, actor Actor) (models.Status, error) {
	c, err := s.transition(ctx, claimID, models.ActionApprove, remarks, actor)
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

// Reject ends a claim at the actor's level. Claims that are already
// disbursed or rejected cannot be rejected.
func (s *Service) Reject(ctx context.Context, claimID, remarks string, actor Actor) (models.Status, error) {
	c, err := s.transition(ctx, claimID, models.ActionReject, remarks, actor)
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

func (s *Service) transition(ctx context.Context, claimID string, action models.Action, remarks string, actor Actor) (claim *models.Claim, err error) {
	ctx, span := tracer.Start(ctx, "claims."+strings.ToLower(string(action)), trace.WithAttributes(
		attribute.String("claim.id", claimID),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer func() { endSpan(span, err) }()

	var from models.Status
	claim, err = s.store.UpdateClaim(ctx, claimID, func(c *models.Claim) error {
		from = c.Status
		if c.Status.Terminal() {
			return apperr.New(apperr.KindInvalidTransition, "cannot %s claim in status %s", strings.ToLower(string(action)), c.Status)
		}
		if want, ok := workflow.ResponsibleRole(c.Status); !ok || actor.Role != want {
			return apperr.New(apperr.KindForbidden, "claim in status %s awaits %s, not %s", c.Status, want, actor.Role)
		}
		next, err := workflow.Apply(c.Status, action)
		if err != nil {
			return apperr.Wrap(apperr.KindInvalidTransition, err, "claim %s", c.ID)
		}
		c.Logs = append(c.Logs, workflow.NewEntry(action, strings.TrimSpace(remarks), actor.UserID, actor.Name, actor.Role, s.now()))
		c.Status = next
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			s.lg.Warnw("claim transition refused", "claim_id", claimID, "action", action, "actor_id", actor.UserID, "error", err)
			return nil, err
		}
		return nil, s.storeErr(err, "claim %s", claimID)
	}
	s.lg.Infow("claim transitioned", "claim_id", claimID, "action", action, "from", from, "to", claim.Status, "actor_id", actor.UserID)
	return claim, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Claim, error) {
	c, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, "claim %s", id)
	}
	return c, nil
}

// Logs returns a claim's audit trail in chronological order.
func (s *Service) Logs(ctx context.Context, id string) ([]models.LogEntry, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Logs, nil
}

// List returns all claims, newest first, optionally restricted to one status.
func (s *Service) List(ctx context.Context, status models.Status) ([]models.Claim, error) {
	if status == "" {
		return s.store.ListClaims(ctx)
	}
	if !status.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	return s.store.ListClaimsByStatus(ctx, status)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	return s.store.ListClaimsByUser(ctx, userID)
}

// Queue returns the claims waiting for the given admin level to act.
func (s *Service) Queue(ctx context.Context, role models.Role) ([]models.Claim, error) {
	status, ok := workflow.StatusAwaiting(role)
	if !ok {
		return nil, apperr.New(apperr.KindForbidden, "role %s has no approval queue", role)
	}
	return s.store.ListClaimsByStatus(ctx, status)
}

// Verify checks that a stored claim's status matches its audit trail.
func Verify(c models.Claim) error {
	derived, err := workflow.Fold(c.Logs)
	if err != nil {
		return fmt.Errorf("claim %s: %w", c.ID, err)
	}
	if derived != c.Status {
		return fmt.Errorf("claim %s: status %s, audit trail implies %s", c.ID, c.Status, derived)
	}
	return nil
}

func (s *Service) storeErr(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, format, args...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
