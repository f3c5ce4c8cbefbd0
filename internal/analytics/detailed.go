package analytics

import (
	"context"
	"time"

	"claimflow/internal/apperr"
	"claimflow/internal/models"
	"claimflow/internal/workflow"
)

type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterPending  StatusFilter = "pending"
	FilterApproved StatusFilter = "approved"
	FilterRejected StatusFilter = "rejected"
)

func (f StatusFilter) match(s models.Status) bool {
	switch f {
	case FilterPending:
		return !s.Terminal()
	case FilterApproved:
		return s == models.StatusDisbursed
	case FilterRejected:
		return s == models.StatusRejected
	default:
		return true
	}
}

type Timeline struct {
	Submitted time.Time  `json:"submitted"`
	L1        *time.Time `json:"l1,omitempty"`
	L2        *time.Time `json:"l2,omitempty"`
	L3        *time.Time `json:"l3,omitempty"`
	L4        *time.Time `json:"l4,omitempty"`
}

const (
	StagePending   = "Pending"
	StageCompleted = "Completed"
	StageRejected  = "Rejected"
	stageUnknown   = "Unknown"
)

type DetailedClaim struct {
	models.Claim
	CurrentStage string   `json:"current_stage"`
	StageStatus  string   `json:"stage_status"`
	Timeline     Timeline `json:"timeline"`
}

// AllClaimsDetailed returns every claim in range, newest first, with its
// per-level timeline and the stage it currently sits at.
func (s *Service) AllClaimsDetailed(ctx context.Context, r DateRange, filter StatusFilter) ([]DetailedClaim, error) {
	ctx, span := tracer.Start(ctx, "analytics.AllClaimsDetailed")
	defer span.End()
	switch filter {
	case "", FilterAll, FilterPending, FilterApproved, FilterRejected:
	default:
		return nil, apperr.Validation("status filter must be all, pending, approved or rejected, got %q", filter)
	}
	claims, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	out := make([]DetailedClaim, 0, len(claims))
	for _, c := range claims {
		if !filter.match(c.Status) {
			continue
		}
		out = append(out, detail(c))
	}
	return out, nil
}

func detail(c models.Claim) DetailedClaim {
	d := DetailedClaim{Claim: c, Timeline: timeline(c)}
	d.CurrentStage, d.StageStatus = currentStage(c)
	return d
}

func timeline(c models.Claim) Timeline {
	t := Timeline{Submitted: c.CreatedAt}
	for _, e := range c.Logs {
		if e.Action == models.ActionSubmit {
			t.Submitted = e.Timestamp
			break
		}
	}
	t.L1 = firstByRole(c.Logs, models.RoleL1Admin)
	t.L2 = firstByRole(c.Logs, models.RoleL2Admin)
	t.L3 = firstByRole(c.Logs, models.RoleL3Admin)
	t.L4 = firstByRole(c.Logs, models.RoleL4Admin)
	return t
}

func currentStage(c models.Claim) (stage, status string) {
	switch c.Status {
	case models.StatusRejected:
		for _, e := range c.Logs {
			if e.Action == models.ActionReject {
				return e.Stage, StageRejected
			}
		}
		return stageUnknown, StageRejected
	case models.StatusDisbursed:
		return string(models.RoleL4Admin), StageCompleted
	}
	if role, ok := workflow.ResponsibleRole(c.Status); ok {
		return string(role), StagePending
	}
	return stageUnknown, stageUnknown
}
