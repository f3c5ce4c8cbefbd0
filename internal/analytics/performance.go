package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"claimflow/internal/models"
	"claimflow/internal/workflow"

	"github.com/shopspring/decimal"
)

type EmployeeStat struct {
	UserID         string          `json:"user_id"`
	UserName       string          `json:"user_name"`
	TotalClaims    int             `json:"total_claims"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ApprovedClaims int             `json:"approved_claims"`
	RejectedClaims int             `json:"rejected_claims"`
	PendingClaims  int             `json:"pending_claims"`
}

func (e *EmployeeStat) add(c models.Claim) {
	e.TotalClaims++
	e.TotalAmount = e.TotalAmount.Add(c.Amount)
	switch c.Status {
	case models.StatusDisbursed:
		e.ApprovedClaims++
	case models.StatusRejected:
		e.RejectedClaims++
	default:
		e.PendingClaims++
	}
}

// EmployeeStatistics aggregates claims per owning user, largest total
// amount first.
func (s *Service) EmployeeStatistics(ctx context.Context, r DateRange) ([]EmployeeStat, error) {
	ctx, span := tracer.Start(ctx, "analytics.EmployeeStatistics")
	defer span.End()
	claims, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	var order []string
	byUser := map[string]*EmployeeStat{}
	for _, c := range claims {
		st, ok := byUser[c.UserID]
		if !ok {
			st = &EmployeeStat{UserID: c.UserID, UserName: c.UserName}
			byUser[c.UserID] = st
			order = append(order, c.UserID)
		}
		st.add(c)
	}
	out := make([]EmployeeStat, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalAmount.GreaterThan(out[j].TotalAmount) })
	return out, nil
}

type AdminStat struct {
	UserID         string      `json:"user_id"`
	Name           string      `json:"name"`
	Level          models.Role `json:"level"`
	LevelName      string      `json:"level_name"`
	Approved       int         `json:"approved"`
	Rejected       int         `json:"rejected"`
	Pending        int         `json:"pending"`
	TotalProcessed int         `json:"total_processed"`
	ApprovalRate   float64     `json:"approval_rate"`
	TotalReached   int         `json:"total_reached"`
}

// reachedStage reports whether a claim in status s has been in front of role.
func reachedStage(role models.Role, s models.Status) bool {
	switch role {
	case models.RoleL1Admin:
		return true
	case models.RoleL2Admin:
		return s != models.StatusSubmitted && s != models.StatusRejected
	case models.RoleL3Admin:
		return s == models.StatusApprovedL2 || s == models.StatusApprovedL3 || s == models.StatusDisbursed
	case models.RoleL4Admin:
		return s == models.StatusApprovedL3 || s == models.StatusDisbursed
	}
	return false
}

// approvalRate is approved/(approved+rejected) as a percentage with one
// decimal, 0 when nothing was processed.
func approvalRate(approved, rejected int) float64 {
	total := approved + rejected
	if total == 0 {
		return 0
	}
	return math.Round(float64(approved)/float64(total)*1000) / 10
}

func levelName(role models.Role) string {
	return strings.Replace(string(role), "_", " ", 1)
}

// AdminPerformance reports per-admin throughput, busiest admin first.
func (s *Service) AdminPerformance(ctx context.Context, r DateRange) ([]AdminStat, error) {
	ctx, span := tracer.Start(ctx, "analytics.AdminPerformance")
	defer span.End()
	claims, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var out []AdminStat
	for _, u := range users {
		if u.Role == models.RoleUser {
			continue
		}
		out = append(out, adminStat(u, claims))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalProcessed > out[j].TotalProcessed })
	if out == nil {
		out = []AdminStat{}
	}
	return out, nil
}

func adminStat(admin models.User, claims []models.Claim) AdminStat {
	st := AdminStat{UserID: admin.ID, Name: admin.Name, Level: admin.Role, LevelName: levelName(admin.Role)}
	waiting, hasQueue := workflow.StatusAwaiting(admin.Role)
	for _, c := range claims {
		if reachedStage(admin.Role, c.Status) {
			st.TotalReached++
		}
		if hasQueue && c.Status == waiting {
			st.Pending++
		}
		a := Attribute(c.Logs, admin)
		if a.Approved {
			st.Approved++
		}
		if a.Rejected {
			st.Rejected++
		}
	}
	st.TotalProcessed = st.Approved + st.Rejected
	st.ApprovalRate = approvalRate(st.Approved, st.Rejected)
	return st
}
