package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"claimflow/internal/apperr"
	"claimflow/internal/models"
	"claimflow/internal/store"

	"github.com/shopspring/decimal"
)

const recentActivityLimit = 10

type UserSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type ClaimSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Status      models.Status   `json:"status"`
	Description string          `json:"description"`
}

type EmployeeDetail struct {
	TotalClaims      int             `json:"total_claims"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	ApprovedClaims   int             `json:"approved_claims"`
	RejectedClaims   int             `json:"rejected_claims"`
	PendingClaims    int             `json:"pending_claims"`
	Claims           []ClaimSummary  `json:"claims"`
	MonthlyBreakdown []MonthBucket   `json:"monthly_breakdown"`
}

type Activity struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	UserName string          `json:"user_name"`
	Status   models.Status   `json:"status"`
	Action   models.Action   `json:"action"`
	Date     time.Time       `json:"date"`
}

type AdminDetail struct {
	TotalProcessed   int           `json:"total_processed"`
	Approved         int           `json:"approved"`
	Rejected         int           `json:"rejected"`
	ApprovalRate     float64       `json:"approval_rate"`
	RecentActivity   []Activity    `json:"recent_activity"`
	MonthlyBreakdown []MonthBucket `json:"monthly_breakdown"`
}

// UserStats holds exactly one of Employee or Admin, chosen by the user's role.
type UserStats struct {
	User     UserSummary     `json:"user"`
	Employee *EmployeeDetail `json:"employee,omitempty"`
	Admin    *AdminDetail    `json:"admin,omitempty"`
}

func (s *Service) UserDetailedStats(ctx context.Context, userID string, r DateRange) (*UserStats, error) {
	ctx, span := tracer.Start(ctx, "analytics.UserDetailedStats")
	defer span.End()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "user %s", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	claims, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	out := &UserStats{User: UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}}
	if u.Role == models.RoleUser {
		out.Employee = s.employeeDetail(u.ID, claims)
	} else {
		out.Admin = s.adminDetail(*u, claims)
	}
	return out, nil
}

func (s *Service) employeeDetail(userID string, claims []models.Claim) *EmployeeDetail {
	var own []models.Claim
	var st EmployeeStat
	d := &EmployeeDetail{Claims: []ClaimSummary{}}
	for _, c := range claims {
		if c.UserID != userID {
			continue
		}
		own = append(own, c)
		st.add(c)
		d.Claims = append(d.Claims, ClaimSummary{
			ID: c.ID, Title: c.Title, Amount: c.Amount, Date: c.Date, Status: c.Status, Description: c.Description,
		})
	}
	d.TotalClaims = st.TotalClaims
	d.TotalAmount = st.TotalAmount
	d.ApprovedClaims = st.ApprovedClaims
	d.RejectedClaims = st.RejectedClaims
	d.PendingClaims = st.PendingClaims
	d.MonthlyBreakdown = s.monthly(own)
	return d
}

func (s *Service) adminDetail(admin models.User, claims []models.Claim) *AdminDetail {
	type acted struct {
		claim models.Claim
		attr  Attribution
	}
	var processed []acted
	var processedClaims []models.Claim
	d := &AdminDetail{RecentActivity: []Activity{}}
	for _, c := range claims {
		a := Attribute(c.Logs, admin)
		if !a.Acted() {
			continue
		}
		processed = append(processed, acted{claim: c, attr: a})
		processedClaims = append(processedClaims, c)
		if a.Approved {
			d.Approved++
		}
		if a.Rejected {
			d.Rejected++
		}
	}
	d.TotalProcessed = len(processed)
	d.ApprovalRate = approvalRate(d.Approved, d.Rejected)
	d.MonthlyBreakdown = s.monthly(processedClaims)

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].claim.CreatedAt.After(processed[j].claim.CreatedAt)
	})
	if len(processed) > recentActivityLimit {
		processed = processed[:recentActivityLimit]
	}
	for _, p := range processed {
		d.RecentActivity = append(d.RecentActivity, Activity{
			ID:       p.claim.ID,
			Title:    p.claim.Title,
			Amount:   p.claim.Amount,
			UserName: p.claim.UserName,
			Status:   p.claim.Status,
			Action:   p.attr.First.Action,
			Date:     p.attr.First.Timestamp,
		})
	}
	return d
}
