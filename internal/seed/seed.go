// Package seed provisions a demo organisation: one employee, one admin per
// approval level and a handful of claims spread across the workflow.
package seed

import (
	"context"
	"fmt"
	"time"

	"claimflow/internal/claims"
	"claimflow/internal/models"
	"claimflow/internal/store"
	"claimflow/internal/workflow"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

var demoUsers = []models.User{
	{Name: "Rahul Sharma", Email: "rahul.sharma@company.com", Role: models.RoleUser},
	{Name: "Priya Patel", Email: "priya.patel@company.com", Role: models.RoleL1Admin},
	{Name: "Amit Kumar", Email: "amit.kumar@company.com", Role: models.RoleL2Admin},
	{Name: "Sneha Reddy", Email: "sneha.reddy@company.com", Role: models.RoleL3Admin},
	{Name: "Vikram Singh", Email: "vikram.singh@company.com", Role: models.RoleL4Admin},
}

type step struct {
	action  models.Action
	remarks string
}

// demoClaim is submitted daysAgo days before now; each step is taken by the
// next admin level one day after the previous entry.
type demoClaim struct {
	title       string
	amount      int64
	description string
	daysAgo     int
	steps       []step
}

var demoClaims = []demoClaim{
	{"MacBook Pro M3 - Development", 185000, "Latest MacBook Pro for development work", 7, []step{
		{models.ActionApprove, "Approved - Valid business expense"},
		{models.ActionApprove, "Budget allocation confirmed"},
	}},
	{"Conference Travel - ReactConf 2026", 45000, "Flight tickets and accommodation for ReactConf", 2, nil},
	{"Client Dinner - Q4 Deal Closure", 8500, "Business dinner with client stakeholders", 5, []step{
		{models.ActionApprove, "Valid entertainment expense"},
	}},
	{"Office Supplies - Stationery", 3200, "Pens, notebooks, and desk organizers", 10, []step{
		{models.ActionReject, "No receipt attached. Please resubmit with invoice."},
	}},
	{"Figma Professional License - Annual", 12000, "Annual subscription for design tool", 15, []step{
		{models.ActionApprove, "Business tool subscription approved"},
		{models.ActionApprove, "License cost approved"},
		{models.ActionApprove, "Approved"},
		{models.ActionApprove, "Payment processed"},
	}},
}

// Run seeds st unless it already holds users. It reports whether anything was
// written.
func Run(ctx context.Context, st store.Store, lg *zap.SugaredLogger, now time.Time) (bool, error) {
	existing, err := st.ListUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	if len(existing) > 0 {
		lg.Infow("seed skipped, users already present", "users", len(existing))
		return false, nil
	}

	var employee models.User
	admins := make(map[models.Role]models.User, len(models.AdminRoles))
	for i, u := range demoUsers {
		u.CreatedAt = now.Add(time.Duration(i-len(demoUsers)) * time.Minute)
		if err := st.CreateUser(ctx, &u); err != nil {
			return false, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		if u.Role == models.RoleUser {
			employee = u
		} else {
			admins[u.Role] = u
		}
	}

	for _, dc := range demoClaims {
		c, err := dc.build(employee, admins, now)
		if err != nil {
			return false, err
		}
		if err := st.InsertClaim(ctx, c); err != nil {
			return false, fmt.Errorf("insert claim %q: %w", dc.title, err)
		}
	}
	lg.Infow("seeded demo data", "users", len(demoUsers), "claims", len(demoClaims))
	return true, nil
}

func (dc demoClaim) build(owner models.User, admins map[models.Role]models.User, now time.Time) (*models.Claim, error) {
	submitted := now.Add(-time.Duration(dc.daysAgo) * day)
	c := &models.Claim{
		UserID:      owner.ID,
		UserName:    owner.Name,
		Title:       dc.title,
		Amount:      decimal.NewFromInt(dc.amount),
		Description: dc.description,
		Date:        submitted.Format(claims.DateLayout),
		Status:      models.StatusSubmitted,
		Logs:        models.AuditTrail{workflow.SubmitEntry(owner.ID, owner.Name, submitted)},
		CreatedAt:   submitted,
	}
	for i, s := range dc.steps {
		role, ok := workflow.ResponsibleRole(c.Status)
		if !ok {
			return nil, fmt.Errorf("claim %q: no level left for step %d", dc.title, i+1)
		}
		next, err := workflow.Apply(c.Status, s.action)
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", dc.title, err)
		}
		admin := admins[role]
		at := submitted.Add(time.Duration(i+1) * day)
		c.Logs = append(c.Logs, workflow.NewEntry(s.action, s.remarks, admin.ID, admin.Name, admin.Role, at))
		c.Status = next
	}
	return c, nil
}
