// Package workflow holds the claim approval state machine. It is pure: it
// never touches storage and never reads the clock.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"claimflow/internal/models"
)

const (
	SubmissionStage   = "Submission"
	SubmissionRemarks = "Claim submitted for review"
)

var nextStatus = map[models.Status]models.Status{
	models.StatusSubmitted:  models.StatusApprovedL1,
	models.StatusApprovedL1: models.StatusApprovedL2,
	models.StatusApprovedL2: models.StatusApprovedL3,
	models.StatusApprovedL3: models.StatusDisbursed,
}

var responsibleRole = map[models.Status]models.Role{
	models.StatusSubmitted:  models.RoleL1Admin,
	models.StatusApprovedL1: models.RoleL2Admin,
	models.StatusApprovedL2: models.RoleL3Admin,
	models.StatusApprovedL3: models.RoleL4Admin,
}

var stageLabels = map[models.Role]string{
	models.RoleL1Admin: "L1 - Accounts",
	models.RoleL2Admin: "L2 - Finance",
	models.RoleL3Admin: "L3 - CEO",
	models.RoleL4Admin: "L4 - Final Disbursement",
}

// NextStatus returns the status an approval moves s to. ok is false when s
// is terminal or unknown.
func NextStatus(s models.Status) (next models.Status, ok bool) {
	next, ok = nextStatus[s]
	return next, ok
}

// ResponsibleRole returns the admin level that acts on a claim in status s.
func ResponsibleRole(s models.Status) (models.Role, bool) {
	r, ok := responsibleRole[s]
	return r, ok
}

// StatusAwaiting is the inverse of ResponsibleRole: the single status a claim
// has while it waits for role.
func StatusAwaiting(role models.Role) (models.Status, bool) {
	for s, r := range responsibleRole {
		if r == role {
			return s, true
		}
	}
	return "", false
}

// StageLabel returns the human-readable stage for an acting role. Unknown
// roles are labelled with the raw role string.
func StageLabel(role models.Role) string {
	if l, ok := stageLabels[role]; ok {
		return l
	}
	return string(role)
}

// RoleForStage maps a stage label back to the role that produced it. It is
// used for entries recorded without an ActorRole.
func RoleForStage(stage string) (models.Role, bool) {
	for r, l := range stageLabels {
		if l == stage {
			return r, true
		}
	}
	if r := models.Role(strings.TrimSpace(stage)); r.IsAdmin() {
		return r, true
	}
	return "", false
}

// Apply computes the status after action is taken on a claim in status s.
func Apply(s models.Status, action models.Action) (models.Status, error) {
	if s.Terminal() {
		return "", fmt.Errorf("cannot %s from status %s", strings.ToLower(string(action)), s)
	}
	switch action {
	case models.ActionApprove:
		next, ok := NextStatus(s)
		if !ok {
			return "", fmt.Errorf("cannot approve from status %s", s)
		}
		return next, nil
	case models.ActionReject:
		if !s.Valid() {
			return "", fmt.Errorf("cannot reject from status %s", s)
		}
		return models.StatusRejected, nil
	default:
		return "", fmt.Errorf("action %s is not a transition", action)
	}
}

// Fold replays an audit trail from SUBMITTED and returns the status it
// implies. It fails if the trail is not a valid lifetime of a claim.
func Fold(logs []models.LogEntry) (models.Status, error) {
	if len(logs) == 0 {
		return "", fmt.Errorf("audit trail is empty")
	}
	if logs[0].Action != models.ActionSubmit {
		return "", fmt.Errorf("audit trail starts with %s, want %s", logs[0].Action, models.ActionSubmit)
	}
	status := models.StatusSubmitted
	for i, e := range logs[1:] {
		next, err := Apply(status, e.Action)
		if err != nil {
			return "", fmt.Errorf("entry %d: %w", i+1, err)
		}
		status = next
	}
	return status, nil
}

// NewEntry builds the audit entry an actor records when taking action.
func NewEntry(action models.Action, remarks string, actorID, actorName string, actorRole models.Role, at time.Time) models.LogEntry {
	return models.LogEntry{
		Stage:     StageLabel(actorRole),
		Action:    action,
		Remarks:   remarks,
		Timestamp: at,
		Actor:     actorName,
		ActorID:   actorID,
		ActorRole: actorRole,
	}
}

// SubmitEntry builds the first entry of every claim.
func SubmitEntry(userID, userName string, at time.Time) models.LogEntry {
	return models.LogEntry{
		Stage:     SubmissionStage,
		Action:    models.ActionSubmit,
		Remarks:   SubmissionRemarks,
		Timestamp: at,
		Actor:     userName,
		ActorID:   userID,
		ActorRole: models.RoleUser,
	}
}
