package analytics

import (
	"time"

	"claimflow/internal/models"
	"claimflow/internal/workflow"
)

// actedBy reports whether e was recorded by admin. Entries that carry an
// ActorID are matched on it; older entries only carry a display name.
func actedBy(e models.LogEntry, admin models.User) bool {
	if e.Action != models.ActionApprove && e.Action != models.ActionReject {
		return false
	}
	if e.ActorID != "" {
		return e.ActorID == admin.ID
	}
	return e.Actor == admin.Name
}

// Attribution is what one admin did on one claim.
type Attribution struct {
	Approved bool
	Rejected bool
	// First is the earliest entry the admin recorded, nil if none.
	First *models.LogEntry
}

func (a Attribution) Acted() bool { return a.First != nil }

func Attribute(logs []models.LogEntry, admin models.User) Attribution {
	var a Attribution
	for i := range logs {
		e := logs[i]
		if !actedBy(e, admin) {
			continue
		}
		if a.First == nil {
			a.First = &e
		}
		switch e.Action {
		case models.ActionApprove:
			a.Approved = true
		case models.ActionReject:
			a.Rejected = true
		}
	}
	return a
}

// entryRole resolves the admin level that recorded e, falling back to the
// stage label for entries written without ActorRole.
func entryRole(e models.LogEntry) (models.Role, bool) {
	if e.ActorRole != "" {
		return e.ActorRole, true
	}
	return workflow.RoleForStage(e.Stage)
}

// firstByRole returns the timestamp of the first approve/reject entry
// recorded at role.
func firstByRole(logs []models.LogEntry, role models.Role) *time.Time {
	for _, e := range logs {
		if e.Action == models.ActionSubmit {
			continue
		}
		if r, ok := entryRole(e); ok && r == role {
			ts := e.Timestamp
			return &ts
		}
	}
	return nil
}
