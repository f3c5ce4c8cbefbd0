package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleL1Admin Role = "L1_ADMIN"
	RoleL2Admin Role = "L2_ADMIN"
	RoleL3Admin Role = "L3_ADMIN"
	RoleL4Admin Role = "L4_ADMIN"
)

// AdminRoles lists the approval levels in the order a claim visits them.
var AdminRoles = []Role{RoleL1Admin, RoleL2Admin, RoleL3Admin, RoleL4Admin}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleL1Admin, RoleL2Admin, RoleL3Admin, RoleL4Admin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool { return r.Valid() && r != RoleUser }

type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusApprovedL1 Status = "APPROVED_L1"
	StatusApprovedL2 Status = "APPROVED_L2"
	StatusApprovedL3 Status = "APPROVED_L3"
	StatusDisbursed  Status = "DISBURSED"
	StatusRejected   Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApprovedL1, StatusApprovedL2, StatusApprovedL3, StatusDisbursed, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool { return s == StatusDisbursed || s == StatusRejected }

type Action string

const (
	ActionSubmit  Action = "SUBMIT"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"type:varchar(16);index;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LogEntry is one immutable record on a claim's audit trail. ActorID and
// ActorRole are empty on entries imported from systems that only recorded the
// actor's display name.
type LogEntry struct {
	Stage     string    `json:"stage"`
	Action    Action    `json:"action"`
	Remarks   string    `json:"remarks"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorRole Role      `json:"actor_role,omitempty"`
}

type Claim struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;index;not null" json:"user_id"`
	UserName    string          `gorm:"not null" json:"user_name"`
	Title       string          `gorm:"not null" json:"title"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	Date        string          `gorm:"type:varchar(10);index;not null" json:"date"`
	Status      Status          `gorm:"type:varchar(16);index;not null" json:"status"`
	Logs        AuditTrail      `gorm:"type:jsonb;not null;default:'[]'::jsonb" json:"logs"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

func (Claim) TableName() string { return "claims" }

// Clone returns a copy whose audit trail does not alias c's.
func (c Claim) Clone() Claim {
	c.Logs = append(AuditTrail(nil), c.Logs...)
	return c
}
