package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AuditTrail stores a claim's ordered log entries as a single JSONB value.
type AuditTrail []LogEntry

func (a AuditTrail) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]LogEntry(a))
	if err != nil {
		return nil, fmt.Errorf("audit trail value: %w", err)
	}
	return b, nil
}

func (a *AuditTrail) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = AuditTrail{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("audit trail scan: unsupported type %T", value)
	}
	var entries []LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("audit trail scan: %w", err)
	}
	*a = entries
	return nil
}
