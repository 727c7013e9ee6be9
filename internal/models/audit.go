package models

import "time"

// AuditEntry represents one audit log row.
type AuditEntry struct {
	ID           int       `json:"id"`
	UserID       string    `json:"user_id"`
	Action       string    `json:"action"`        // register, create, join, leave
	ResourceType string    `json:"resource_type"` // tournament, user
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
