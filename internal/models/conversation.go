package models

import (
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single normalized conversation entry. The wire name for the
// role field is "type"; existing clients depend on it.
type Message struct {
	Role Role   `json:"type"`
	Text string `json:"text"`
}

// ConversationRecord is the persisted unit: one logical session for a user.
// Messages are append-only and ordering is significant. Rev is the optimistic
// concurrency token: every successful save increments it, and a save is only
// applied when the stored revision still matches the one the record was
// loaded with.
type ConversationRecord struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Rev       int64
	Messages  []Message
}

// LastActivity returns the timestamp used for session-openness decisions.
// Legacy records created before UpdatedAt existed fall back to CreatedAt.
// The zero time means no usable timestamp at all; callers treat such records
// as non-candidates.
func (r *ConversationRecord) LastActivity() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
