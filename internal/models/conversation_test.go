package models

import (
	"testing"
	"time"
)

func TestLastActivity(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	tests := []struct {
		name string
		rec  ConversationRecord
		want time.Time
	}{
		{
			name: "updated_at wins when set",
			rec:  ConversationRecord{CreatedAt: created, UpdatedAt: updated},
			want: updated,
		},
		{
			name: "falls back to created_at",
			rec:  ConversationRecord{CreatedAt: created},
			want: created,
		},
		{
			name: "zero when neither is usable",
			rec:  ConversationRecord{},
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.LastActivity(); !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("expected user and assistant roles to be valid")
	}
	if Role("bot").Valid() {
		t.Error("expected unknown role to be invalid")
	}
}
