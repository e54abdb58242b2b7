package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IGRA27/conversations-api-cloudant/internal/models"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
	"github.com/IGRA27/conversations-api-cloudant/internal/store/memstore"
)

func TestCreateAssignsIDAndRevision(t *testing.T) {
	s := memstore.New()

	rec := &models.ConversationRecord{UserID: "u1", CreatedAt: time.Now()}
	id, err := s.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if rec.Rev != 1 {
		t.Errorf("expected initial revision 1, got %d", rec.Rev)
	}
}

func TestLoadUnknownIDReturnsNotFound(t *testing.T) {
	s := memstore.New()

	_, err := s.Load(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveDetectsStaleRevision(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	rec := &models.ConversationRecord{UserID: "u1"}
	if _, err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two writers load the same revision.
	first, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	first.Messages = append(first.Messages, models.Message{Role: models.RoleUser, Text: "a"})
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("first save should succeed: %v", err)
	}

	second.Messages = append(second.Messages, models.Message{Role: models.RoleUser, Text: "b"})
	if err := s.Save(ctx, second); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale revision, got %v", err)
	}

	// The first write must not have been overwritten.
	current, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(current.Messages) != 1 || current.Messages[0].Text != "a" {
		t.Errorf("expected only the winning write, got %+v", current.Messages)
	}
}

func TestFindFiltersByUser(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	for _, userID := range []string{"u1", "u2", "u1"} {
		if _, err := s.Create(ctx, &models.ConversationRecord{UserID: userID}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	filtered, err := s.Find(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("expected 2 records for u1, got %d", len(filtered))
	}

	all, err := s.Find(ctx, "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records total, got %d", len(all))
	}
}

func TestLoadReturnsIsolatedCopy(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	rec := &models.ConversationRecord{
		UserID:   "u1",
		Messages: []models.Message{{Role: models.RoleUser, Text: "hi"}},
	}
	if _, err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Messages[0].Text = "mutated"

	fresh, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fresh.Messages[0].Text != "hi" {
		t.Error("mutating a loaded record leaked into the store")
	}
}
