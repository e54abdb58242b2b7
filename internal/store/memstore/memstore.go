// Package memstore is an in-memory Store used by tests and by local
// development (STORE_BACKEND=memory). It honors the same revision-conflict
// contract as the remote backends.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/IGRA27/conversations-api-cloudant/internal/models"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
)

type MemStore struct {
	mu      sync.Mutex
	records map[string]models.ConversationRecord
	order   []string // insertion order, so Find is deterministic
}

func New() *MemStore {
	return &MemStore{records: make(map[string]models.ConversationRecord)}
}

func (s *MemStore) Find(_ context.Context, userID string) ([]models.ConversationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ConversationRecord
	for _, id := range s.order {
		rec := s.records[id]
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

func (s *MemStore) Load(_ context.Context, id string) (*models.ConversationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := copyRecord(rec)
	return &out, nil
}

func (s *MemStore) Create(_ context.Context, rec *models.ConversationRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Rev = 1
	s.records[rec.ID] = copyRecord(*rec)
	s.order = append(s.order, rec.ID)
	return rec.ID, nil
}

func (s *MemStore) Save(_ context.Context, rec *models.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[rec.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Rev != rec.Rev {
		return store.ErrConflict
	}
	rec.Rev++
	s.records[rec.ID] = copyRecord(*rec)
	return nil
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Close(context.Context) error { return nil }

func copyRecord(rec models.ConversationRecord) models.ConversationRecord {
	out := rec
	out.Messages = make([]models.Message, len(rec.Messages))
	copy(out.Messages, rec.Messages)
	return out
}
