// Package conversation implements the merge/upsert core: deciding whether a
// batch of new turns extends a user's open session or starts a new one, and
// performing that mutation against the document store.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/IGRA27/conversations-api-cloudant/internal/metrics"
	"github.com/IGRA27/conversations-api-cloudant/internal/models"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
)

// maxUpsertAttempts bounds the resolve+mutate retry loop. Every attempt after
// the first re-resolves the open session, so a lost revision race converges
// on whichever record the winner left behind.
const maxUpsertAttempts = 3

// Service owns the session policy and writes through the injected store.
type Service struct {
	store   store.Store
	timeout time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewService creates the conversation service. timeout is the session window:
// a record whose last activity is older than timeout is closed.
func NewService(st store.Store, timeout time.Duration, log zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		timeout: timeout,
		log:     log.With().Str("component", "conversation").Logger(),
		metrics: m,
	}
}

// UpsertResult reports which record absorbed the batch and whether it was
// created by this call.
type UpsertResult struct {
	ID      string
	Created bool
}

// Record normalizes the incoming batch and appends it to the user's open
// session, or creates a new one when no session is open at now. Exactly one
// document is created or mutated per successful call.
//
// The store offers no transactions, so resolve+mutate is optimistic: a save
// that loses a revision race is retried from the resolve step, bounded by
// maxUpsertAttempts.
func (s *Service) Record(ctx context.Context, userID string, messages []models.Message, history []Turn, now time.Time) (*UpsertResult, error) {
	batch, err := Normalize(messages, history)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxUpsertAttempts; attempt++ {
		open, err := s.resolveOpen(ctx, userID, now)
		if err != nil {
			return nil, err
		}

		if open == nil {
			rec := &models.ConversationRecord{
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
				Messages:  batch,
			}
			id, err := s.store.Create(ctx, rec)
			if err != nil {
				return nil, fmt.Errorf("create conversation for user %s: %w", userID, err)
			}
			s.metrics.RecordUpsertOutcome(metrics.OutcomeCreated)
			s.log.Info().Str("user_id", userID).Str("id", id).Int("messages", len(batch)).Msg("conversation created")
			return &UpsertResult{ID: id, Created: true}, nil
		}

		rec, err := s.store.Load(ctx, open.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Resolved record vanished before we could load it; resolve again.
			s.retryAfterConflict(userID, attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load conversation %s: %w", open.ID, err)
		}

		rec.Messages = append(rec.Messages, batch...)
		rec.UpdatedAt = now

		err = s.store.Save(ctx, rec)
		if errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrNotFound) {
			s.retryAfterConflict(userID, attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save conversation %s: %w", rec.ID, err)
		}
		s.metrics.RecordUpsertOutcome(metrics.OutcomeExtended)
		s.log.Info().Str("user_id", userID).Str("id", rec.ID).Int("messages", len(batch)).Msg("conversation extended")
		return &UpsertResult{ID: rec.ID, Created: false}, nil
	}

	return nil, fmt.Errorf("conversation upsert for user %s exhausted %d attempts: %w", userID, maxUpsertAttempts, store.ErrConflict)
}

func (s *Service) retryAfterConflict(userID string, attempt int) {
	s.metrics.RecordUpsertOutcome(metrics.OutcomeConflictRetry)
	s.log.Warn().Str("user_id", userID).Int("attempt", attempt).Msg("upsert lost a write race, re-resolving")
}

// resolveOpen finds the user's open session at now, or nil when none exists.
// Open means last activity within the session window. Among open records the
// most recently active wins; exact ties break on the greater id so concurrent
// resolvers agree.
func (s *Service) resolveOpen(ctx context.Context, userID string, now time.Time) (*models.ConversationRecord, error) {
	records, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find conversations for user %s: %w", userID, err)
	}

	cutoff := now.Add(-s.timeout)
	var open *models.ConversationRecord
	for i := range records {
		rec := &records[i]
		last := rec.LastActivity()
		if last.IsZero() {
			// Legacy record with no usable timestamp; not a candidate.
			continue
		}
		if last.Before(cutoff) {
			continue
		}
		if open == nil || last.After(open.LastActivity()) ||
			(last.Equal(open.LastActivity()) && rec.ID > open.ID) {
			open = rec
		}
	}
	return open, nil
}
