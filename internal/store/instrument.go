package store

import (
	"context"
	"time"

	"github.com/IGRA27/conversations-api-cloudant/internal/metrics"
	"github.com/IGRA27/conversations-api-cloudant/internal/models"
)

// WithMetrics wraps a Store so every operation is recorded with its duration
// and outcome.
func WithMetrics(s Store, m *metrics.Metrics) Store {
	return &instrumentedStore{next: s, metrics: m}
}

type instrumentedStore struct {
	next    Store
	metrics *metrics.Metrics
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordStoreOperation(op, status, time.Since(start))
}

func (s *instrumentedStore) Find(ctx context.Context, userID string) ([]models.ConversationRecord, error) {
	start := time.Now()
	records, err := s.next.Find(ctx, userID)
	s.observe("find", start, err)
	return records, err
}

func (s *instrumentedStore) Load(ctx context.Context, id string) (*models.ConversationRecord, error) {
	start := time.Now()
	rec, err := s.next.Load(ctx, id)
	s.observe("load", start, err)
	return rec, err
}

func (s *instrumentedStore) Create(ctx context.Context, rec *models.ConversationRecord) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, rec)
	s.observe("create", start, err)
	return id, err
}

func (s *instrumentedStore) Save(ctx context.Context, rec *models.ConversationRecord) error {
	start := time.Now()
	err := s.next.Save(ctx, rec)
	s.observe("save", start, err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumentedStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
