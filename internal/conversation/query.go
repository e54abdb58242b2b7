package conversation

import (
	"context"
	"fmt"

	"github.com/IGRA27/conversations-api-cloudant/internal/models"
)

// Summary is the external shape of a stored conversation. Internal fields
// (id, timestamps, revision) are not exposed.
type Summary struct {
	UserID   string           `json:"user_id"`
	Messages []models.Message `json:"messages"`
}

// List returns all stored conversations reshaped for the response contract,
// filtered by userID when non-empty. No pagination; ordering across records
// is store-native.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	records, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find conversations: %w", err)
	}

	summaries := make([]Summary, len(records))
	for i, rec := range records {
		messages := rec.Messages
		if messages == nil {
			messages = []models.Message{}
		}
		summaries[i] = Summary{UserID: rec.UserID, Messages: messages}
	}
	return summaries, nil
}
