// Package pgstore implements store.Store on PostgreSQL via GORM, keeping the
// document shape by storing the message sequence as a JSONB column. The
// revision check rides on a conditional UPDATE instead of Mongo's filtered
// replace; the contract is identical.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/IGRA27/conversations-api-cloudant/internal/config"
	"github.com/IGRA27/conversations-api-cloudant/internal/models"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
)

// PgStore implements store.Store using PostgreSQL.
type PgStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// conversationRow is the relational shape of a conversation record.
// Timestamp tracking is explicit: the upsert logic owns created_at and
// updated_at, so GORM's automatic touch is disabled.
type conversationRow struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"index;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
	Rev       int64          `gorm:"not null;default:1"`
	Messages  datatypes.JSON `gorm:"type:jsonb"`
}

func (conversationRow) TableName() string { return "conversations" }

// Connect opens the PostgreSQL connection and migrates the schema.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*PgStore, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// auto migrate schema
	if err := db.WithContext(ctx).AutoMigrate(&conversationRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &PgStore{
		db:  db,
		log: log.With().Str("component", "pgstore").Logger(),
	}
	s.log.Info().Str("database", cfg.DBName).Msg("connected to PostgreSQL")
	return s, nil
}

func (s *PgStore) Find(ctx context.Context, userID string) ([]models.ConversationRecord, error) {
	query := s.db.WithContext(ctx)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var rows []conversationRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find conversations: %w", err)
	}

	records := make([]models.ConversationRecord, len(rows))
	for i, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

func (s *PgStore) Load(ctx context.Context, id string) (*models.ConversationRecord, error) {
	var row conversationRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}
	rec, err := rowToRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PgStore) Create(ctx context.Context, rec *models.ConversationRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Rev = 1

	row, err := recordToRow(rec)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to insert conversation: %w", err)
	}
	return rec.ID, nil
}

func (s *PgStore) Save(ctx context.Context, rec *models.ConversationRecord) error {
	loadedRev := rec.Rev

	payload, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	tx := s.db.WithContext(ctx).
		Model(&conversationRow{}).
		Where("id = ? AND rev = ?", rec.ID, loadedRev).
		Updates(map[string]interface{}{
			"messages":   datatypes.JSON(payload),
			"updated_at": rec.UpdatedAt,
			"rev":        loadedRev + 1,
		})
	if tx.Error != nil {
		return fmt.Errorf("failed to save conversation %s: %w", rec.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&conversationRow{}).Where("id = ?", rec.ID).Count(&n).Error; err == nil && n == 0 {
			return store.ErrNotFound
		}
		s.log.Debug().Str("id", rec.ID).Int64("rev", loadedRev).Msg("save lost revision race")
		return store.ErrConflict
	}

	rec.Rev = loadedRev + 1
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PgStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- Conversion helpers ---

func rowToRecord(row conversationRow) (models.ConversationRecord, error) {
	var messages []models.Message
	if len(row.Messages) > 0 {
		if err := json.Unmarshal(row.Messages, &messages); err != nil {
			return models.ConversationRecord{}, fmt.Errorf("failed to decode messages for %s: %w", row.ID, err)
		}
	}
	return models.ConversationRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Rev:       row.Rev,
		Messages:  messages,
	}, nil
}

func recordToRow(rec *models.ConversationRecord) (conversationRow, error) {
	payload, err := json.Marshal(rec.Messages)
	if err != nil {
		return conversationRow{}, fmt.Errorf("failed to encode messages: %w", err)
	}
	return conversationRow{
		ID:        rec.ID,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Rev:       rec.Rev,
		Messages:  datatypes.JSON(payload),
	}, nil
}
