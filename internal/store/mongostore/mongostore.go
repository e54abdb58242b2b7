// Package mongostore implements store.Store on MongoDB. It is the primary
// backend: a remotely-hosted document store with no multi-document
// transactions, so Save enforces optimistic concurrency with a revision field
// in the replace filter.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/IGRA27/conversations-api-cloudant/internal/config"
	"github.com/IGRA27/conversations-api-cloudant/internal/models"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
)

const collectionName = "conversations"

// MongoStore implements store.Store using MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    zerolog.Logger
}

// convDoc is the BSON shape of a conversation record.
type convDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	Rev       int64     `bson:"rev"`
	Messages  []msgDoc  `bson:"messages"`
}

type msgDoc struct {
	Type string `bson:"type"`
	Text string `bson:"text"`
}

// Connect establishes the MongoDB connection, verifies it with a ping and
// ensures the conversations collection and its indexes exist.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	s := &MongoStore{
		client: client,
		coll:   db.Collection(collectionName),
		log:    log.With().Str("component", "mongostore").Logger(),
	}

	if err := s.ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	s.log.Info().Str("database", cfg.MongoDB).Msg("connected to MongoDB")
	return s, nil
}

// ensureIndexes creates the collection and its lookup indexes if absent.
func (s *MongoStore) ensureIndexes(ctx context.Context, db *mongo.Database) error {
	// CreateCollection errors when the collection already exists; that is fine.
	_ = db.CreateCollection(ctx, collectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes for %s: %w", collectionName, err)
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, userID string) ([]models.ConversationRecord, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}

	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversations: %w", err)
	}
	var docs []convDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}

	records := make([]models.ConversationRecord, len(docs))
	for i, d := range docs {
		records[i] = docToRecord(d)
	}
	return records, nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (*models.ConversationRecord, error) {
	var doc convDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}
	rec := docToRecord(doc)
	return &rec, nil
}

func (s *MongoStore) Create(ctx context.Context, rec *models.ConversationRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Rev = 1

	result, err := s.coll.InsertOne(ctx, recordToDoc(rec))
	if err != nil {
		return "", fmt.Errorf("failed to insert conversation: %w", err)
	}
	if !result.Acknowledged {
		return "", store.ErrNotAcknowledged
	}
	return rec.ID, nil
}

func (s *MongoStore) Save(ctx context.Context, rec *models.ConversationRecord) error {
	loadedRev := rec.Rev
	rec.Rev = loadedRev + 1

	result, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": rec.ID, "rev": loadedRev},
		recordToDoc(rec),
	)
	if err != nil {
		rec.Rev = loadedRev
		return fmt.Errorf("failed to save conversation %s: %w", rec.ID, err)
	}
	if result.MatchedCount == 0 {
		// Either the record is gone or a concurrent writer advanced the
		// revision. Distinguish so callers can retry conflicts.
		rec.Rev = loadedRev
		n, countErr := s.coll.CountDocuments(ctx, bson.M{"_id": rec.ID})
		if countErr == nil && n == 0 {
			return store.ErrNotFound
		}
		s.log.Debug().Str("id", rec.ID).Int64("rev", loadedRev).Msg("save lost revision race")
		return store.ErrConflict
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// --- Conversion helpers ---

func docToRecord(d convDoc) models.ConversationRecord {
	messages := make([]models.Message, len(d.Messages))
	for i, m := range d.Messages {
		messages[i] = models.Message{Role: models.Role(m.Type), Text: m.Text}
	}
	return models.ConversationRecord{
		ID:        d.ID,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Rev:       d.Rev,
		Messages:  messages,
	}
}

func recordToDoc(rec *models.ConversationRecord) convDoc {
	messages := make([]msgDoc, len(rec.Messages))
	for i, m := range rec.Messages {
		messages[i] = msgDoc{Type: string(m.Role), Text: m.Text}
	}
	return convDoc{
		ID:        rec.ID,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Rev:       rec.Rev,
		Messages:  messages,
	}
}
