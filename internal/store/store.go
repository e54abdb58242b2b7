// Package store defines the document-store boundary the conversation core
// writes through. Implementations live in subpackages (mongostore, pgstore,
// memstore) and must not assume multi-document transactions: the only
// concurrency guarantee required of Save is conflict-on-stale-revision.
package store

import (
	"context"
	"errors"

	"github.com/IGRA27/conversations-api-cloudant/internal/models"
)

var (
	// ErrNotFound is returned by Load when no record exists for the id.
	ErrNotFound = errors.New("store: record not found")

	// ErrConflict is returned by Save when the record's revision no longer
	// matches the stored one, i.e. a concurrent writer got there first.
	ErrConflict = errors.New("store: stale revision")

	// ErrNotAcknowledged is returned by Create when the store did not
	// confirm the insert. The write may or may not have happened; callers
	// must report failure rather than a false success.
	ErrNotAcknowledged = errors.New("store: write not acknowledged")
)

// Store is the document-store interface consumed by the conversation core.
type Store interface {
	// Find returns all records whose user_id equals userID, in store-native
	// order. An empty userID returns every record.
	Find(ctx context.Context, userID string) ([]models.ConversationRecord, error)

	// Load fetches the full record by id for read-modify-write.
	Load(ctx context.Context, id string) (*models.ConversationRecord, error)

	// Create inserts rec as a new document and returns its id. It assigns
	// rec.ID when empty and sets rec.Rev to the initial revision.
	Create(ctx context.Context, rec *models.ConversationRecord) (string, error)

	// Save persists a previously loaded record, conditional on rec.Rev
	// still matching the stored revision. On success rec.Rev is advanced;
	// on a lost race it returns ErrConflict and writes nothing.
	Save(ctx context.Context, rec *models.ConversationRecord) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close(ctx context.Context) error
}
