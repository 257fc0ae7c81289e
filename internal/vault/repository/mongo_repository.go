package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sivd/piivault/internal/vault/domain"
)

type mongoEntry struct {
	Category  string    `bson:"category"`
	ValueHash string    `bson:"value_hash"`
	Token     string    `bson:"token"`
	Payload   string    `bson:"payload"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoRepository implements vault entry persistence on a MongoDB collection.
// Insert relies on an upsert with $setOnInsert so concurrent writers for the
// same (category, value_hash) converge on a single document.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB vault repository instance backed by
// the pii_vault collection of the given database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection("pii_vault")}
}

// EnsureIndexes creates the unique indexes backing dedup and token lookup.
// Called once at startup by the composition root.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "value_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_pii_vault_value"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_pii_vault_token"),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return storageUnavailable("failed to ensure mongodb indexes", err)
	}
	return nil
}

// Insert adds an entry, leaving any existing document for the same
// (category, value_hash) untouched.
func (m *MongoRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	filter := bson.D{
		{Key: "category", Value: entry.Category.String()},
		{Key: "value_hash", Value: entry.ValueHash},
	}
	update := bson.D{
		{Key: "$setOnInsert", Value: mongoEntry{
			Category:  entry.Category.String(),
			ValueHash: entry.ValueHash,
			Token:     entry.Token,
			Payload:   entry.Payload,
			CreatedAt: entry.CreatedAt,
		}},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		// A duplicate key error here means another writer upserted the same
		// value between our filter evaluation and the insert. The canonical
		// token read-back handles convergence, so treat it as a no-op.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return storageUnavailable("failed to insert vault entry", err)
	}
	return nil
}

// GetByToken retrieves an entry by its (category, token) pair.
func (m *MongoRepository) GetByToken(
	ctx context.Context,
	category domain.Category,
	token string,
) (*domain.Entry, error) {
	filter := bson.D{
		{Key: "category", Value: category.String()},
		{Key: "token", Value: token},
	}

	var doc mongoEntry
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, storageUnavailable("failed to get vault entry by token", err)
	}
	return docToEntry(&doc), nil
}

// GetTokenByValueHash retrieves the canonical token for a
// (category, value_hash) pair.
func (m *MongoRepository) GetTokenByValueHash(
	ctx context.Context,
	category domain.Category,
	valueHash string,
) (string, error) {
	filter := bson.D{
		{Key: "category", Value: category.String()},
		{Key: "value_hash", Value: valueHash},
	}

	var doc mongoEntry
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrEntryNotFound
		}
		return "", storageUnavailable("failed to get token by value hash", err)
	}
	return doc.Token, nil
}

// ListAll returns up to limit entries, newest first.
func (m *MongoRepository) ListAll(ctx context.Context, limit int) ([]*domain.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storageUnavailable("failed to list vault entries", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var entries []*domain.Entry
	for cursor.Next(ctx) {
		var doc mongoEntry
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageUnavailable("failed to decode vault entry", err)
		}
		entries = append(entries, docToEntry(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, storageUnavailable("failed to iterate vault entries", err)
	}
	return entries, nil
}

func docToEntry(doc *mongoEntry) *domain.Entry {
	return &domain.Entry{
		Category:  domain.Category(doc.Category),
		ValueHash: doc.ValueHash,
		Token:     doc.Token,
		Payload:   doc.Payload,
		CreatedAt: doc.CreatedAt,
	}
}
