package store

import (
	"context"
	"fmt"
	"time"

	"Mnemo/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the LocalStore implementation backed by a MongoDB
// collection, keyed by (user_id, memory_id).
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a MongoStore over the named collection.
func NewMongoStore(db *mongo.Database, collectionName string) *MongoStore {
	return &MongoStore{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the (user_id, memory_id) unique index and the
// per-user scan index. Safe to call repeatedly.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "memory_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "last_updated", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create fact indexes: %w", err)
	}
	return nil
}

// Scan returns all facts for a user, oldest first. Stable ordering keeps
// duplicate-tie resolution deterministic.
func (s *MongoStore) Scan(ctx context.Context, userID string) ([]*models.Fact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_updated", Value: 1}, {Key: "memory_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan facts for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var facts []*models.Fact
	if err := cursor.All(ctx, &facts); err != nil {
		return nil, fmt.Errorf("failed to decode facts for user %s: %w", userID, err)
	}
	return facts, nil
}

// Insert persists the fact, assigning a fresh MemoryID when empty.
func (s *MongoStore) Insert(ctx context.Context, fact *models.Fact) (string, error) {
	stored := *fact
	if stored.MemoryID == "" {
		stored.MemoryID = uuid.New().String()
	}
	if stored.LastUpdated.IsZero() {
		stored.LastUpdated = time.Now()
	}

	if _, err := s.collection.InsertOne(ctx, &stored); err != nil {
		return "", fmt.Errorf("failed to insert fact: %w", err)
	}
	return stored.MemoryID, nil
}

// Get is a point lookup by (userID, memoryID).
func (s *MongoStore) Get(ctx context.Context, userID, memoryID string) (*models.Fact, error) {
	var fact models.Fact
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID, "memory_id": memoryID}).Decode(&fact)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fact %s: %w", memoryID, err)
	}
	return &fact, nil
}

// Delete removes the fact with the given IDs.
func (s *MongoStore) Delete(ctx context.Context, userID, memoryID string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"user_id": userID, "memory_id": memoryID})
	if err != nil {
		return fmt.Errorf("failed to delete fact %s: %w", memoryID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
