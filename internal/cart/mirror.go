package cart

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mirror is the best-effort remote copy of a cart: one document per user.
// Writes are fire-and-forget from the service's point of view.
type Mirror interface {
	Write(ctx context.Context, snap Snapshot) error
	Read(ctx context.Context, userID string) (*Snapshot, error)
}

type MongoMirror struct {
	db *mongo.Database
}

func NewMongoMirror(db *mongo.Database) *MongoMirror {
	return &MongoMirror{db: db}
}

func (m *MongoMirror) Write(ctx context.Context, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("carts").ReplaceOne(
		ctx,
		bson.M{"userId": snap.UserID},
		snap,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Read returns nil when the user has no mirrored cart.
func (m *MongoMirror) Read(ctx context.Context, userID string) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var snap Snapshot
	err := m.db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
