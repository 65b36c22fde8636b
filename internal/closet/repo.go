package closet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Every filter in this repository carries the user id, so one user can
// never read or mutate another user's closet.

// collection is the slice of *mongo.Collection the repository needs.
type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Repository persists closet items.
type Repository struct {
	coll collection
}

// NewRepository wires the repository to its backing collection.
func NewRepository(coll collection) (*Repository, error) {
	if coll == nil {
		return nil, errors.New("closet collection is required")
	}
	return &Repository{coll: coll}, nil
}

// Create inserts the item with fresh timestamps.
func (r *Repository) Create(ctx context.Context, item Item) (Item, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Tags == nil {
		item.Tags = []string{}
	}

	result, err := r.coll.InsertOne(ctx, item)
	if err != nil {
		return Item{}, fmt.Errorf("insert closet item: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = id
	}
	return item, nil
}

// ListByUser returns the user's closet newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list closet: %w", err)
	}
	defer cursor.Close(ctx)

	items := []Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode closet items: %w", err)
	}
	return items, nil
}

// FindByID returns the user's item, or nil when absent. A malformed id
// behaves like a missing item.
func (r *Repository) FindByID(ctx context.Context, id, userID string) (*Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var item Item
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find closet item: %w", err)
	}
	return &item, nil
}

// Update applies the provided fields and stamps updated_at. Reports whether
// the item was found.
func (r *Repository) Update(ctx context.Context, id, userID string, set bson.M) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	set["updated_at"] = time.Now().UTC()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("update closet item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// Delete removes the user's item. Reports whether a document was removed.
func (r *Repository) Delete(ctx context.Context, id, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("delete closet item: %w", err)
	}
	return result.DeletedCount > 0, nil
}
