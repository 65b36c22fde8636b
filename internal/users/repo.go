package users

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

// collection is the slice of *mongo.Collection the repository needs.
type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// Repository persists user accounts.
type Repository struct {
	coll collection
}

// NewRepository wires the repository to its backing collection.
func NewRepository(coll collection) (*Repository, error) {
	if coll == nil {
		return nil, errors.New("users collection is required")
	}
	return &Repository{coll: coll}, nil
}

// Create inserts the user and returns it with its generated id and
// creation timestamp filled in.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	user.CreatedAt = time.Now().UTC()

	result, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return user, nil
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername returns the user with the given username, or nil when absent.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByID returns the user with the given hex id. A malformed id behaves
// like a missing user.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
