package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/stylesense/stylesense-backend/pkg/config"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the platform.
const (
	CollectionUsers    = "users"
	CollectionAnalyses = "outfit_analyses"
	CollectionCloset   = "closet"
)

// Client wraps the document store connection used by the repositories.
type Client struct {
	raw *mongo.Client
	db  *mongo.Database
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New bootstraps a MongoDB client and verifies connectivity.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongodb database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()

	raw, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := raw.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "mongodb connection established")
	}

	return &Client{raw: raw, db: raw.Database(cfg.Database)}, nil
}

// Collection returns a handle to the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Collection(name)
}

// EnsureIndexes creates the unique indexes the application relies on.
// Email/username uniqueness is enforced here rather than re-derived in
// application logic; the lookup-before-insert in the signup flow is a
// courtesy check, the index is the invariant.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	users := c.Collection(CollectionUsers)
	if users == nil {
		return errors.New("mongo client not initialized")
	}

	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	analyses := c.Collection(CollectionAnalyses)
	_, err = analyses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create analysis indexes: %w", err)
	}

	closet := c.Collection(CollectionCloset)
	_, err = closet.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create closet indexes: %w", err)
	}

	return nil
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errors.New("mongo client not initialized")
	}
	return c.raw.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Disconnect(ctx)
}
