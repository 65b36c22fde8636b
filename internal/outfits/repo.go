package outfits

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
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Repository persists outfit analyses and their social state.
type Repository struct {
	coll collection
}

// NewRepository wires the repository to its backing collection.
func NewRepository(coll collection) (*Repository, error) {
	if coll == nil {
		return nil, errors.New("analyses collection is required")
	}
	return &Repository{coll: coll}, nil
}

// Create inserts the analysis and returns it with its generated id.
func (r *Repository) Create(ctx context.Context, analysis Analysis) (Analysis, error) {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	if analysis.Likes == nil {
		analysis.Likes = []string{}
	}
	if analysis.Dislikes == nil {
		analysis.Dislikes = []string{}
	}
	if analysis.Comments == nil {
		analysis.Comments = []Comment{}
	}

	result, err := r.coll.InsertOne(ctx, analysis)
	if err != nil {
		return Analysis{}, fmt.Errorf("insert analysis: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		analysis.ID = id
	}
	return analysis, nil
}

// FindByID returns the analysis with the given hex id, or nil when absent.
// A malformed id behaves like a missing record.
func (r *Repository) FindByID(ctx context.Context, id string) (*Analysis, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var analysis Analysis
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&analysis)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find analysis: %w", err)
	}
	return &analysis, nil
}

// ListByUser returns the user's analyses newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit, skip int) ([]Analysis, error) {
	return r.list(ctx, bson.M{"user_id": userID}, limit, skip)
}

// CountByUser returns how many analyses the user owns.
func (r *Repository) CountByUser(ctx context.Context, userID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

// ListPublic returns public analyses newest first.
func (r *Repository) ListPublic(ctx context.Context, limit, skip int) ([]Analysis, error) {
	return r.list(ctx, bson.M{"is_public": true}, limit, skip)
}

// CountPublic returns how many analyses are public.
func (r *Repository) CountPublic(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"is_public": true})
	if err != nil {
		return 0, fmt.Errorf("count public analyses: %w", err)
	}
	return count, nil
}

func (r *Repository) list(ctx context.Context, filter bson.M, limit, skip int) ([]Analysis, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer cursor.Close(ctx)

	analyses := []Analysis{}
	if err := cursor.All(ctx, &analyses); err != nil {
		return nil, fmt.Errorf("decode analyses: %w", err)
	}
	return analyses, nil
}

// Delete removes the analysis if it belongs to the user. Reports whether a
// document was removed.
func (r *Repository) Delete(ctx context.Context, id, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// TogglePublic flips the visibility of an owned analysis. Tags replace the
// stored list only when the flip lands on public and tags were supplied.
// Reports the new visibility and whether the record was found.
func (r *Repository) TogglePublic(ctx context.Context, id, ownerID string, tags []string) (bool, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, false, nil
	}

	var current Analysis
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": ownerID}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("find analysis: %w", err)
	}

	visibility := !current.IsPublic
	set := bson.M{"is_public": visibility}
	if visibility && tags != nil {
		set["tags"] = tags
	}

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "user_id": ownerID}, bson.M{"$set": set}); err != nil {
		return false, false, fmt.Errorf("update visibility: %w", err)
	}
	return visibility, true, nil
}

// ToggleLike adds or removes the user from the liking set. Adding also
// removes the user from the disliking set in the same update, keeping the
// two sets disjoint. Reports the resulting liked state and whether the
// record was found.
func (r *Repository) ToggleLike(ctx context.Context, id, userID string) (bool, bool, error) {
	return r.toggleReaction(ctx, id, userID, "likes", "dislikes")
}

// ToggleDislike mirrors ToggleLike for the disliking set.
func (r *Repository) ToggleDislike(ctx context.Context, id, userID string) (bool, bool, error) {
	return r.toggleReaction(ctx, id, userID, "dislikes", "likes")
}

// toggleReaction runs as two conditional updates, each atomic on its own.
// The first only matches when the user is already in the target set, so a
// concurrent toggle settles on one of the two legal outcomes.
func (r *Repository) toggleReaction(ctx context.Context, id, userID, field, opposite string) (bool, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, false, nil
	}

	removed, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, field: userID},
		bson.M{"$pull": bson.M{field: userID}},
	)
	if err != nil {
		return false, false, fmt.Errorf("remove %s: %w", field, err)
	}
	if removed.ModifiedCount > 0 {
		return false, true, nil
	}

	added, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$addToSet": bson.M{field: userID},
			"$pull":     bson.M{opposite: userID},
		},
	)
	if err != nil {
		return false, false, fmt.Errorf("add %s: %w", field, err)
	}
	if added.MatchedCount == 0 {
		return false, false, nil
	}
	return true, true, nil
}

// AddComment appends the comment to the analysis. Reports whether the
// record was found.
func (r *Repository) AddComment(ctx context.Context, id string, comment Comment) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return false, fmt.Errorf("add comment: %w", err)
	}
	return result.MatchedCount > 0, nil
}
