package outfits

import (
	"context"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type updateCall struct {
	filter interface{}
	update interface{}
}

// scriptedColl plays back canned update results while recording the
// documents the repository issued.
type scriptedColl struct {
	updateResults []*mongo.UpdateResult
	updates       []updateCall
	findOneDoc    interface{}
	deleteResult  *mongo.DeleteResult
	deletedFilter interface{}
}

func (s *scriptedColl) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return &mongo.InsertOneResult{InsertedID: primitive.NewObjectID()}, nil
}

func (s *scriptedColl) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	if s.findOneDoc == nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(s.findOneDoc, nil, nil)
}

func (s *scriptedColl) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return mongo.NewCursorFromDocuments(nil, nil, nil)
}

func (s *scriptedColl) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	s.updates = append(s.updates, updateCall{filter: filter, update: update})
	if len(s.updateResults) == 0 {
		return &mongo.UpdateResult{}, nil
	}
	result := s.updateResults[0]
	s.updateResults = s.updateResults[1:]
	return result, nil
}

func (s *scriptedColl) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	s.deletedFilter = filter
	if s.deleteResult == nil {
		return &mongo.DeleteResult{}, nil
	}
	return s.deleteResult, nil
}

func (s *scriptedColl) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return 0, nil
}

func newScriptedRepo(t *testing.T, coll *scriptedColl) *Repository {
	t.Helper()
	repo, err := NewRepository(coll)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func TestToggleLikeRemovesExistingLike(t *testing.T) {
	coll := &scriptedColl{
		updateResults: []*mongo.UpdateResult{{MatchedCount: 1, ModifiedCount: 1}},
	}
	repo := newScriptedRepo(t, coll)
	oid := primitive.NewObjectID()

	liked, found, err := repo.ToggleLike(context.Background(), oid.Hex(), "user-1")
	if err != nil || !found || liked {
		t.Fatalf("expected un-like, got liked=%v found=%v err=%v", liked, found, err)
	}

	if len(coll.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(coll.updates))
	}
	wantFilter := bson.M{"_id": oid, "likes": "user-1"}
	wantUpdate := bson.M{"$pull": bson.M{"likes": "user-1"}}
	if !reflect.DeepEqual(coll.updates[0].filter, wantFilter) {
		t.Fatalf("pull filter = %v, want %v", coll.updates[0].filter, wantFilter)
	}
	if !reflect.DeepEqual(coll.updates[0].update, wantUpdate) {
		t.Fatalf("pull update = %v, want %v", coll.updates[0].update, wantUpdate)
	}
}

func TestToggleLikeAddsAndClearsDislike(t *testing.T) {
	coll := &scriptedColl{
		updateResults: []*mongo.UpdateResult{
			{MatchedCount: 0, ModifiedCount: 0},
			{MatchedCount: 1, ModifiedCount: 1},
		},
	}
	repo := newScriptedRepo(t, coll)
	oid := primitive.NewObjectID()

	liked, found, err := repo.ToggleLike(context.Background(), oid.Hex(), "user-1")
	if err != nil || !found || !liked {
		t.Fatalf("expected like, got liked=%v found=%v err=%v", liked, found, err)
	}

	if len(coll.updates) != 2 {
		t.Fatalf("expected two updates, got %d", len(coll.updates))
	}
	wantUpdate := bson.M{
		"$addToSet": bson.M{"likes": "user-1"},
		"$pull":     bson.M{"dislikes": "user-1"},
	}
	if !reflect.DeepEqual(coll.updates[1].update, wantUpdate) {
		t.Fatalf("add update = %v, want %v", coll.updates[1].update, wantUpdate)
	}
	if !reflect.DeepEqual(coll.updates[1].filter, bson.M{"_id": oid}) {
		t.Fatalf("add filter = %v", coll.updates[1].filter)
	}
}

func TestToggleDislikeMirrorsFields(t *testing.T) {
	coll := &scriptedColl{
		updateResults: []*mongo.UpdateResult{
			{MatchedCount: 0, ModifiedCount: 0},
			{MatchedCount: 1, ModifiedCount: 1},
		},
	}
	repo := newScriptedRepo(t, coll)
	oid := primitive.NewObjectID()

	disliked, found, err := repo.ToggleDislike(context.Background(), oid.Hex(), "user-1")
	if err != nil || !found || !disliked {
		t.Fatalf("expected dislike, got disliked=%v found=%v err=%v", disliked, found, err)
	}

	wantUpdate := bson.M{
		"$addToSet": bson.M{"dislikes": "user-1"},
		"$pull":     bson.M{"likes": "user-1"},
	}
	if !reflect.DeepEqual(coll.updates[1].update, wantUpdate) {
		t.Fatalf("add update = %v, want %v", coll.updates[1].update, wantUpdate)
	}
}

func TestToggleReactionMissingRecord(t *testing.T) {
	coll := &scriptedColl{
		updateResults: []*mongo.UpdateResult{
			{MatchedCount: 0, ModifiedCount: 0},
			{MatchedCount: 0, ModifiedCount: 0},
		},
	}
	repo := newScriptedRepo(t, coll)

	_, found, err := repo.ToggleLike(context.Background(), primitive.NewObjectID().Hex(), "user-1")
	if err != nil || found {
		t.Fatalf("expected not-found, got found=%v err=%v", found, err)
	}
}

func TestToggleMalformedIDBehavesLikeMissing(t *testing.T) {
	coll := &scriptedColl{}
	repo := newScriptedRepo(t, coll)

	_, found, err := repo.ToggleLike(context.Background(), "not-an-object-id", "user-1")
	if err != nil || found {
		t.Fatalf("expected not-found, got found=%v err=%v", found, err)
	}
	if len(coll.updates) != 0 {
		t.Fatal("update issued for malformed id")
	}
}

func TestTogglePublicSetsTagsOnlyWhenGoingPublic(t *testing.T) {
	oid := primitive.NewObjectID()
	coll := &scriptedColl{
		findOneDoc:    Analysis{ID: oid, UserID: "owner", IsPublic: false, Tags: []string{"old"}},
		updateResults: []*mongo.UpdateResult{{MatchedCount: 1, ModifiedCount: 1}},
	}
	repo := newScriptedRepo(t, coll)

	visible, found, err := repo.TogglePublic(context.Background(), oid.Hex(), "owner", []string{"red", "casual"})
	if err != nil || !found || !visible {
		t.Fatalf("expected public, got visible=%v found=%v err=%v", visible, found, err)
	}

	wantUpdate := bson.M{"$set": bson.M{"is_public": true, "tags": []string{"red", "casual"}}}
	if !reflect.DeepEqual(coll.updates[0].update, wantUpdate) {
		t.Fatalf("update = %v, want %v", coll.updates[0].update, wantUpdate)
	}
}

func TestTogglePublicLeavesTagsWhenGoingPrivate(t *testing.T) {
	oid := primitive.NewObjectID()
	coll := &scriptedColl{
		findOneDoc:    Analysis{ID: oid, UserID: "owner", IsPublic: true, Tags: []string{"red"}},
		updateResults: []*mongo.UpdateResult{{MatchedCount: 1, ModifiedCount: 1}},
	}
	repo := newScriptedRepo(t, coll)

	visible, found, err := repo.TogglePublic(context.Background(), oid.Hex(), "owner", []string{"ignored"})
	if err != nil || !found || visible {
		t.Fatalf("expected private, got visible=%v found=%v err=%v", visible, found, err)
	}

	wantUpdate := bson.M{"$set": bson.M{"is_public": false}}
	if !reflect.DeepEqual(coll.updates[0].update, wantUpdate) {
		t.Fatalf("update = %v, want %v", coll.updates[0].update, wantUpdate)
	}
}

func TestDeleteScopesToOwner(t *testing.T) {
	oid := primitive.NewObjectID()
	coll := &scriptedColl{deleteResult: &mongo.DeleteResult{DeletedCount: 1}}
	repo := newScriptedRepo(t, coll)

	deleted, err := repo.Delete(context.Background(), oid.Hex(), "owner")
	if err != nil || !deleted {
		t.Fatalf("expected delete, got deleted=%v err=%v", deleted, err)
	}
	want := bson.M{"_id": oid, "user_id": "owner"}
	if !reflect.DeepEqual(coll.deletedFilter, want) {
		t.Fatalf("delete filter = %v, want %v", coll.deletedFilter, want)
	}
}

func TestAddCommentPushes(t *testing.T) {
	oid := primitive.NewObjectID()
	coll := &scriptedColl{updateResults: []*mongo.UpdateResult{{MatchedCount: 1, ModifiedCount: 1}}}
	repo := newScriptedRepo(t, coll)

	comment := Comment{UserID: "user-1", Username: "sam", Text: "nice fit"}
	found, err := repo.AddComment(context.Background(), oid.Hex(), comment)
	if err != nil || !found {
		t.Fatalf("expected comment push, got found=%v err=%v", found, err)
	}
	wantUpdate := bson.M{"$push": bson.M{"comments": comment}}
	if !reflect.DeepEqual(coll.updates[0].update, wantUpdate) {
		t.Fatalf("update = %v, want %v", coll.updates[0].update, wantUpdate)
	}
}
