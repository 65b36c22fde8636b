package outfits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	stderrors "errors"

	"github.com/stylesense/stylesense-backend/internal/users"
	"github.com/stylesense/stylesense-backend/internal/vision"
	"github.com/stylesense/stylesense-backend/pkg/config"
	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"github.com/stylesense/stylesense-backend/pkg/pagination"
	"github.com/stylesense/stylesense-backend/pkg/redis"
)

// Service defines the outfit analysis pipeline and its social operations.
type Service interface {
	Analyze(ctx context.Context, params AnalyzeParams) (*Analysis, error)
	Get(ctx context.Context, id, userID string) (*Analysis, error)
	List(ctx context.Context, userID string, limit, skip int) (*ListResult, error)
	Delete(ctx context.Context, id, userID string) error
	Chat(ctx context.Context, id, userID, message string, history []vision.ChatMessage) (string, error)
	TogglePublic(ctx context.Context, id, ownerID string, tags []string) (bool, error)
	ToggleLike(ctx context.Context, id, userID string) (bool, error)
	ToggleDislike(ctx context.Context, id, userID string) (bool, error)
	AddComment(ctx context.Context, id, userID, username, text string) error
	Feed(ctx context.Context, limit, skip int) (*ListResult, error)
}

// Repo is the persistence surface the service needs.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) (Analysis, error)
	FindByID(ctx context.Context, id string) (*Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, skip int) ([]Analysis, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	ListPublic(ctx context.Context, limit, skip int) ([]Analysis, error)
	CountPublic(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	TogglePublic(ctx context.Context, id, ownerID string, tags []string) (bool, bool, error)
	ToggleLike(ctx context.Context, id, userID string) (bool, bool, error)
	ToggleDislike(ctx context.Context, id, userID string) (bool, bool, error)
	AddComment(ctx context.Context, id string, comment Comment) (bool, error)
}

// UserFinder resolves the acting user before any side effect runs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// BlobStore persists uploaded images.
type BlobStore interface {
	Save(ctx context.Context, r io.Reader, ext string) (string, error)
	Delete(ctx context.Context, name string) error
}

// Analyzer is the vision model surface.
type Analyzer interface {
	Analyze(ctx context.Context, imageData []byte, ext, occasion, weather string) (vision.Result, error)
	Chat(ctx context.Context, analysis vision.Result, history []vision.ChatMessage, message string) string
}

// FeedCache caches community feed pages. Invalidation works by bumping a
// generation counter embedded in every page key.
type FeedCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	FeedVersionKey() string
	FeedPageKey(version int64, limit, skip int) string
}

// AnalyzeParams carries one upload through the pipeline.
type AnalyzeParams struct {
	UserID   string
	File     io.Reader
	Filename string
	Occasion string
	Weather  string
}

// ListResult is a page of analyses with pagination echo.
type ListResult struct {
	Analyses []Analysis `json:"analyses"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Skip     int        `json:"skip"`
}

type service struct {
	repo   Repo
	users  UserFinder
	blobs  BlobStore
	vision Analyzer
	cache  FeedCache
	upload config.UploadConfig
	feed   config.FeedConfig
	logger *logger.Logger
}

// Params carries the dependencies required to construct the outfit service.
type Params struct {
	Repo   Repo
	Users  UserFinder
	Blobs  BlobStore
	Vision Analyzer
	Cache  FeedCache
	Upload config.UploadConfig
	Feed   config.FeedConfig
	Logger *logger.Logger
}

// NewService wires outfit dependencies.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analysis repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user finder required")
	}
	if params.Blobs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "blob store required")
	}
	if params.Vision == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vision client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:   params.Repo,
		users:  params.Users,
		blobs:  params.Blobs,
		vision: params.Vision,
		cache:  params.Cache,
		upload: params.Upload,
		feed:   params.Feed,
		logger: params.Logger,
	}, nil
}

// Analyze validates the upload, stores the image, runs the model, and
// persists the result. The blob is removed again if the model call fails,
// so no record ever points at an image that analysis never covered.
func (s *service) Analyze(ctx context.Context, params AnalyzeParams) (*Analysis, error) {
	ext, err := s.validateExtension(params.Filename)
	if err != nil {
		return nil, err
	}

	data, err := s.readCapped(params.File)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	filename, err := s.blobs.Save(ctx, bytes.NewReader(data), ext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store upload")
	}
	ctx = s.logger.WithUserID(ctx, params.UserID)

	result, err := s.vision.Analyze(ctx, data, ext, params.Occasion, params.Weather)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, filename); delErr != nil {
			s.logger.Warn(ctx, fmt.Sprintf("orphaned blob %s could not be removed: %v", filename, delErr))
		}
		return nil, err
	}

	analysis, err := s.repo.Create(ctx, Analysis{
		UserID:         params.UserID,
		ImageFilename:  filename,
		AnalysisResult: result,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist analysis")
	}

	s.logger.Info(s.logger.WithAnalysisID(ctx, analysis.ID.Hex()), "outfit analyzed")
	return &analysis, nil
}

// Get returns an analysis to its owner. Public analyses are only readable
// through the community feed.
func (s *service) Get(ctx context.Context, id, userID string) (*Analysis, error) {
	analysis, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return analysis, nil
}

// List returns one page of the caller's analyses with the total count.
func (s *service) List(ctx context.Context, userID string, limit, skip int) (*ListResult, error) {
	limit = pagination.NormalizeLimit(limit)
	skip = pagination.NormalizeSkip(skip)

	analyses, err := s.repo.ListByUser(ctx, userID, limit, skip)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list analyses")
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count analyses")
	}

	return &ListResult{Analyses: analyses, Total: total, Limit: limit, Skip: skip}, nil
}

// Delete removes an owned analysis and releases its image.
func (s *service) Delete(ctx context.Context, id, userID string) error {
	analysis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find analysis")
	}
	if analysis != nil && analysis.UserID == userID {
		if err := s.blobs.Delete(ctx, analysis.ImageFilename); err != nil {
			s.logger.Warn(ctx, fmt.Sprintf("blob %s could not be removed: %v", analysis.ImageFilename, err))
		}
	}

	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete analysis")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "analysis not found or access denied")
	}

	s.invalidateFeed(ctx)
	return nil
}

// Chat lets the owner discuss an analysis with the stylist model.
func (s *service) Chat(ctx context.Context, id, userID, message string, history []vision.ChatMessage) (string, error) {
	analysis, err := s.findExisting(ctx, id)
	if err != nil {
		return "", err
	}
	if analysis.UserID != userID {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return s.vision.Chat(ctx, analysis.AnalysisResult, history, message), nil
}

// TogglePublic flips visibility of an owned analysis and drops cached feed
// pages so the change shows up immediately.
func (s *service) TogglePublic(ctx context.Context, id, ownerID string, tags []string) (bool, error) {
	visibility, found, err := s.repo.TogglePublic(ctx, id, ownerID, tags)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle visibility")
	}
	if !found {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "analysis not found")
	}

	s.invalidateFeed(ctx)
	return visibility, nil
}

// ToggleLike adds or removes the caller's like.
func (s *service) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	liked, found, err := s.repo.ToggleLike(ctx, id, userID)
	return s.reactionOutcome(liked, found, err, "toggle like")
}

// ToggleDislike adds or removes the caller's dislike.
func (s *service) ToggleDislike(ctx context.Context, id, userID string) (bool, error) {
	disliked, found, err := s.repo.ToggleDislike(ctx, id, userID)
	return s.reactionOutcome(disliked, found, err, "toggle dislike")
}

func (s *service) reactionOutcome(state, found bool, err error, op string) (bool, error) {
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	if !found {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "analysis not found")
	}
	return state, nil
}

// AddComment appends a comment with the author's name denormalized in.
func (s *service) AddComment(ctx context.Context, id, userID, username, text string) error {
	if strings.TrimSpace(text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment text is required")
	}

	found, err := s.repo.AddComment(ctx, id, Comment{
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add comment")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "analysis not found")
	}
	return nil
}

// Feed returns one page of public analyses, served from cache when a fresh
// copy exists. Cache trouble degrades to a direct read.
func (s *service) Feed(ctx context.Context, limit, skip int) (*ListResult, error) {
	limit = pagination.NormalizeLimit(limit)
	skip = pagination.NormalizeSkip(skip)

	pageKey := s.feedPageKey(ctx, limit, skip)
	if pageKey != "" {
		if cached, err := s.cache.Get(ctx, pageKey); err == nil {
			var page ListResult
			if err := json.Unmarshal([]byte(cached), &page); err == nil {
				return &page, nil
			}
		} else if !stderrors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn(ctx, fmt.Sprintf("feed cache read failed: %v", err))
		}
	}

	analyses, err := s.repo.ListPublic(ctx, limit, skip)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public analyses")
	}
	total, err := s.repo.CountPublic(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count public analyses")
	}
	page := &ListResult{Analyses: analyses, Total: total, Limit: limit, Skip: skip}

	if pageKey != "" {
		if encoded, err := json.Marshal(page); err == nil {
			if err := s.cache.Set(ctx, pageKey, encoded, s.feed.CacheTTL); err != nil {
				s.logger.Warn(ctx, fmt.Sprintf("feed cache write failed: %v", err))
			}
		}
	}
	return page, nil
}

// feedPageKey resolves the page key under the current cache generation.
// Returns "" when caching is unavailable.
func (s *service) feedPageKey(ctx context.Context, limit, skip int) string {
	if s.cache == nil {
		return ""
	}
	raw, err := s.cache.Get(ctx, s.cache.FeedVersionKey())
	if err != nil && !stderrors.Is(err, redis.ErrCacheMiss) {
		return ""
	}
	var version int64
	if raw != "" {
		fmt.Sscanf(raw, "%d", &version)
	}
	return s.cache.FeedPageKey(version, limit, skip)
}

func (s *service) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, s.cache.FeedVersionKey()); err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("feed cache invalidation failed: %v", err))
	}
}

func (s *service) validateExtension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file has no extension")
	}
	for _, allowed := range s.upload.ExtensionsList() {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("file type not allowed, supported types: %s", s.upload.AllowedExtensions))
}

// readCapped consumes the whole upload so oversized files are rejected
// before anything touches the blob store.
func (s *service) readCapped(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	data, err := io.ReadAll(io.LimitReader(r, s.upload.MaxSizeBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.upload.MaxSizeBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file too large, maximum size is %d bytes", s.upload.MaxSizeBytes))
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	return data, nil
}

// findExisting loads an analysis or reports not-found.
func (s *service) findExisting(ctx context.Context, id string) (*Analysis, error) {
	analysis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find analysis")
	}
	if analysis == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "analysis not found")
	}
	return analysis, nil
}
