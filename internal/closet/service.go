package closet

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
)

// Service defines virtual closet operations. Every operation is scoped to
// the acting user.
type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) (*Item, error)
	List(ctx context.Context, userID string) ([]Item, error)
	Get(ctx context.Context, id, userID string) (*Item, error)
	Update(ctx context.Context, id, userID string, req UpdateRequest) (*Item, error)
	Delete(ctx context.Context, id, userID string) error
}

// Repo is the persistence surface the service needs.
type Repo interface {
	Create(ctx context.Context, item Item) (Item, error)
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	FindByID(ctx context.Context, id, userID string) (*Item, error)
	Update(ctx context.Context, id, userID string, set bson.M) (bool, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type service struct {
	repo   Repo
	logger *logger.Logger
}

// Params carries the dependencies required to construct the closet service.
type Params struct {
	Repo   Repo
	Logger *logger.Logger
}

// NewService wires closet dependencies.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "closet repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: params.Repo, logger: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (*Item, error) {
	item, err := s.repo.Create(ctx, Item{
		UserID:      userID,
		Name:        req.Name,
		Category:    req.Category,
		Color:       req.Color,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create closet item")
	}
	return &item, nil
}

func (s *service) List(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list closet")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id, userID string) (*Item, error) {
	item, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find closet item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return item, nil
}

// Update applies the populated fields of req. An empty update is a no-op
// that returns the current item.
func (s *service) Update(ctx context.Context, id, userID string, req UpdateRequest) (*Item, error) {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Color != nil {
		set["color"] = *req.Color
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Tags != nil {
		set["tags"] = *req.Tags
	}

	if len(set) == 0 {
		return s.Get(ctx, id, userID)
	}

	found, err := s.repo.Update(ctx, id, userID, set)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update closet item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return s.Get(ctx, id, userID)
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete closet item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}
