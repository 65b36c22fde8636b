package auth

import (
	"context"
	"strings"
	"time"

	"github.com/stylesense/stylesense-backend/internal/users"
	pkgauth "github.com/stylesense/stylesense-backend/pkg/auth"
	"github.com/stylesense/stylesense-backend/pkg/config"
	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"github.com/stylesense/stylesense-backend/pkg/mongo"
	"github.com/stylesense/stylesense-backend/pkg/security"
)

// Service defines account registration and credential login.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*Result, error)
	Login(ctx context.Context, req LoginRequest) (*Result, error)
}

// Repository is the user persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, user users.User) (users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByUsername(ctx context.Context, username string) (*users.User, error)
	FindByID(ctx context.Context, id string) (*users.User, error)
}

type service struct {
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	logger   *logger.Logger
	now      func() time.Time
}

// Params carries the dependencies required to construct the auth service.
type Params struct {
	Repo     Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService wires auth dependencies.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		jwt:      params.JWT,
		password: params.Password,
		logger:   params.Logger,
		now:      now,
	}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user with this email already exists")
	}

	existing, err = s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing username")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username already taken")
	}

	hashed, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, users.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
	})
	if err != nil {
		// The unique index is the real guard; the lookups above only
		// give friendlier messages for the common case.
		if mongo.IsDuplicateKey(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email or username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.logger.Info(s.logger.WithUserID(ctx, user.ID.Hex()), "user registered")
	return s.buildResult(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect email or password")
	}

	ok, err := security.VerifyPassword(req.Password, user.HashedPassword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect email or password")
	}

	s.logger.Info(s.logger.WithUserID(ctx, user.ID.Hex()), "user logged in")
	return s.buildResult(*user)
}

func (s *service) buildResult(user users.User) (*Result, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   user.ID.Hex(),
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Result{
		User:  users.ToDTO(user),
		Token: Token{AccessToken: token, TokenType: "bearer"},
	}, nil
}
