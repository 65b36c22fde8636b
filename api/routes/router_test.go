package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stylesense/stylesense-backend/api/controllers"
	"github.com/stylesense/stylesense-backend/internal/auth"
	"github.com/stylesense/stylesense-backend/internal/closet"
	"github.com/stylesense/stylesense-backend/internal/outfits"
	"github.com/stylesense/stylesense-backend/internal/vision"
	pkgauth "github.com/stylesense/stylesense-backend/pkg/auth"
	"github.com/stylesense/stylesense-backend/pkg/config"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"github.com/stylesense/stylesense-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Result, error) {
	return &auth.Result{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error) {
	return &auth.Result{}, nil
}

type stubOutfitService struct{}

func (stubOutfitService) Analyze(ctx context.Context, params outfits.AnalyzeParams) (*outfits.Analysis, error) {
	return &outfits.Analysis{}, nil
}

func (stubOutfitService) Get(ctx context.Context, id, userID string) (*outfits.Analysis, error) {
	return &outfits.Analysis{}, nil
}

func (stubOutfitService) List(ctx context.Context, userID string, limit, skip int) (*outfits.ListResult, error) {
	return &outfits.ListResult{}, nil
}

func (stubOutfitService) Delete(ctx context.Context, id, userID string) error {
	return nil
}

func (stubOutfitService) Chat(ctx context.Context, id, userID, message string, history []vision.ChatMessage) (string, error) {
	return "", nil
}

func (stubOutfitService) TogglePublic(ctx context.Context, id, ownerID string, tags []string) (bool, error) {
	return true, nil
}

func (stubOutfitService) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	return true, nil
}

func (stubOutfitService) ToggleDislike(ctx context.Context, id, userID string) (bool, error) {
	return true, nil
}

func (stubOutfitService) AddComment(ctx context.Context, id, userID, username, text string) error {
	return nil
}

func (stubOutfitService) Feed(ctx context.Context, limit, skip int) (*outfits.ListResult, error) {
	return &outfits.ListResult{}, nil
}

type stubClosetService struct{}

func (stubClosetService) Create(ctx context.Context, userID string, req closet.CreateRequest) (*closet.Item, error) {
	return &closet.Item{}, nil
}

func (stubClosetService) List(ctx context.Context, userID string) ([]closet.Item, error) {
	return []closet.Item{}, nil
}

func (stubClosetService) Get(ctx context.Context, id, userID string) (*closet.Item, error) {
	return &closet.Item{}, nil
}

func (stubClosetService) Update(ctx context.Context, id, userID string, req closet.UpdateRequest) (*closet.Item, error) {
	return &closet.Item{}, nil
}

func (stubClosetService) Delete(ctx context.Context, id, userID string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "stylesense",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, uploadsDir string) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		prometheus.NewRegistry(),
		(*redis.Client)(nil),
		uploadsDir,
		map[string]controllers.Pinger{"mongo": stubPinger{}},
		stubAuthService{},
		stubOutfitService{},
		stubClosetService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   "5f1d7f9c8b4b4b0001a00001",
		Email:    "ada@example.com",
		Username: "ada",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), "")
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(testConfig(), "")
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter(testConfig(), "")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOutfitRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), "")
	for _, target := range []string{
		"/api/outfit/user/all",
		"/api/outfit/abc123",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token got %d", target, resp.Code)
		}
	}
}

func TestOutfitRoutesSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, "")
	req := httptest.NewRequest(http.MethodGet, "/api/outfit/user/all", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestCommunityFeedIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), "")
	req := httptest.NewRequest(http.MethodGet, "/api/outfit/community/feed", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without token got %d", resp.Code)
	}
}

func TestClosetRoutesRequireJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, "")

	req := httptest.NewRequest(http.MethodGet, "/api/closet/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/closet/", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestUploadsServedStatically(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "look.jpg"), []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	router := newTestRouter(testConfig(), dir)
	req := httptest.NewRequest(http.MethodGet, "/uploads/look.jpg", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Body.String() != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
