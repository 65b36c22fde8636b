package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stylesense/stylesense-backend/api/controllers"
	"github.com/stylesense/stylesense-backend/api/middleware"
	"github.com/stylesense/stylesense-backend/internal/auth"
	"github.com/stylesense/stylesense-backend/internal/closet"
	"github.com/stylesense/stylesense-backend/internal/outfits"
	"github.com/stylesense/stylesense-backend/pkg/config"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"github.com/stylesense/stylesense-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface. uploadsDir, when non-empty, is
// served read-only under /uploads so analysis records can reference
// their stored image by URL.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	redisClient *redis.Client,
	uploadsDir string,
	healthDeps map[string]controllers.Pinger,
	authService auth.Service,
	outfitService outfits.Service,
	closetService closet.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, redisClient, logg)).Post("/signup", controllers.AuthSignup(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/outfit", func(r chi.Router) {
		r.Get("/community/feed", controllers.CommunityFeed(outfitService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/analyze", controllers.OutfitAnalyze(outfitService, logg, cfg.Upload.MaxSizeBytes))
			r.Get("/user/all", controllers.OutfitList(outfitService, logg))
			r.Get("/{analysisID}", controllers.OutfitGet(outfitService, logg))
			r.Delete("/{analysisID}", controllers.OutfitDelete(outfitService, logg))
			r.Post("/chat/{analysisID}", controllers.OutfitChat(outfitService, logg))

			r.Post("/{analysisID}/toggle-public", controllers.OutfitTogglePublic(outfitService, logg))
			r.Post("/{analysisID}/like", controllers.OutfitToggleLike(outfitService, logg))
			r.Post("/{analysisID}/dislike", controllers.OutfitToggleDislike(outfitService, logg))
			r.Post("/{analysisID}/comment", controllers.OutfitAddComment(outfitService, logg))
		})
	})

	r.Route("/api/closet", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", controllers.ClosetList(closetService, logg))
		r.Post("/", controllers.ClosetCreate(closetService, logg))
		r.Get("/{itemID}", controllers.ClosetGet(closetService, logg))
		r.Patch("/{itemID}", controllers.ClosetUpdate(closetService, logg))
		r.Delete("/{itemID}", controllers.ClosetDelete(closetService, logg))
	})

	return r
}
