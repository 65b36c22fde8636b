package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/stylesense/stylesense-backend/api/controllers"
	"github.com/stylesense/stylesense-backend/api/routes"
	"github.com/stylesense/stylesense-backend/internal/auth"
	"github.com/stylesense/stylesense-backend/internal/closet"
	"github.com/stylesense/stylesense-backend/internal/outfits"
	"github.com/stylesense/stylesense-backend/internal/users"
	"github.com/stylesense/stylesense-backend/internal/vision"
	"github.com/stylesense/stylesense-backend/pkg/config"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"github.com/stylesense/stylesense-backend/pkg/metrics"
	"github.com/stylesense/stylesense-backend/pkg/mongo"
	"github.com/stylesense/stylesense-backend/pkg/redis"
	"github.com/stylesense/stylesense-backend/pkg/storage/disk"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	mongoClient, err := mongo.New(context.Background(), cfg.Mongo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mongodb", err)
		os.Exit(1)
	}

	if err := mongoClient.EnsureIndexes(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to ensure indexes", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	blobClient, err := disk.NewClient(context.Background(), cfg.Upload, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap blob storage", err)
		os.Exit(1)
	}

	analysisMetrics := metrics.NewAnalysisMetrics(prometheus.DefaultRegisterer)

	visionClient, err := vision.NewClient(context.Background(), vision.Params{
		Config:  cfg.Gemini,
		Logger:  logg,
		Metrics: analysisMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap vision client", err)
		os.Exit(1)
	}

	defer func() {
		err := multierr.Combine(
			visionClient.Close(),
			redisClient.Close(),
			mongoClient.Close(context.Background()),
		)
		if err != nil {
			logg.Error(context.Background(), "error closing clients", err)
		}
	}()

	userRepo, err := users.NewRepository(mongoClient.Collection(mongo.CollectionUsers))
	if err != nil {
		logg.Error(context.Background(), "failed to create user repository", err)
		os.Exit(1)
	}
	outfitRepo, err := outfits.NewRepository(mongoClient.Collection(mongo.CollectionAnalyses))
	if err != nil {
		logg.Error(context.Background(), "failed to create outfit repository", err)
		os.Exit(1)
	}
	closetRepo, err := closet.NewRepository(mongoClient.Collection(mongo.CollectionCloset))
	if err != nil {
		logg.Error(context.Background(), "failed to create closet repository", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.Params{
		Repo:     userRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	outfitService, err := outfits.NewService(outfits.Params{
		Repo:   outfitRepo,
		Users:  userRepo,
		Blobs:  blobClient,
		Vision: visionClient,
		Cache:  redisClient,
		Upload: cfg.Upload,
		Feed:   cfg.Feed,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outfit service", err)
		os.Exit(1)
	}

	closetService, err := closet.NewService(closet.Params{
		Repo:   closetRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create closet service", err)
		os.Exit(1)
	}

	healthDeps := map[string]controllers.Pinger{
		"mongodb": mongoClient,
		"redis":   redisClient,
		"storage": blobClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			prometheus.DefaultGatherer,
			redisClient,
			blobClient.Dir(),
			healthDeps,
			authService,
			outfitService,
			closetService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
