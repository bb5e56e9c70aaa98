package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lumina-app/lumina-import-go/internal/cache"
	"github.com/lumina-app/lumina-import-go/internal/config"
	"github.com/lumina-app/lumina-import-go/internal/imagepipe"
	"github.com/lumina-app/lumina-import-go/internal/importer"
	"github.com/lumina-app/lumina-import-go/internal/storage"
	"github.com/lumina-app/lumina-import-go/internal/store"
	"github.com/lumina-app/lumina-import-go/internal/wiki"
	"go.uber.org/zap"
)

// Container bundles the assembled services behind the import pipeline. All
// heavy-weight initialization (DB, cache, HTTP clients) happens in Build so
// entrypoints stay focused on their command surface.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Importer *importer.Importer
	Profiles *store.ProfileRepository
	Postgres *store.PostgresService

	closers []func()
}

// Close releases held resources in reverse acquisition order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles the full dependency graph. Cache connectivity is optional:
// a Redis failure downgrades to an uncached client with a warning. Postgres
// and the object store are required.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var articleCache wiki.ArticleCache
	if cfg.Import.CacheEnabled {
		cacheSvc, cacheErr := cache.NewService(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, summary cache disabled", zap.Error(cacheErr))
		} else {
			articleCache = cacheSvc
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
		}
	}

	postgresSvc, err := store.NewPostgresService(store.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	profiles := store.NewProfileRepository(postgresSvc, logger)

	storageClient := storage.NewClient(storage.Config{
		Endpoint: cfg.Storage.Endpoint,
		Bucket:   cfg.Storage.Bucket,
		APIKey:   cfg.Storage.APIKey,
	}, httpClient, logger)

	wikiClient := wiki.NewClient(wiki.Config{
		APIBaseURL:     cfg.Wiki.APIBaseURL,
		WikidataAPIURL: cfg.Wiki.WikidataAPIURL,
		PageBaseURL:    cfg.Wiki.PageBaseURL,
		UserAgent:      cfg.Wiki.UserAgent,
		ThumbSize:      cfg.Wiki.ThumbSize,
		CategoryLimit:  cfg.Wiki.CategoryLimit,
		CacheTTL:       cfg.Import.CacheTTL,
	}, httpClient, articleCache, logger)

	imagePipeline := imagepipe.NewPipeline(storageClient, httpClient, logger)

	imp := importer.New(wikiClient, imagePipeline, profiles, importer.Config{
		CreatedBy:    cfg.Import.CreatedBy,
		Delay:        cfg.Import.Delay,
		ImageMaxDim:  cfg.Import.ImageMaxDim,
		SquareAvatar: cfg.Import.SquareAvatar,
		AvatarSize:   cfg.Import.AvatarSize,
	}, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Importer: imp,
		Profiles: profiles,
		Postgres: postgresSvc,
		closers:  closers,
	}, nil
}
