package importer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lumina-app/lumina-import-go/internal/domain"
	"github.com/lumina-app/lumina-import-go/internal/extract"
	"github.com/lumina-app/lumina-import-go/internal/imagepipe"
	"github.com/lumina-app/lumina-import-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ArticleSource is the encyclopedia surface the importer depends on.
type ArticleSource interface {
	FetchArticle(ctx context.Context, title string) (*domain.RawArticle, error)
	FetchBirthYear(ctx context.Context, entityID string) *int
	ScrapePortraitURL(ctx context.Context, title string) string
}

// ImageImporter acquires, re-encodes and stores a profile photo.
type ImageImporter interface {
	Import(ctx context.Context, sourceURL, subjectName string, opts imagepipe.Options) string
}

// ProfileInserter is the write surface of the profile store.
type ProfileInserter interface {
	Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}

// Options controls one batch run.
type Options struct {
	// DryRun performs fetch and extraction but skips image upload and store
	// writes; used to preview extraction quality.
	DryRun bool
	// Concurrency > 1 enables the bounded-concurrency mode. Upstream calls
	// still pass through the shared rate limiter, and outcome order matches
	// request order.
	Concurrency int
}

type Config struct {
	CreatedBy   string
	Delay       time.Duration
	ImageMaxDim int
	// SquareAvatar switches uploads to a top-anchored square crop of
	// AvatarSize pixels instead of a bounded resize.
	SquareAvatar bool
	AvatarSize   int
}

// Importer sequences the pipeline for one or many names: fetch, derive,
// image, insert. It is the only component aware of batching, delay and
// dry-run.
type Importer struct {
	source  ArticleSource
	images  ImageImporter
	store   ProfileInserter
	limiter *rate.Limiter
	cfg     Config
	logger  *zap.Logger
}

func New(source ArticleSource, images ImageImporter, store ProfileInserter, cfg Config, logger *zap.Logger) *Importer {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	if cfg.ImageMaxDim <= 0 {
		cfg.ImageMaxDim = 800
	}
	if cfg.AvatarSize <= 0 {
		cfg.AvatarSize = 500
	}
	return &Importer{
		source:  source,
		images:  images,
		store:   store,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// PageTitle resolves the effective Wikipedia page title for a request: the
// explicit override when given, otherwise the name with spaces replaced by
// underscores.
func PageTitle(req *domain.ImportRequest) string {
	if req.WikiTitle != "" {
		return req.WikiTitle
	}
	return strings.ReplaceAll(req.Name, " ", "_")
}

// ImportOne runs the pipeline for a single request.
func (i *Importer) ImportOne(ctx context.Context, req *domain.ImportRequest, opts Options) *domain.ImportOutcome {
	return i.importOne(ctx, req, opts, false)
}

// ImportMany processes requests with a fixed inter-request delay to respect
// the upstream APIs' implicit rate limits. A single request's failure never
// aborts the batch. Sequential unless opts.Concurrency > 1.
func (i *Importer) ImportMany(ctx context.Context, reqs []*domain.ImportRequest, opts Options) []*domain.ImportOutcome {
	outcomes := make([]*domain.ImportOutcome, len(reqs))

	if opts.Concurrency > 1 {
		var mu sync.Mutex
		p := pool.New().WithMaxGoroutines(opts.Concurrency)
		for idx, req := range reqs {
			idx, req := idx, req
			p.Go(func() {
				outcome := i.importOne(ctx, req, opts, true)
				mu.Lock()
				outcomes[idx] = outcome
				mu.Unlock()
			})
		}
		p.Wait()
		return outcomes
	}

	for idx, req := range reqs {
		outcomes[idx] = i.importOne(ctx, req, opts, true)
	}
	return outcomes
}

func (i *Importer) importOne(ctx context.Context, req *domain.ImportRequest, opts Options, batch bool) *domain.ImportOutcome {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return &domain.ImportOutcome{
			Status: domain.ImportFailed,
			Reason: "name is required",
		}
	}

	outcome := &domain.ImportOutcome{Name: req.Name}
	title := PageTitle(req)

	if err := i.limiter.Wait(ctx); err != nil {
		outcome.Status = domain.ImportFailed
		outcome.Reason = err.Error()
		return outcome
	}

	article, err := i.source.FetchArticle(ctx, title)
	if err != nil {
		outcome.Status = domain.ImportFailed
		if errors.IsNotFound(err) {
			outcome.Reason = err.Error()
			i.logger.Warn("No page found",
				zap.String("name", req.Name),
				zap.String("title", title),
			)
		} else {
			outcome.Reason = err.Error()
			i.logger.Error("Article fetch failed",
				zap.String("name", req.Name),
				zap.String("title", title),
				zap.Error(err),
			)
		}
		return outcome
	}

	fields := extract.DeriveFields(article.ExtractText, article.Categories)

	// The structured Wikidata birth date, when present and in-window, beats
	// anything the text patterns found.
	if article.WikidataID != "" {
		if year := i.source.FetchBirthYear(ctx, article.WikidataID); year != nil {
			fields.BirthYear = year
		}
	}

	var imageURL *string
	if !opts.DryRun {
		source := article.ThumbnailURL
		if source == "" {
			source = i.source.ScrapePortraitURL(ctx, title)
		}
		if source != "" {
			imgOpts := imagepipe.Options{
				MaxDim:       i.cfg.ImageMaxDim,
				RandomSuffix: batch,
			}
			if i.cfg.SquareAvatar {
				imgOpts.MaxDim = i.cfg.AvatarSize
				imgOpts.SquareAvatar = true
			}
			uploaded := i.images.Import(ctx, source, req.Name, imgOpts)
			// A failed image is a partial success, not a failure.
			if uploaded != "" {
				imageURL = &uploaded
			}
		}
	}

	profile := &domain.Profile{
		Name:            req.Name,
		Intro:           fields.Intro,
		Accomplishments: fields.Accomplishments,
		ImageURL:        imageURL,
		Tags:            fields.Tags,
		BirthYear:       fields.BirthYear,
		CreatedBy:       i.cfg.CreatedBy,
	}

	if opts.DryRun {
		outcome.Status = domain.ImportSuccess
		outcome.Reason = "dry run"
		outcome.Profile = profile
		i.logger.Info("Dry-run import",
			zap.String("name", req.Name),
			zap.Strings("tags", profile.Tags),
		)
		return outcome
	}

	inserted, err := i.store.Insert(ctx, profile)
	if err != nil {
		if errors.IsConflict(err) {
			outcome.Status = domain.ImportSkipped
			outcome.Reason = "already exists"
			i.logger.Info("Profile already exists, skipping", zap.String("name", req.Name))
			return outcome
		}
		outcome.Status = domain.ImportFailed
		outcome.Reason = err.Error()
		i.logger.Error("Profile insert failed", zap.String("name", req.Name), zap.Error(err))
		return outcome
	}

	outcome.Status = domain.ImportSuccess
	outcome.Profile = inserted
	i.logger.Info("Profile imported",
		zap.Int("id", inserted.ID),
		zap.String("name", inserted.Name),
		zap.Bool("has_image", imageURL != nil),
	)
	return outcome
}
