package imagepipe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lumina-app/lumina-import-go/internal/util"
	"go.uber.org/zap"
)

const (
	jpegQuality     = 80
	downloadTimeout = 30 * time.Second
	keyPrefix       = "profiles"
	maxDownloadSize = 20 << 20 // 20 MiB
)

// Uploader is the object-store surface the pipeline needs.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}

// Options controls re-encoding for one import call site.
type Options struct {
	// MaxDim caps both dimensions while preserving aspect ratio.
	MaxDim int
	// SquareAvatar crops to a square of MaxDim anchored at the top of the
	// frame, where the face usually is.
	SquareAvatar bool
	// RandomSuffix appends a short random component to the object key. Used
	// by the batch path where same-second imports of similarly named
	// subjects could otherwise collide.
	RandomSuffix bool
}

// Pipeline downloads a remote image, re-encodes it as a bounded JPEG and
// uploads it to the object store. Every failure is a soft failure: the import
// that asked for the image proceeds without one.
type Pipeline struct {
	httpClient *http.Client
	store      Uploader
	logger     *zap.Logger
}

func NewPipeline(store Uploader, httpClient *http.Client, logger *zap.Logger) *Pipeline {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	return &Pipeline{
		httpClient: httpClient,
		store:      store,
		logger:     logger,
	}
}

// Import fetches sourceURL, re-encodes it and uploads it, returning the public
// URL of the stored copy or "" when any step fails.
func (p *Pipeline) Import(ctx context.Context, sourceURL, subjectName string, opts Options) string {
	if sourceURL == "" {
		return ""
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = 800
	}

	raw := p.download(ctx, sourceURL)
	if raw == nil {
		return ""
	}

	encoded, err := p.reencode(raw, opts)
	if err != nil {
		p.logger.Warn("Image re-encode failed",
			zap.String("subject", subjectName),
			zap.String("source", sourceURL),
			zap.Error(err),
		)
		return ""
	}

	key := p.objectKey(subjectName, opts)
	if err := p.store.Upload(ctx, key, encoded, "image/jpeg"); err != nil {
		p.logger.Warn("Image upload failed",
			zap.String("subject", subjectName),
			zap.String("key", key),
			zap.Error(err),
		)
		return ""
	}

	url := p.store.PublicURL(key)
	p.logger.Debug("Image imported",
		zap.String("subject", subjectName),
		zap.String("url", url),
		zap.Int("bytes", len(encoded)),
	)
	return url
}

func (p *Pipeline) download(ctx context.Context, sourceURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("Image download failed", zap.String("source", sourceURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("Image download rejected",
			zap.String("source", sourceURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		p.logger.Warn("Image read failed", zap.String("source", sourceURL), zap.Error(err))
		return nil
	}
	return data
}

func (p *Pipeline) reencode(raw []byte, opts Options) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if opts.SquareAvatar {
		img = imaging.Fill(img, opts.MaxDim, opts.MaxDim, imaging.Top, imaging.Lanczos)
	} else {
		bounds := img.Bounds()
		if bounds.Dx() > opts.MaxDim || bounds.Dy() > opts.MaxDim {
			img = imaging.Fit(img, opts.MaxDim, opts.MaxDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Pipeline) objectKey(subjectName string, opts Options) string {
	slug := util.Slugify(subjectName)
	if slug == "" {
		slug = "profile"
	}

	if opts.RandomSuffix {
		return fmt.Sprintf("%s/%d-%s-%s.jpg", keyPrefix, time.Now().Unix(), slug, uuid.NewString()[:8])
	}
	return fmt.Sprintf("%s/%d-%s.jpg", keyPrefix, time.Now().Unix(), slug)
}
