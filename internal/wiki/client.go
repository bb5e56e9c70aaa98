package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lumina-app/lumina-import-go/internal/domain"
	"github.com/lumina-app/lumina-import-go/pkg/errors"
	"go.uber.org/zap"
)

const birthDateProperty = "P569"

// ArticleCache is the subset of the cache service the client needs. A nil
// cache disables caching entirely.
type ArticleCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Config struct {
	APIBaseURL     string
	WikidataAPIURL string
	PageBaseURL    string
	UserAgent      string
	ThumbSize      int
	CategoryLimit  int
	CacheTTL       time.Duration
}

// Client queries the Wikipedia action API for page summaries and Wikidata for
// structured birth dates. Expected-missing data (no thumbnail, no claim, bad
// payload on the Wikidata side) is signalled as absence, never as an error.
type Client struct {
	httpClient *http.Client
	cfg        Config
	cache      ArticleCache
	logger     *zap.Logger
}

func NewClient(cfg Config, httpClient *http.Client, articleCache ArticleCache, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		cache:      articleCache,
		logger:     logger,
	}
}

type summaryResponse struct {
	Query struct {
		Pages map[string]summaryPage `json:"pages"`
	} `json:"query"`
}

type summaryPage struct {
	PageID  int     `json:"pageid"`
	Missing *string `json:"missing"`
	Title   string  `json:"title"`
	Extract string  `json:"extract"`

	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`

	Categories []struct {
		Title string `json:"title"`
	} `json:"categories"`

	PageProps map[string]string `json:"pageprops"`
}

// FetchArticle runs one combined summary query: intro-only plaintext extract,
// thumbnail at the configured size, category labels and the Wikidata item id.
// A missing page yields *errors.NotFoundError; transport failures and
// malformed payloads yield *errors.APIError.
func (c *Client) FetchArticle(ctx context.Context, title string) (*domain.RawArticle, error) {
	cacheKey := "wiki:summary:" + title
	if c.cache != nil {
		var cached domain.RawArticle
		if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.logger.Debug("Summary cache hit", zap.String("title", title))
			return &cached, nil
		}
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("titles", title)
	params.Set("prop", "extracts|pageimages|categories|pageprops")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("piprop", "thumbnail")
	params.Set("pithumbsize", strconv.Itoa(c.cfg.ThumbSize))
	params.Set("cllimit", strconv.Itoa(c.cfg.CategoryLimit))
	params.Set("ppprop", "wikibase_item")

	body, err := c.doGet(ctx, c.cfg.APIBaseURL, params)
	if err != nil {
		return nil, err
	}

	var parsed summaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.NewAPIError("failed to parse summary response", 502, map[string]any{"title": title}).WithCause(err)
	}
	if len(parsed.Query.Pages) == 0 {
		return nil, errors.NewAPIError("summary response contained no pages", 502, map[string]any{"title": title})
	}

	var page summaryPage
	for _, p := range parsed.Query.Pages {
		page = p
		break
	}

	// The API reports a missing page under the sentinel id "-1" with a
	// "missing" marker rather than a non-200 status.
	if page.Missing != nil || page.PageID <= 0 {
		return nil, errors.NewNotFoundError(title)
	}

	article := &domain.RawArticle{
		Title:       page.Title,
		ExtractText: page.Extract,
	}
	if page.Thumbnail != nil {
		article.ThumbnailURL = page.Thumbnail.Source
	}
	for _, category := range page.Categories {
		article.Categories = append(article.Categories, strings.TrimPrefix(category.Title, "Category:"))
	}
	if page.PageProps != nil {
		article.WikidataID = page.PageProps["wikibase_item"]
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, article, c.cfg.CacheTTL); err != nil {
			c.logger.Warn("Failed to cache summary", zap.String("title", title), zap.Error(err))
		}
	}

	return article, nil
}

type claimsResponse struct {
	Claims map[string][]struct {
		MainSnak struct {
			DataValue struct {
				Value struct {
					Time string `json:"time"`
				} `json:"value"`
			} `json:"datavalue"`
		} `json:"mainsnak"`
	} `json:"claims"`
}

// FetchBirthYear reads the date-of-birth claim (P569) for a Wikidata entity.
// Any failure, missing claim, or out-of-window year yields nil.
func (c *Client) FetchBirthYear(ctx context.Context, entityID string) *int {
	if entityID == "" {
		return nil
	}

	params := url.Values{}
	params.Set("action", "wbgetclaims")
	params.Set("format", "json")
	params.Set("entity", entityID)
	params.Set("property", birthDateProperty)

	body, err := c.doGet(ctx, c.cfg.WikidataAPIURL, params)
	if err != nil {
		c.logger.Debug("Wikidata claim fetch failed", zap.String("entity", entityID), zap.Error(err))
		return nil
	}

	var parsed claimsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Debug("Wikidata claim parse failed", zap.String("entity", entityID), zap.Error(err))
		return nil
	}

	claims := parsed.Claims[birthDateProperty]
	if len(claims) == 0 {
		return nil
	}

	year, ok := parseEraYear(claims[0].MainSnak.DataValue.Value.Time)
	if !ok {
		return nil
	}
	if year < 1 || year > time.Now().Year() {
		return nil
	}
	return &year
}

// parseEraYear extracts the year from a signed-era Wikidata time string of the
// form "+1867-11-07T00:00:00Z" (or "-0044-..." for BCE dates).
func parseEraYear(value string) (int, bool) {
	if len(value) < 2 {
		return 0, false
	}

	sign := 1
	switch value[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}

	digits := value[1:]
	end := strings.IndexByte(digits, '-')
	if end <= 0 {
		return 0, false
	}

	year, err := strconv.Atoi(digits[:end])
	if err != nil {
		return 0, false
	}
	return sign * year, true
}

func (c *Client) doGet(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	reqURL := baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewAPIError("failed to build request", 500, map[string]any{"url": baseURL}).WithCause(err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("request failed", 502, map[string]any{"url": baseURL}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read response", 502, map[string]any{"url": baseURL}).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode, map[string]any{"url": baseURL})
	}

	return body, nil
}
