package wiki

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ScrapePortraitURL is the fallback image source for pages whose summary query
// carries no thumbnail: it reads the og:image meta tag from the article HTML.
// Returns "" on any failure.
func (c *Client) ScrapePortraitURL(ctx context.Context, title string) string {
	pageURL := strings.TrimSuffix(c.cfg.PageBaseURL, "/") + "/" + title

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Portrait scrape failed", zap.String("title", title), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.logger.Debug("Portrait HTML parse failed", zap.String("title", title), zap.Error(err))
		return ""
	}

	portrait, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return strings.TrimSpace(portrait)
}
