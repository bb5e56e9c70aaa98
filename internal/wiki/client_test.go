package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lumina-app/lumina-import-go/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client := NewClient(Config{
		APIBaseURL:     ts.URL + "/w/api.php",
		WikidataAPIURL: ts.URL + "/wikidata/api.php",
		PageBaseURL:    ts.URL + "/wiki",
		UserAgent:      "test-agent",
		ThumbSize:      600,
		CategoryLimit:  20,
	}, ts.Client(), nil, zap.NewNop())
	return client, ts
}

func TestFetchArticle(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Marie_Curie", r.URL.Query().Get("titles"))
		require.Equal(t, "extracts|pageimages|categories|pageprops", r.URL.Query().Get("prop"))
		require.Equal(t, "600", r.URL.Query().Get("pithumbsize"))

		fmt.Fprint(w, `{
			"query": {
				"pages": {
					"20408": {
						"pageid": 20408,
						"title": "Marie Curie",
						"extract": "Marie Curie was a physicist.",
						"thumbnail": {"source": "https://upload.example/curie.jpg", "width": 450, "height": 600},
						"categories": [
							{"ns": 14, "title": "Category:Polish physicists"},
							{"ns": 14, "title": "Category:Nobel laureates in Physics"}
						],
						"pageprops": {"wikibase_item": "Q7186"}
					}
				}
			}
		}`)
	})

	article, err := client.FetchArticle(context.Background(), "Marie_Curie")
	require.NoError(t, err)
	require.Equal(t, "Marie Curie", article.Title)
	require.Equal(t, "Marie Curie was a physicist.", article.ExtractText)
	require.Equal(t, "https://upload.example/curie.jpg", article.ThumbnailURL)
	require.Equal(t, []string{"Polish physicists", "Nobel laureates in Physics"}, article.Categories)
	require.Equal(t, "Q7186", article.WikidataID)
}

func TestFetchArticleMissingPage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"query": {
				"pages": {
					"-1": {"ns": 0, "title": "Zzzzz_Nonexistent", "missing": ""}
				}
			}
		}`)
	})

	article, err := client.FetchArticle(context.Background(), "Zzzzz_Nonexistent")
	require.Nil(t, article)
	require.True(t, errors.IsNotFound(err))
	require.Contains(t, err.Error(), "no page found")
	require.Contains(t, err.Error(), "exact Wikipedia title")
}

func TestFetchArticleSparsePage(t *testing.T) {
	// Thumbnail, categories and wikibase item are all expected-missing:
	// their absence is not an error.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"query": {
				"pages": {
					"55": {"pageid": 55, "title": "Obscure Person", "extract": "Text."}
				}
			}
		}`)
	})

	article, err := client.FetchArticle(context.Background(), "Obscure_Person")
	require.NoError(t, err)
	require.Equal(t, "", article.ThumbnailURL)
	require.Empty(t, article.Categories)
	require.Equal(t, "", article.WikidataID)
}

func TestFetchArticleServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	article, err := client.FetchArticle(context.Background(), "Anyone")
	require.Nil(t, article)
	require.Error(t, err)
	require.False(t, errors.IsNotFound(err))
}

func TestFetchArticleMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query": {"pages": {}}}`)
	})

	article, err := client.FetchArticle(context.Background(), "Anyone")
	require.Nil(t, article)
	require.Error(t, err)
	// Malformed is not the same outcome as a missing page.
	require.False(t, errors.IsNotFound(err))
}

func TestFetchBirthYear(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "wbgetclaims", r.URL.Query().Get("action"))
		require.Equal(t, "Q7186", r.URL.Query().Get("entity"))
		require.Equal(t, "P569", r.URL.Query().Get("property"))

		fmt.Fprint(w, `{
			"claims": {
				"P569": [
					{"mainsnak": {"datavalue": {"value": {"time": "+1867-11-07T00:00:00Z"}}}}
				]
			}
		}`)
	})

	year := client.FetchBirthYear(context.Background(), "Q7186")
	require.NotNil(t, year)
	require.Equal(t, 1867, *year)
}

func TestFetchBirthYearAbsence(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no claims", body: `{"claims": {}}`},
		{name: "bce date outside window", body: `{"claims": {"P569": [{"mainsnak": {"datavalue": {"value": {"time": "-0069-01-01T00:00:00Z"}}}}]}}`},
		{name: "future year outside window", body: `{"claims": {"P569": [{"mainsnak": {"datavalue": {"value": {"time": "+9999-01-01T00:00:00Z"}}}}]}}`},
		{name: "garbage time value", body: `{"claims": {"P569": [{"mainsnak": {"datavalue": {"value": {"time": "soon"}}}}]}}`},
		{name: "not json", body: `<html>rate limited</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			require.Nil(t, client.FetchBirthYear(context.Background(), "Q1"))
		})
	}
}

func TestFetchBirthYearEmptyEntity(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty entity id")
	})
	require.Nil(t, client.FetchBirthYear(context.Background(), ""))
}

func TestParseEraYear(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"+1867-11-07T00:00:00Z", 1867, true},
		{"+0001-01-01T00:00:00Z", 1, true},
		{"-0044-03-15T00:00:00Z", -44, true},
		{"1867-11-07", 0, false},
		{"+-", 0, false},
		{"", 0, false},
		{"+nope-01-01", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseEraYear(tt.input)
		require.Equal(t, tt.wantOK, ok, "input %q", tt.input)
		if tt.wantOK {
			require.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestScrapePortraitURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wiki/Marie_Curie", r.URL.Path)
		fmt.Fprint(w, `<html><head>
			<meta property="og:image" content="https://upload.example/portrait.jpg"/>
		</head><body></body></html>`)
	})

	url := client.ScrapePortraitURL(context.Background(), "Marie_Curie")
	require.Equal(t, "https://upload.example/portrait.jpg", url)
}

func TestScrapePortraitURLSoftFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	require.Equal(t, "", client.ScrapePortraitURL(context.Background(), "Nobody"))

	client, _ = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head><body>no og tags</body></html>`)
	})
	require.Equal(t, "", client.ScrapePortraitURL(context.Background(), "Nobody"))
}

type fakeCache struct {
	store map[string][]byte
	sets  int
}

// Get always misses; the Set assertions cover the write path.
func (f *fakeCache) Get(_ context.Context, _ string, _ any) (bool, error) {
	return false, nil
}

func (f *fakeCache) Set(_ context.Context, key string, _ any, _ time.Duration) error {
	if f.store == nil {
		f.store = map[string][]byte{}
	}
	f.store[key] = []byte("cached")
	f.sets++
	return nil
}

func TestFetchArticleWritesCache(t *testing.T) {
	c := &fakeCache{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query": {"pages": {"1": {"pageid": 1, "title": "X", "extract": "X."}}}}`)
	}))
	t.Cleanup(ts.Close)

	client := NewClient(Config{
		APIBaseURL: ts.URL,
		UserAgent:  "test-agent",
		ThumbSize:  600,
		CacheTTL:   time.Minute,
	}, ts.Client(), c, zap.NewNop())

	_, err := client.FetchArticle(context.Background(), "X")
	require.NoError(t, err)
	require.Equal(t, 1, c.sets)
	require.Contains(t, c.store, "wiki:summary:X")
}
