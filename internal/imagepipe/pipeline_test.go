package imagepipe

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploader struct {
	key         string
	data        []byte
	contentType string
	calls       int
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key string, data []byte, contentType string) error {
	f.calls++
	f.key = key
	f.data = data
	f.contentType = contentType
	return f.err
}

func (f *fakeUploader) PublicURL(key string) string {
	return "https://cdn.example/public/" + key
}

func servePNG(t *testing.T, width, height int) *httptest.Server {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestImportReencodesAndBounds(t *testing.T) {
	ts := servePNG(t, 1200, 900)
	uploader := &fakeUploader{}
	pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())

	url := pipeline.Import(context.Background(), ts.URL+"/curie.png", "Marie Curie", Options{MaxDim: 500})

	require.Equal(t, 1, uploader.calls)
	require.Equal(t, "image/jpeg", uploader.contentType)
	require.True(t, strings.HasPrefix(uploader.key, "profiles/"))
	require.Contains(t, uploader.key, "marie-curie")
	require.True(t, strings.HasSuffix(uploader.key, ".jpg"))
	require.Equal(t, "https://cdn.example/public/"+uploader.key, url)

	decoded, err := jpeg.Decode(bytes.NewReader(uploader.data))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	require.LessOrEqual(t, bounds.Dx(), 500)
	require.LessOrEqual(t, bounds.Dy(), 500)
	// Aspect ratio preserved: 1200x900 fit into 500 is 500x375.
	require.Equal(t, 500, bounds.Dx())
	require.Equal(t, 375, bounds.Dy())
}

func TestImportSquareAvatar(t *testing.T) {
	ts := servePNG(t, 800, 1200)
	uploader := &fakeUploader{}
	pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())

	url := pipeline.Import(context.Background(), ts.URL+"/a.png", "Ada Lovelace", Options{MaxDim: 300, SquareAvatar: true})
	require.NotEmpty(t, url)

	decoded, err := jpeg.Decode(bytes.NewReader(uploader.data))
	require.NoError(t, err)
	require.Equal(t, 300, decoded.Bounds().Dx())
	require.Equal(t, 300, decoded.Bounds().Dy())
}

func TestImportSmallImageNotUpscaled(t *testing.T) {
	ts := servePNG(t, 200, 100)
	uploader := &fakeUploader{}
	pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())

	url := pipeline.Import(context.Background(), ts.URL+"/small.png", "Someone", Options{MaxDim: 800})
	require.NotEmpty(t, url)

	decoded, err := jpeg.Decode(bytes.NewReader(uploader.data))
	require.NoError(t, err)
	require.Equal(t, 200, decoded.Bounds().Dx())
	require.Equal(t, 100, decoded.Bounds().Dy())
}

func TestImportRandomSuffixKeysDiffer(t *testing.T) {
	ts := servePNG(t, 100, 100)
	uploader := &fakeUploader{}
	pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())

	_ = pipeline.Import(context.Background(), ts.URL+"/x.png", "Same Name", Options{MaxDim: 100, RandomSuffix: true})
	first := uploader.key
	_ = pipeline.Import(context.Background(), ts.URL+"/x.png", "Same Name", Options{MaxDim: 100, RandomSuffix: true})
	require.NotEqual(t, first, uploader.key)
}

func TestImportSoftFailures(t *testing.T) {
	t.Run("download 404", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(ts.Close)

		uploader := &fakeUploader{}
		pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())
		require.Equal(t, "", pipeline.Import(context.Background(), ts.URL+"/gone.png", "Nobody", Options{}))
		require.Zero(t, uploader.calls)
	})

	t.Run("not an image", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>not an image</html>")
		}))
		t.Cleanup(ts.Close)

		uploader := &fakeUploader{}
		pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())
		require.Equal(t, "", pipeline.Import(context.Background(), ts.URL+"/page.html", "Nobody", Options{}))
		require.Zero(t, uploader.calls)
	})

	t.Run("upload rejected", func(t *testing.T) {
		ts := servePNG(t, 100, 100)
		uploader := &fakeUploader{err: fmt.Errorf("bucket unavailable")}
		pipeline := NewPipeline(uploader, ts.Client(), zap.NewNop())
		require.Equal(t, "", pipeline.Import(context.Background(), ts.URL+"/x.png", "Nobody", Options{}))
		require.Equal(t, 1, uploader.calls)
	})

	t.Run("empty source url", func(t *testing.T) {
		uploader := &fakeUploader{}
		pipeline := NewPipeline(uploader, nil, zap.NewNop())
		require.Equal(t, "", pipeline.Import(context.Background(), "", "Nobody", Options{}))
		require.Zero(t, uploader.calls)
	})
}
