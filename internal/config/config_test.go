package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_ENDPOINT", "https://storage.example")
	t.Setenv("STORAGE_API_KEY", "secret")
	t.Setenv("POSTGRES_PASSWORD", "hunter2")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://en.wikipedia.org/w/api.php", cfg.Wiki.APIBaseURL)
	require.Equal(t, 600, cfg.Wiki.ThumbSize)
	require.Equal(t, 20, cfg.Wiki.CategoryLimit)
	require.Equal(t, "profile-images", cfg.Storage.Bucket)
	require.Equal(t, time.Second, cfg.Import.Delay)
	require.Equal(t, 800, cfg.Import.ImageMaxDim)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WIKI_THUMB_SIZE", "1200")
	t.Setenv("IMPORT_DELAY_MS", "250")
	t.Setenv("IMPORT_CACHE_ENABLED", "false")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 1200, cfg.Wiki.ThumbSize)
	require.Equal(t, 250*time.Millisecond, cfg.Import.Delay)
	require.False(t, cfg.Import.CacheEnabled)
	require.Equal(t, 5433, cfg.Postgres.Port)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("WIKI_THUMB_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 600, cfg.Wiki.ThumbSize)
}

func TestValidateMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{name: "storage endpoint", unset: "STORAGE_ENDPOINT", want: "STORAGE_ENDPOINT"},
		{name: "storage api key", unset: "STORAGE_API_KEY", want: "STORAGE_API_KEY"},
		{name: "postgres password", unset: "POSTGRES_PASSWORD", want: "POSTGRES_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
