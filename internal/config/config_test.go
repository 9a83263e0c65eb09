package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "ko-KR", cfg.TMDB.Language)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, 4.0, cfg.Journal.LikedThreshold)
	assert.Equal(t, 500, cfg.Recommend.MinVoteCount)
	assert.Equal(t, 10, cfg.Recommend.Limit)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "APP_SECRET", "LOG_FORMAT", "DB_DRIVER", "DB_PATH",
		"TMDB_API_KEY", "TMDB_LANGUAGE", "KOBIS_API_KEY", "PROVIDER_TIMEOUT_SECONDS",
		"RATING_MIN", "RATING_MAX", "RATING_STEP", "LIKED_THRESHOLD",
		"RECOMMEND_MIN_VOTES", "RECOMMEND_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadPostgresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "films")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSLMODE", "")

	cfg := Load()
	assert.Equal(t, "postgres://u:p@db:5432/films?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadRatingScaleAndThreshold(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATING_MIN", "0")
	t.Setenv("RATING_MAX", "10")
	t.Setenv("RATING_STEP", "1")

	cfg := Load()
	assert.Equal(t, 7.5, cfg.Journal.LikedThreshold)

	t.Setenv("LIKED_THRESHOLD", "8")
	assert.Equal(t, 8.0, Load().Journal.LikedThreshold)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	cfg.TMDB.APIKey = "k"
	cfg.KOBIS.APIKey = "k"
	cfg.Env = "production"
	warnings, err = cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 1, "production without APP_SECRET")

	bad := *cfg
	bad.Journal.RatingScale.Step = 0
	_, err = bad.Validate()
	assert.Error(t, err)

	bad = *cfg
	bad.Journal.LikedThreshold = 6
	_, err = bad.Validate()
	assert.Error(t, err)

	bad = *cfg
	bad.DBDriver = "mysql"
	_, err = bad.Validate()
	assert.Error(t, err)
}
