package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///./test.db")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, 5, cfg.Submission.TrackingCodeAttempts)
	assert.Equal(t, 5, cfg.Submission.MaxImages)
	assert.Equal(t, 10<<20, cfg.Submission.MaxImageBytes)
	assert.Equal(t, 15*time.Second, cfg.Submission.NotifyTimeout)
	assert.False(t, cfg.Storage.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRACKING_CODE_ATTEMPTS", "3")
	t.Setenv("ALLOWED_HOSTS", "https://a.example, https://b.example")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("DEBUG", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Submission.TrackingCodeAttempts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Submission.NotifyTimeout)
	assert.False(t, cfg.App.Debug)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:        AppConfig{Port: "8000"},
			Database:   DatabaseConfig{URL: "sqlite:///x.db"},
			Submission: SubmissionConfig{TrackingCodeAttempts: 5, MaxImages: 5, MaxImageBytes: 1, MaxBodyBytes: 1},
		}
	}

	require.NoError(t, Validate(base()))

	cfg := base()
	cfg.Submission.TrackingCodeAttempts = 0
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Storage = StorageConfig{Enabled: true, Bucket: "inspo"}
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Telegram = TelegramConfig{Enabled: true, BotToken: "token"}
	assert.Error(t, Validate(cfg))
}

func TestDatabaseURLs(t *testing.T) {
	pg := DatabaseConfig{URL: "postgresql://planner:s3cr:et@db.internal:6543/events?sslmode=require"}
	assert.True(t, pg.IsPostgres())
	assert.Equal(t,
		"host=db.internal port=6543 user=planner dbname=events sslmode=require password=s3cr:et",
		pg.GetPostgresDSN())

	dsn := DatabaseConfig{URL: "host=localhost user=planner dbname=events"}
	assert.True(t, dsn.IsPostgres())
	assert.Equal(t, dsn.URL, dsn.GetPostgresDSN())

	lite := DatabaseConfig{URL: "sqlite:///./fasplanners.db"}
	assert.False(t, lite.IsPostgres())
	assert.Equal(t, "./fasplanners.db", lite.GetSQLitePath())
}
