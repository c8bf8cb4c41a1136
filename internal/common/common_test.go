package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SCRAPE_URL", "")
	t.Setenv("NAV_TIMEOUT", "")
	t.Setenv("RENDER_MODE", "")

	cfg := LoadConfig()
	assert.NotEmpty(t, cfg.Scrape.URL)
	assert.Equal(t, 25, cfg.Scrape.WindowLines)
	assert.Equal(t, 10, cfg.Scrape.SkipLines)
	assert.Equal(t, 120*time.Second, cfg.Browser.NavTimeout)
	assert.Equal(t, 3, cfg.Browser.ExpandPasses)
	assert.Equal(t, "browser", cfg.Browser.Mode)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("WINDOW_LINES", "30")
	t.Setenv("EXPAND_DELAY", "250ms")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("WORKERS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 30, cfg.Scrape.WindowLines)
	assert.Equal(t, 250*time.Millisecond, cfg.Browser.ExpandDelay)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2, cfg.Worker.Workers)
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Browser.Mode = "carrier-pigeon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "CONFIG_ERROR", Code(err))

	cfg = LoadConfig()
	cfg.Database.DSN = ""
	assert.ErrorIs(t, cfg.ValidateDaemon(), ErrInvalidInput)

	cfg.SMTP.Server = ""
	assert.Error(t, cfg.ValidateSMTP())
}

func TestExtractorOptions(t *testing.T) {
	opts := ScrapeConfig{WindowLines: 25, SkipLines: 0}.ExtractorOptions()
	assert.Equal(t, offers.NoSkip, opts.SkipLines)

	opts = ScrapeConfig{WindowLines: 20, SkipLines: 4}.ExtractorOptions()
	assert.Equal(t, offers.Options{WindowLines: 20, SkipLines: 4}, opts)
}

func TestAppError(t *testing.T) {
	err := WrapError(NewAppError("DB", "insert failed", ErrDatabase), "save run")
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Equal(t, "DB", Code(err))
	assert.Equal(t, "save run: DB: insert failed: database error", err.Error())
	assert.Nil(t, WrapError(nil, "noop"))
	assert.True(t, IsNotFound(WrapError(ErrNotFound, "run")))
	assert.Equal(t, "", Code(errors.New("plain")))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("name", " ", Required).
		Field("email", "not-an-email", Required, Email).
		Field("age", 17, IntRange(18, 70)).
		Field("note", "abcdef", MaxLength(3))

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 4)
	assert.ErrorIs(t, v.Error(), ErrValidation)

	ok := NewValidator().
		Field("name", "Asha", Required).
		Field("email", "asha@example.com", Email).
		Field("age", 30, IntRange(18, 70))
	assert.NoError(t, ok.Error())
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithTraceID(WithRunID(context.Background(), "run-1"), "trace-1")
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	assert.Equal(t, "trace-1", TraceIDFromContext(ctx))
	assert.NotNil(t, LoggerFromContext(ctx, nil))

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.NotNil(t, LoggerFromContext(WithLogger(ctx, custom), nil))
}
