// Package render turns a listing URL into page text: a headless browser for
// the live site, or a plain HTTP fetch flattened to visible text.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/loan-offers/internal/common"
)

// Snapshot is the page content captured by one render.
type Snapshot struct {
	URL        string    `json:"url"`
	Text       string    `json:"text"`
	HTML       string    `json:"html"`
	RenderedAt time.Time `json:"rendered_at"`
	// Pass counts the "see more" expansion passes applied before capture.
	Pass int `json:"pass"`
}

type Renderer interface {
	Render(ctx context.Context, url string) (Snapshot, error)
}

// New picks the renderer for cfg.Mode.
func New(cfg common.BrowserConfig, logger *slog.Logger) (Renderer, error) {
	switch cfg.Mode {
	case "", "browser":
		return NewBrowserRenderer(cfg, logger), nil
	case "http":
		return NewHTTPRenderer(cfg, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown render mode %q", cfg.Mode), common.ErrInvalidInput)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
