package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joseph-ayodele/loan-offers/internal/common"
)

// HTTPRenderer fetches static HTML without running scripts. Content that the
// page loads or expands client-side is missed.
type HTTPRenderer struct {
	client *resty.Client
	logger *slog.Logger
}

func NewHTTPRenderer(cfg common.BrowserConfig, logger *slog.Logger) *HTTPRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New()
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	if cfg.HTTPTimeout > 0 {
		client.SetTimeout(cfg.HTTPTimeout)
	}
	if cfg.HTTPRetries > 0 {
		client.SetRetryCount(cfg.HTTPRetries).
			SetRetryWaitTime(500 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			})
	}
	return &HTTPRenderer{client: client, logger: logger}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) (Snapshot, error) {
	start := time.Now()
	res, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Snapshot{}, common.NewAppError("RENDER_ERROR", fmt.Sprintf("fetch %s", url), fmt.Errorf("%w: %v", common.ErrRender, err))
	}
	if res.IsError() {
		return Snapshot{}, common.NewAppError("RENDER_ERROR", fmt.Sprintf("fetch %s: status %d", url, res.StatusCode()), common.ErrRender)
	}

	doc := res.String()
	text, err := VisibleText(doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", common.ErrRender, err)
	}
	r.logger.Info("render.http.ok",
		"url", url,
		"status", res.StatusCode(),
		"bytes", len(doc),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Snapshot{URL: url, Text: text, HTML: doc, RenderedAt: time.Now().UTC()}, nil
}
