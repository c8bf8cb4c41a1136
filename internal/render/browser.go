package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/joseph-ayodele/loan-offers/internal/common"
)

// expandScript clicks every element whose text mentions "see more" and
// returns how many were clicked.
const expandScript = `() => {
	const nodes = Array.from(document.querySelectorAll("button, a, span, div"));
	const targets = nodes.filter((el) =>
		typeof el.click === "function" &&
		el.getClientRects().length > 0 &&
		(el.textContent || "").trim().toLowerCase().includes("see more"));
	targets.forEach((el) => { try { el.click(); } catch (e) {} });
	return targets.length;
}`

// BrowserRenderer drives Chrome through the DevTools protocol.
type BrowserRenderer struct {
	cfg    common.BrowserConfig
	logger *slog.Logger

	// OnSnapshot, when set, receives an intermediate snapshot after every
	// expansion pass.
	OnSnapshot func(Snapshot)
}

func NewBrowserRenderer(cfg common.BrowserConfig, logger *slog.Logger) *BrowserRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserRenderer{cfg: cfg, logger: logger}
}

func (r *BrowserRenderer) Render(ctx context.Context, url string) (Snapshot, error) {
	start := time.Now()
	browser, release, err := r.connect(ctx)
	if err != nil {
		return Snapshot{}, renderError(url, "connect", err)
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return Snapshot{}, renderError(url, "open page", err)
	}
	defer func() { _ = page.Close() }()

	if r.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
			r.logger.Warn("render.browser.user_agent", "err", err)
		}
	}

	nav := page
	if r.cfg.NavTimeout > 0 {
		nav = page.Timeout(r.cfg.NavTimeout)
	}
	if err := nav.Navigate(url); err != nil {
		return Snapshot{}, renderError(url, "navigate", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return Snapshot{}, renderError(url, "wait load", err)
	}
	if err := sleep(ctx, r.cfg.SettleDelay); err != nil {
		return Snapshot{}, renderError(url, "settle", err)
	}

	passes := 0
	for passes < r.cfg.ExpandPasses {
		clicked, err := r.expand(page)
		if err != nil {
			r.logger.Warn("render.browser.expand_failed", "url", url, "pass", passes+1, "err", err)
			break
		}
		passes++
		r.logger.Debug("render.browser.expand", "url", url, "pass", passes, "clicked", clicked)
		if r.OnSnapshot != nil {
			if snap, err := r.capture(page, url, passes); err == nil {
				r.OnSnapshot(snap)
			}
		}
		if clicked == 0 {
			break
		}
		if err := sleep(ctx, r.cfg.ExpandDelay); err != nil {
			return Snapshot{}, renderError(url, "expand", err)
		}
	}
	if err := sleep(ctx, r.cfg.SettleDelay); err != nil {
		return Snapshot{}, renderError(url, "settle", err)
	}

	snap, err := r.capture(page, url, passes)
	if err != nil {
		return Snapshot{}, renderError(url, "capture", err)
	}
	r.logger.Info("render.browser.ok",
		"url", url,
		"passes", passes,
		"text_bytes", len(snap.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

// connect attaches to CHROME_CONTROL_URL when set, otherwise launches a local
// Chrome that release tears down again.
func (r *BrowserRenderer) connect(ctx context.Context) (*rod.Browser, func(), error) {
	if r.cfg.ControlURL != "" {
		browser := rod.New().ControlURL(r.cfg.ControlURL).Context(ctx)
		if err := browser.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connect to chrome: %w", err)
		}
		return browser, func() {}, nil
	}

	l := launcher.New().Context(ctx).Headless(r.cfg.Headless)
	if r.cfg.ChromeBin != "" {
		l = l.Bin(r.cfg.ChromeBin)
	}
	if r.cfg.NoSandbox {
		l = l.Set(flags.Flag("no-sandbox"))
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return browser, func() {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
	}, nil
}

func (r *BrowserRenderer) expand(page *rod.Page) (int, error) {
	res, err := page.Eval(expandScript)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (r *BrowserRenderer) capture(page *rod.Page, url string, pass int) (Snapshot, error) {
	res, err := page.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read text: %w", err)
	}
	doc, err := page.HTML()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read html: %w", err)
	}
	return Snapshot{
		URL:        url,
		Text:       res.Value.Str(),
		HTML:       doc,
		RenderedAt: time.Now().UTC(),
		Pass:       pass,
	}, nil
}

func renderError(url, stage string, err error) error {
	return common.NewAppError("RENDER_ERROR", fmt.Sprintf("%s %s", stage, url), fmt.Errorf("%w: %v", common.ErrRender, err))
}
