// Package browser provides the storefront's navigation targets: a real
// Chromium tab driven over the DevTools protocol, and a logging stand-in.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/storefront"
)

// RodWindow drives a Chromium instance. The first page it opens is the
// shopper's current tab; payment and chat links get tabs of their own.
type RodWindow struct {
	mu         sync.Mutex
	headless   bool
	controlURL string
	homeURL    string
	browser    *rod.Browser
	current    *rod.Page
	logger     *zap.Logger

	// ctx outlives any single call; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// RodOption configures a RodWindow
type RodOption func(*RodWindow)

// WithControlURL connects to an already running browser instead of launching one.
func WithControlURL(u string) RodOption {
	return func(w *RodWindow) { w.controlURL = u }
}

// WithHomeURL sets the page the current tab shows on start.
func WithHomeURL(u string) RodOption {
	return func(w *RodWindow) { w.homeURL = u }
}

// NewRodWindow creates a window; the browser starts on first use.
func NewRodWindow(headless bool, logger *zap.Logger, opts ...RodOption) *RodWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &RodWindow{headless: headless, homeURL: "about:blank", logger: logger}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *RodWindow) ensureStarted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.browser != nil {
		return nil
	}
	if err := w.ctx.Err(); err != nil {
		return fmt.Errorf("browser window closed: %w", err)
	}

	controlURL := w.controlURL
	if controlURL == "" {
		u, err := launcher.New().Headless(w.headless).Leakless(false).Launch()
		if err != nil {
			return fmt.Errorf("launch chromium: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(w.ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to chromium: %w", err)
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: w.homeURL})
	if err != nil {
		_ = b.Close()
		return fmt.Errorf("open storefront tab: %w", err)
	}

	w.browser = b
	w.current = page
	w.logger.Info("Browser connected", zap.String("control_url", controlURL), zap.Bool("headless", w.headless))
	return nil
}

func (w *RodWindow) newPage(ctx context.Context, url string) (*rod.Page, error) {
	if err := w.ensureStarted(ctx); err != nil {
		return nil, err
	}
	w.mu.Lock()
	b := w.browser
	w.mu.Unlock()
	return b.Page(proto.TargetCreateTarget{URL: url})
}

// OpenBlank opens an empty tab; nil means it could not be opened.
func (w *RodWindow) OpenBlank(ctx context.Context) storefront.PendingTab {
	page, err := w.newPage(ctx, "about:blank")
	if err != nil {
		w.logger.Warn("Failed to open blank tab", zap.Error(err))
		return nil
	}
	return &rodTab{page: page}
}

// OpenNew opens url in a new tab.
func (w *RodWindow) OpenNew(ctx context.Context, url string) bool {
	if _, err := w.newPage(ctx, url); err != nil {
		w.logger.Warn("Failed to open tab", zap.String("url", url), zap.Error(err))
		return false
	}
	return true
}

// Navigate sends the storefront tab to url.
func (w *RodWindow) Navigate(ctx context.Context, url string) error {
	if err := w.ensureStarted(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	page := w.current
	w.mu.Unlock()
	return page.Context(ctx).Navigate(url)
}

// Close shuts the browser down.
func (w *RodWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.cancel()
	if w.browser == nil {
		return nil
	}
	err := w.browser.Close()
	w.browser = nil
	w.current = nil
	return err
}

type rodTab struct {
	page *rod.Page
}

func (t *rodTab) Navigate(ctx context.Context, url string) error {
	return t.page.Context(ctx).Navigate(url)
}

func (t *rodTab) Close() error {
	return t.page.Close()
}
