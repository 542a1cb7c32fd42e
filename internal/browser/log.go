package browser

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/storefront"
)

// Visit is one navigation recorded by a LogWindow.
type Visit struct {
	Target string // "pending_tab", "new_tab" or "current_tab"
	URL    string
}

// LogWindow records navigations instead of performing them. It is used
// where no browser is available (CI, the checkout command).
type LogWindow struct {
	mu          sync.Mutex
	blockPopups bool
	visits      []Visit
	logger      *zap.Logger
}

// NewLogWindow creates a LogWindow. With blockPopups set every new tab is
// refused, as a strict popup blocker would.
func NewLogWindow(blockPopups bool, logger *zap.Logger) *LogWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogWindow{blockPopups: blockPopups, logger: logger}
}

func (w *LogWindow) record(target, url string) {
	w.mu.Lock()
	w.visits = append(w.visits, Visit{Target: target, URL: url})
	w.mu.Unlock()
	w.logger.Info("Navigate", zap.String("target", target), zap.String("url", url))
}

func (w *LogWindow) OpenBlank(context.Context) storefront.PendingTab {
	if w.blockPopups {
		w.logger.Info("Blank tab blocked")
		return nil
	}
	return &logTab{window: w}
}

func (w *LogWindow) OpenNew(_ context.Context, url string) bool {
	if w.blockPopups {
		w.logger.Info("New tab blocked", zap.String("url", url))
		return false
	}
	w.record(string(storefront.RedirectNewTab), url)
	return true
}

func (w *LogWindow) Navigate(_ context.Context, url string) error {
	w.record(string(storefront.RedirectCurrentTab), url)
	return nil
}

// Visits returns the recorded navigations in order.
func (w *LogWindow) Visits() []Visit {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Visit(nil), w.visits...)
}

type logTab struct {
	window *LogWindow
	closed bool
}

func (t *logTab) Navigate(_ context.Context, url string) error {
	t.window.record(string(storefront.RedirectPendingTab), url)
	return nil
}

func (t *logTab) Close() error {
	if !t.closed {
		t.closed = true
		t.window.logger.Debug("Pending tab closed")
	}
	return nil
}
