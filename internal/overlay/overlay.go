// Package overlay tracks which storefront overlays are open.
//
// Each overlay is either closed or open. Opening one clears its aria-hidden
// flag and locks page scroll; closing one sets the flag again and blurs focus
// when it sits inside the overlay. Several overlays may be open at once; the
// scroll lock is held while any of them is.
package overlay

import (
	"sync"

	"go.uber.org/zap"
)

// ID names an overlay.
type ID string

const (
	ProductDetail ID = "productModal"
	Checkout      ID = "checkoutModal"
	Drawer        ID = "cartDrawer"
)

// All lists the overlays in the order Escape closes them.
var All = []ID{ProductDetail, Checkout, Drawer}

// Manager is the overlay visibility state machine.
type Manager struct {
	mu     sync.Mutex
	open   map[ID]bool
	focus  ID
	logger *zap.Logger
}

// NewManager returns a manager with every overlay closed.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		open:   make(map[ID]bool),
		logger: logger,
	}
}

// Open shows an overlay. Opening an open overlay is a no-op.
func (m *Manager) Open(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open[id] {
		return
	}
	m.open[id] = true
	m.logger.Debug("Overlay opened", zap.String("overlay", string(id)))
}

// Close hides an overlay and reports whether it was open.
func (m *Manager) Close(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked(id)
}

func (m *Manager) closeLocked(id ID) bool {
	if !m.open[id] {
		return false
	}
	if m.focus == id {
		m.focus = ""
	}
	delete(m.open, id)
	m.logger.Debug("Overlay closed", zap.String("overlay", string(id)))
	return true
}

// Escape closes every open overlay and returns the ones it closed.
func (m *Manager) Escape() []ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var closed []ID
	for _, id := range All {
		if m.closeLocked(id) {
			closed = append(closed, id)
		}
	}
	return closed
}

func (m *Manager) IsOpen(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[id]
}

// AriaHidden mirrors the overlay's aria-hidden attribute.
func (m *Manager) AriaHidden(id ID) bool {
	return !m.IsOpen(id)
}

// ScrollLocked reports whether page scroll is suppressed.
func (m *Manager) ScrollLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open) > 0
}

// OpenOverlays lists the open overlays in Escape order.
func (m *Manager) OpenOverlays() []ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ID
	for _, id := range All {
		if m.open[id] {
			out = append(out, id)
		}
	}
	return out
}

// Focus moves focus into an open overlay. Focus requests for a closed
// overlay are ignored.
func (m *Manager) Focus(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open[id] {
		return false
	}
	m.focus = id
	return true
}

// Blur drops focus wherever it is.
func (m *Manager) Blur() {
	m.mu.Lock()
	m.focus = ""
	m.mu.Unlock()
}

// Focused returns the overlay holding focus, or "" when focus is on the page.
func (m *Manager) Focused() ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus
}
