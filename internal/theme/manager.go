package theme

import (
	"fmt"
	"log/slog"

	"mash/internal/observable"
	"mash/internal/settings"
)

// Manager owns the currently selected theme. It is layered on a settings
// store that it shares with other consumers, and keeps the in-memory
// selection and the stored value under Key in step.
//
// Like the store, a Manager belongs to a single owner (the UI thread).
type Manager struct {
	store    settings.Store
	current  *observable.Value[Theme]
	detector SchemeDetector
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithDetector sets how System decides between dark and light.
func WithDetector(d SchemeDetector) Option {
	return func(m *Manager) { m.detector = d }
}

// WithLogger sets the logger for recovered faults.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager and loads the stored theme. Loading never
// fails: a missing key, an unknown identifier or a storage fault all
// leave the Manager on Default.
func NewManager(store settings.Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		detector: DefaultDetector(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current = observable.NewValue(m.load())
	return m
}

func (m *Manager) load() Theme {
	raw, ok, err := m.store.Lookup(Key)
	if err != nil {
		m.logger.Warn("theme: could not read stored theme, using default",
			"domain", m.store.Domain(), "default", Default, "error", err)
		return Default
	}
	if !ok {
		return Default
	}
	t, err := Parse(raw)
	if err != nil {
		m.logger.Debug("theme: ignoring unrecognised stored theme", "value", raw, "default", Default)
		return Default
	}
	return t
}

// Current returns the selected theme.
func (m *Manager) Current() Theme {
	return m.current.Get()
}

// State exposes the selection for observers.
func (m *Manager) State() observable.Readable[Theme] {
	return m.current
}

// Subscribe registers fn to be called synchronously after every change
// made through SelectTheme. It returns an unsubscribe function.
func (m *Manager) Subscribe(fn func(observable.Change[Theme])) func() {
	return m.current.Subscribe(fn)
}

// SelectTheme makes t the current theme and persists it under Key.
//
// Unknown themes are rejected with ErrUnknownTheme before anything
// changes. Otherwise the in-memory selection changes (and observers are
// notified) first, then the store is written. A failed write is returned
// without rolling back the in-memory selection; selecting the same theme
// again retries the write.
func (m *Manager) SelectTheme(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, string(t))
	}
	m.current.Set(t)
	if err := m.store.PutString(Key, t.String()); err != nil {
		m.logger.Warn("theme: could not persist selection", "theme", t, "error", err)
		return err
	}
	return nil
}

// IsDarkTheme reports whether the current theme renders dark. Forced
// variants decide on their own; System asks the host and falls back to
// light when the host does not say.
func (m *Manager) IsDarkTheme() bool {
	switch m.Current().Appearance() {
	case ForceDark:
		return true
	case ForceLight:
		return false
	}
	if m.detector == nil {
		return false
	}
	dark, ok := m.detector.Detect()
	return ok && dark
}

// Palette returns the colours for the current theme.
func (m *Manager) Palette() Palette {
	return m.Current().Palette(m.IsDarkTheme())
}
