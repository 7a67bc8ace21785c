// Package session tracks the browsing contexts of one scraping run: a
// primary tab that lives for the whole run and at most one secondary tab
// opened for a single shelf or book.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"grshelves/internal/dom"
)

var (
	// ErrContextBusy is returned by Open while a secondary context is still open.
	ErrContextBusy = errors.New("session: secondary context already open")
	// ErrUnknownHandle is returned by Close for a handle that is not the open one.
	ErrUnknownHandle = errors.New("session: unknown context handle")
)

// Primary is the index of the context opened by New.
const Primary = 0

// Handle identifies a secondary context returned by Open.
type Handle struct {
	id   int
	page dom.Page
}

// Page returns the browsing context behind the handle.
func (h Handle) Page() dom.Page {
	return h.page
}

// ID returns the creation-order number of the context.
func (h Handle) ID() int {
	return h.id
}

// Hooks are optional callbacks fired on context lifecycle events.
type Hooks struct {
	Opened func()
	Closed func()
}

// Session owns the primary browsing context and the single secondary one.
type Session struct {
	driver    dom.Driver
	primary   dom.Page
	secondary *Handle
	focused   int
	created   int
	hooks     Hooks
	logger    *slog.Logger
}

// New opens the primary context.
func New(driver dom.Driver, logger *slog.Logger, hooks Hooks) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	page, err := driver.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open primary context: %w", err)
	}
	return &Session{
		driver:  driver,
		primary: page,
		focused: Primary,
		hooks:   hooks,
		logger:  logger,
	}, nil
}

// Primary returns the context opened by New.
func (s *Session) Primary() dom.Page {
	return s.primary
}

// Focused returns the creation-order number of the focused context. The
// primary context is always Primary.
func (s *Session) Focused() int {
	return s.focused
}

// Current returns the focused context.
func (s *Session) Current() dom.Page {
	if s.secondary != nil && s.focused == s.secondary.id {
		return s.secondary.page
	}
	return s.primary
}

// Secondary reports whether a secondary context is open.
func (s *Session) Secondary() bool {
	return s.secondary != nil
}

// Open creates a secondary context, focuses it and loads link. If loading
// fails the context is closed again and focus returns to the primary.
func (s *Session) Open(link string) (Handle, error) {
	if s.secondary != nil {
		return Handle{}, ErrContextBusy
	}

	page, err := s.driver.NewPage()
	if err != nil {
		return Handle{}, fmt.Errorf("open context: %w", err)
	}
	s.created++
	h := Handle{id: s.created, page: page}
	s.secondary = &h
	s.focused = h.id
	if s.hooks.Opened != nil {
		s.hooks.Opened()
	}

	if err := page.Activate(); err != nil {
		s.closeQuietly(h)
		return Handle{}, err
	}
	if err := page.Navigate(link); err != nil {
		s.closeQuietly(h)
		return Handle{}, err
	}

	s.logger.Debug("context opened", slog.Int("context", h.id), slog.String("url", link))
	return h, nil
}

// Close closes the secondary context named by h and focuses the primary. If
// the context cannot be closed it stays registered and focused, and Open
// keeps failing with ErrContextBusy.
func (s *Session) Close(h Handle) error {
	if s.secondary == nil || s.secondary.id != h.id {
		return ErrUnknownHandle
	}

	if err := h.page.Close(); err != nil {
		return fmt.Errorf("close context %d: %w", h.id, err)
	}

	s.secondary = nil
	s.focused = Primary
	if s.hooks.Closed != nil {
		s.hooks.Closed()
	}

	if err := s.primary.Activate(); err != nil {
		return fmt.Errorf("activate primary context: %w", err)
	}
	s.logger.Debug("context closed", slog.Int("context", h.id))
	return nil
}

// With opens link in a secondary context, runs fn against it and closes the
// context whatever fn returns. A close failure is reported only when fn
// succeeded.
func (s *Session) With(link string, fn func(dom.Page) error) (err error) {
	h, err := s.Open(link)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(h); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(h.page)
}

func (s *Session) closeQuietly(h Handle) {
	if err := s.Close(h); err != nil {
		s.logger.Warn("failed to close context", slog.Int("context", h.id), slog.Any("error", err))
	}
}
