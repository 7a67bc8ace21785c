package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"grshelves/internal/dom"
)

// DefaultNavigationTimeout bounds waiting for a click's navigation when no
// page timeout is configured.
const DefaultNavigationTimeout = 30 * time.Second

// Page adapts a rod.Page to dom.Page.
type Page struct {
	page    *rod.Page
	timeout time.Duration
}

var _ dom.Page = (*Page)(nil)

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(url string) error {
	page := p.page
	if p.timeout > 0 {
		page = page.Timeout(p.timeout)
		defer page.CancelTimeout()
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// URL returns the current location, or an empty string when it cannot be read.
func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Element polls for selector until it appears or wait elapses.
func (p *Page) Element(selector string, wait time.Duration) (dom.Element, error) {
	if wait <= 0 {
		has, el, err := p.page.Has(selector)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", selector, err)
		}
		if !has {
			return nil, fmt.Errorf("%q: %w", selector, dom.ErrNotFound)
		}
		return &Element{el: el, page: p.page, timeout: p.timeout}, nil
	}

	el, err := p.page.Timeout(wait).Element(selector)
	if err != nil {
		return nil, classify(selector, err)
	}
	return &Element{el: el.CancelTimeout(), page: p.page, timeout: p.timeout}, nil
}

// Elements returns every element currently matching selector.
func (p *Page) Elements(selector string) ([]dom.Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrap(els, p.page, p.timeout), nil
}

// Activate brings the tab to the foreground.
func (p *Page) Activate() error {
	if _, err := p.page.Activate(); err != nil {
		return fmt.Errorf("failed to activate page: %w", err)
	}
	return nil
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// Element adapts a rod.Element to dom.Element.
type Element struct {
	el      *rod.Element
	page    *rod.Page
	timeout time.Duration
}

var _ dom.Element = (*Element)(nil)

func (e *Element) Text() (string, error) {
	return e.el.Text()
}

func (e *Element) Attribute(name string) (string, bool, error) {
	if name == "href" {
		// the href property is resolved against the document base
		prop, err := e.el.Property(name)
		if err != nil {
			return "", false, err
		}
		if prop.Nil() {
			return "", false, nil
		}
		return prop.String(), true, nil
	}

	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *Element) Input(text string) error {
	return e.el.Input(text)
}

// Click waits for the load event the click triggers, for at most the page
// timeout. A click that loads nothing returns once that timeout elapses.
func (e *Element) Click() error {
	page := e.page.Timeout(navigationTimeout(e.timeout))
	defer page.CancelTimeout()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click: %w", err)
	}
	wait()
	return nil
}

// navigationTimeout is the bound for waiting on a navigation. Without a
// configured timeout it falls back to DefaultNavigationTimeout.
func navigationTimeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return DefaultNavigationTimeout
}

func (e *Element) Elements(selector string) ([]dom.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrap(els, e.page, e.timeout), nil
}

func wrap(els rod.Elements, page *rod.Page, timeout time.Duration) []dom.Element {
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el, page: page, timeout: timeout})
	}
	return out
}

func classify(selector string, err error) error {
	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return fmt.Errorf("%q: %w", selector, dom.ErrNotFound)
	}
	return fmt.Errorf("query %q: %w", selector, err)
}
