// Package dom describes the browser capability the scraper needs: browsing
// contexts that can be navigated and queried with CSS selectors.
package dom

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a selector matches nothing within the wait window.
var ErrNotFound = errors.New("element not found")

// Element is a single node in a browsing context.
type Element interface {
	Text() (string, error)
	// Attribute returns the attribute value and whether it was present.
	// For "href" the resolved absolute link is returned.
	Attribute(name string) (string, bool, error)
	Input(text string) error
	// Click activates the element and waits for any navigation it triggers.
	Click() error
	Elements(selector string) ([]Element, error)
}

// Page is one browsing context (a tab).
type Page interface {
	Navigate(url string) error
	URL() string
	// Element waits up to wait for selector to appear. A zero wait checks once.
	Element(selector string, wait time.Duration) (Element, error)
	// Elements returns every current match without waiting.
	Elements(selector string) ([]Element, error)
	Activate() error
	Close() error
}

// Driver opens browsing contexts that share one browser session (cookies
// included).
type Driver interface {
	NewPage() (Page, error)
}
