// Package domtest provides an in-memory dom.Driver backed by static HTML
// documents, for exercising scraping code without a browser.
package domtest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"grshelves/internal/dom"
)

// Driver serves pages from a map of URL to HTML. Forms are not submitted:
// clicking an element navigates to its href, or to the action of the
// enclosing form.
type Driver struct {
	mu      sync.Mutex
	site    map[string]string
	pages   []*Page
	visits  []string
	maxOpen int
}

var _ dom.Driver = (*Driver)(nil)

// New returns a Driver serving site.
func New(site map[string]string) *Driver {
	return &Driver{site: site}
}

// NewPage opens a blank tab.
func (d *Driver) NewPage() (dom.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := &Page{driver: d, url: "about:blank", inputs: map[string]string{}}
	p.doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	d.pages = append(d.pages, p)
	if n := d.openLocked(); n > d.maxOpen {
		d.maxOpen = n
	}
	return p, nil
}

// Open reports how many tabs are currently open.
func (d *Driver) Open() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openLocked()
}

// MaxOpen reports the largest number of tabs that were open at once.
func (d *Driver) MaxOpen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxOpen
}

// Visits returns every URL navigated to, in order.
func (d *Driver) Visits() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.visits...)
}

// Pages returns every tab ever opened, closed ones included.
func (d *Driver) Pages() []*Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Page(nil), d.pages...)
}

func (d *Driver) openLocked() int {
	n := 0
	for _, p := range d.pages {
		if !p.closed {
			n++
		}
	}
	return n
}

func (d *Driver) load(url string) (*goquery.Document, error) {
	d.mu.Lock()
	html, ok := d.site[url]
	d.visits = append(d.visits, url)
	d.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no such page: %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Page is a single in-memory tab.
type Page struct {
	driver *Driver
	url    string
	doc    *goquery.Document
	inputs map[string]string
	active bool
	closed bool
}

var _ dom.Page = (*Page)(nil)

func (p *Page) Navigate(url string) error {
	if p.closed {
		return fmt.Errorf("page closed")
	}
	doc, err := p.driver.load(url)
	if err != nil {
		return err
	}
	p.url = url
	p.doc = doc
	return nil
}

func (p *Page) URL() string {
	return p.url
}

// Element ignores wait: static documents never change.
func (p *Page) Element(selector string, _ time.Duration) (dom.Element, error) {
	if p.closed {
		return nil, fmt.Errorf("page closed")
	}
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%q: %w", selector, dom.ErrNotFound)
	}
	return &Element{sel: sel, page: p}, nil
}

func (p *Page) Elements(selector string) ([]dom.Element, error) {
	if p.closed {
		return nil, fmt.Errorf("page closed")
	}
	return wrap(p.doc.Find(selector), p), nil
}

func (p *Page) Activate() error {
	if p.closed {
		return fmt.Errorf("page closed")
	}
	p.driver.mu.Lock()
	for _, other := range p.driver.pages {
		other.active = false
	}
	p.active = true
	p.driver.mu.Unlock()
	return nil
}

func (p *Page) Close() error {
	p.driver.mu.Lock()
	defer p.driver.mu.Unlock()
	if p.closed {
		return fmt.Errorf("page already closed")
	}
	p.closed = true
	p.active = false
	return nil
}

// Active reports whether the tab was the last one activated.
func (p *Page) Active() bool {
	p.driver.mu.Lock()
	defer p.driver.mu.Unlock()
	return p.active
}

// Closed reports whether the tab has been closed.
func (p *Page) Closed() bool {
	p.driver.mu.Lock()
	defer p.driver.mu.Unlock()
	return p.closed
}

// Input returns what was typed into the element with the given id or name.
func (p *Page) Input(key string) string {
	return p.inputs[key]
}

// Element is a node of a static document.
type Element struct {
	sel  *goquery.Selection
	page *Page
}

var _ dom.Element = (*Element)(nil)

func (e *Element) Text() (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *Element) Input(text string) error {
	key, ok := e.sel.Attr("id")
	if !ok {
		key, ok = e.sel.Attr("name")
	}
	if !ok {
		return fmt.Errorf("input has neither id nor name")
	}
	e.page.inputs[key] += text
	return nil
}

func (e *Element) Click() error {
	if href, ok := e.sel.Attr("href"); ok {
		return e.page.Navigate(href)
	}
	if action, ok := e.sel.Closest("form").Attr("action"); ok {
		return e.page.Navigate(action)
	}
	return nil
}

func (e *Element) Elements(selector string) ([]dom.Element, error) {
	return wrap(e.sel.Find(selector), e.page), nil
}

func wrap(sel *goquery.Selection, page *Page) []dom.Element {
	out := make([]dom.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{sel: s, page: page})
	})
	return out
}
