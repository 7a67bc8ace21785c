// Package goodreads scrapes friends' shelves and book pages from Goodreads
// through a signed-in browser session.
package goodreads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"grshelves/internal/config"
	"grshelves/internal/dom"
	"grshelves/internal/metrics"
	"grshelves/internal/model"
	"grshelves/internal/session"
)

// Options configures a Client.
type Options struct {
	Selectors config.Selectors
	// Wait bounds every element lookup that tolerates late rendering.
	Wait time.Duration
	// MaxPages caps each paginated listing; -1 means no cap.
	MaxPages int
	// CacheSize enables a detail cache keyed by book link when positive.
	CacheSize int
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Client runs the scraping steps against one session.
type Client struct {
	sess     *session.Session
	sel      config.Selectors
	wait     time.Duration
	maxPages int
	cache    *lru.Cache[string, model.BookDetail]
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewClient creates a Client bound to sess.
func NewClient(sess *session.Session, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxPages := opts.MaxPages
	if maxPages == 0 {
		maxPages = -1
	}

	c := &Client{
		sess:     sess,
		sel:      opts.Selectors,
		wait:     opts.Wait,
		maxPages: maxPages,
		logger:   logger.With(slog.String("site", "goodreads")),
		metrics:  opts.Metrics,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, model.BookDetail](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create detail cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// NextPage activates the next-page control of page. It returns false, and no
// error, when the control is absent: that is the end of the listing.
func (c *Client) NextPage(page dom.Page) (bool, error) {
	next, err := page.Element(c.sel.NextPage, c.wait)
	if errors.Is(err, dom.ErrNotFound) {
		c.logger.Info("last page reached", slog.String("url", page.URL()))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find next page: %w", err)
	}
	if err := next.Click(); err != nil {
		return false, fmt.Errorf("open next page: %w", err)
	}
	return true, nil
}

// walk calls read once per page of a paginated listing, following the
// next-page control until it disappears or the page cap is hit.
func (c *Client) walk(ctx context.Context, page dom.Page, phase string, read func() error) error {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		c.logger.Debug("reading page", slog.String("phase", phase), slog.Int("page", n), slog.String("url", page.URL()))
		if err := read(); err != nil {
			return err
		}
		c.metrics.IncPage(phase)

		if c.maxPages > 0 && n >= c.maxPages {
			c.logger.Info("page limit reached", slog.String("phase", phase), slog.Int("pages", n))
			return nil
		}

		more, err := c.NextPage(page)
		c.metrics.ObserveDuration(time.Since(start))
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
