package goodreads

import (
	"context"
	"fmt"
	"log/slog"

	"grshelves/internal/config"
	"grshelves/internal/dom"
	"grshelves/internal/metrics"
	"grshelves/internal/model"
	"grshelves/internal/session"
)

// Scraper runs the whole pipeline: sign in, collect friends, read their
// shelves, normalize ratings and read every book's page.
type Scraper struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewScraper creates a Scraper. logger and m may be nil.
func NewScraper(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{cfg: cfg, logger: logger, metrics: m}
}

// Scrape drives driver through the pipeline with cred. Steps run strictly in
// sequence on a single session; at most one secondary context is open at any
// time.
func (s *Scraper) Scrape(ctx context.Context, driver dom.Driver, cred model.Credential) (*model.Result, error) {
	sess, err := session.New(driver, s.logger, session.Hooks{
		Opened: s.metrics.ContextOpened,
		Closed: s.metrics.ContextClosed,
	})
	if err != nil {
		return nil, err
	}

	client, err := NewClient(sess, Options{
		Selectors: s.cfg.Selectors,
		Wait:      s.cfg.Wait,
		MaxPages:  s.cfg.MaxPages,
		CacheSize: s.cfg.CacheSize,
		Logger:    s.logger,
		Metrics:   s.metrics,
	})
	if err != nil {
		return nil, err
	}

	if err := client.Login(s.cfg.SignInURL, cred); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if err := client.OpenFriends(s.cfg.FriendsURL); err != nil {
		return nil, err
	}

	ids, err := client.CollectUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect user ids: %w", err)
	}

	entries, err := client.CollectShelves(ctx, ids, s.cfg.ShelfLink)
	if err != nil {
		return nil, fmt.Errorf("failed to collect shelves: %w", err)
	}

	unmapped := NormalizeRatings(entries, s.logger)
	s.metrics.AddUnmapped(unmapped)

	books, genres, err := client.CollectDetails(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to collect book details: %w", err)
	}

	return &model.Result{UserIDs: ids, Books: books, Genres: genres, Unmapped: unmapped}, nil
}
