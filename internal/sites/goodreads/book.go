package goodreads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grshelves/internal/dom"
	"grshelves/internal/model"
)

// ExtractBook reads the detail of the book page open in page.
//
// The rating statistics and page count are read as one unit: if any of them
// cannot be found, all of them and the original title are left unset. The
// original title is only looked up once that unit succeeded, and its own
// absence leaves just that field unset. A failure listing genre links is
// returned as an error.
func (c *Client) ExtractBook(page dom.Page, link string) (model.BookDetail, error) {
	detail := model.BookDetail{Link: link}

	if err := c.readScalars(page, &detail); err != nil {
		c.logger.Warn("information not found", slog.String("url", link), slog.Any("error", err))
		c.metrics.IncDegraded("book_scalars")
	} else if title, err := c.text(page, c.sel.OrigTitle); err != nil {
		c.logger.Warn("information not found", slog.String("url", link), slog.Any("error", err))
		c.metrics.IncDegraded("original_title")
	} else {
		detail.OriginalTitle = model.Some(title)
	}

	genres, err := c.genres(page)
	if err != nil {
		return detail, fmt.Errorf("read genres of %s: %w", link, err)
	}
	detail.Genres = genres
	return detail, nil
}

func (c *Client) readScalars(page dom.Page, detail *model.BookDetail) error {
	avg, err := c.text(page, c.sel.AvgRating)
	if err != nil {
		return err
	}
	ratings, err := c.attr(page, c.sel.RatingCount, "content")
	if err != nil {
		return err
	}
	reviews, err := c.attr(page, c.sel.ReviewCount, "content")
	if err != nil {
		return err
	}
	pages, err := c.text(page, c.sel.PageCount)
	if err != nil {
		return err
	}

	detail.AverageRating = model.Some(avg)
	detail.TotalRatings = ratings
	detail.TotalReviews = reviews
	detail.NumberOfPages = model.Some(pages)
	return nil
}

// genres returns the genre link texts, dropping the "N users" entries that
// share the same markup.
func (c *Client) genres(page dom.Page) ([]string, error) {
	links, err := page.Elements(c.sel.GenreLink)
	if err != nil {
		return nil, err
	}
	all, err := texts(links)
	if err != nil {
		return nil, err
	}
	return FilterGenres(all, c.sel.GenreExclude), nil
}

// FilterGenres drops every tag containing exclude (case-sensitive). An empty
// exclude keeps everything.
func FilterGenres(tags []string, exclude string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if exclude != "" && strings.Contains(tag, exclude) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func (c *Client) text(page dom.Page, selector string) (string, error) {
	el, err := page.Element(selector, c.wait)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// attr reads an attribute; an element without it yields an unset value.
func (c *Client) attr(page dom.Page, selector, name string) (model.Optional[string], error) {
	el, err := page.Element(selector, c.wait)
	if err != nil {
		return model.Optional[string]{}, err
	}
	v, ok, err := el.Attribute(name)
	if err != nil || !ok {
		return model.Optional[string]{}, err
	}
	return model.Some(v), nil
}

// CollectDetails opens every entry's book in a secondary context, one at a
// time, and joins the detail onto the entry. Genre tags of every entry are
// flattened into the second return value.
func (c *Client) CollectDetails(ctx context.Context, entries []model.ShelfEntry) ([]model.BookRecord, []model.GenreRecord, error) {
	books := make([]model.BookRecord, 0, len(entries))
	var genres []model.GenreRecord

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		detail, err := c.detail(entry.Link, i, len(entries))
		if err != nil {
			return nil, nil, err
		}

		books = append(books, model.BookRecord{ShelfEntry: entry, Detail: detail})
		for _, g := range detail.Genres {
			genres = append(genres, model.GenreRecord{Genre: g})
		}
	}

	return books, genres, nil
}

func (c *Client) detail(link string, i, total int) (model.BookDetail, error) {
	if c.cache != nil {
		if d, ok := c.cache.Get(link); ok {
			c.metrics.IncCacheHit()
			c.logger.Debug("detail cache hit", slog.String("url", link))
			return d, nil
		}
	}

	c.logger.Info("reading book", slog.String("url", link), slog.Int("n", i+1), slog.Int("of", total))

	var detail model.BookDetail
	err := c.sess.With(link, func(page dom.Page) error {
		var err error
		detail, err = c.ExtractBook(page, link)
		return err
	})
	if err != nil {
		return model.BookDetail{}, fmt.Errorf("book %s: %w", link, err)
	}
	c.metrics.IncBooks()
	c.metrics.IncPage("book")

	if c.cache != nil {
		c.cache.Add(link, detail)
	}
	return detail, nil
}
