package goodreads

import (
	"context"
	"fmt"
	"log/slog"

	"grshelves/internal/dom"
	"grshelves/internal/model"
)

// ExtractShelfPage appends the rows of the shelf page open in page to prior.
//
// A missing table body is an error. Any failure reading the columns inside
// it, including columns of unequal length, is logged and prior is returned
// unchanged: the page contributes no rows and the run goes on.
func (c *Client) ExtractShelfPage(page dom.Page, userID string, prior []model.ShelfEntry) ([]model.ShelfEntry, error) {
	body, err := page.Element(c.sel.ShelfBody, c.wait)
	if err != nil {
		return prior, fmt.Errorf("find shelf table: %w", err)
	}

	rows, err := c.readShelfRows(body, userID)
	if err != nil {
		c.logger.Warn("information not found",
			slog.String("user", userID),
			slog.String("url", page.URL()),
			slog.Any("error", err),
		)
		c.metrics.IncDegraded("shelf")
		return prior, nil
	}

	c.metrics.AddRows(len(rows))
	return append(prior, rows...), nil
}

func (c *Client) readShelfRows(body dom.Element, userID string) ([]model.ShelfEntry, error) {
	titleLinks, err := body.Elements(c.sel.ShelfTitle)
	if err != nil {
		return nil, err
	}
	titles, err := texts(titleLinks)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}

	authorLinks, err := body.Elements(c.sel.ShelfAuthor)
	if err != nil {
		return nil, err
	}
	authors, err := texts(authorLinks)
	if err != nil {
		return nil, fmt.Errorf("authors: %w", err)
	}

	ratingSpans, err := body.Elements(c.sel.ShelfRating)
	if err != nil {
		return nil, err
	}
	ratings, err := attributes(ratingSpans, "title")
	if err != nil {
		return nil, fmt.Errorf("ratings: %w", err)
	}

	links, err := attributes(titleLinks, "href")
	if err != nil {
		return nil, fmt.Errorf("links: %w", err)
	}

	if len(authors) != len(titles) || len(ratings) != len(titles) {
		return nil, fmt.Errorf("column lengths differ: %d titles, %d authors, %d ratings",
			len(titles), len(authors), len(ratings))
	}

	rows := make([]model.ShelfEntry, 0, len(titles))
	for i := range titles {
		rows = append(rows, model.ShelfEntry{
			UserID:      userID,
			Title:       titles[i],
			Author:      authors[i],
			RatingLabel: ratings[i],
			Link:        links[i],
		})
	}
	return rows, nil
}

// CollectShelves reads the shelf of every user, each in its own secondary
// context that is closed before the next one opens.
func (c *Client) CollectShelves(ctx context.Context, userIDs []string, shelfLink func(string) string) ([]model.ShelfEntry, error) {
	var entries []model.ShelfEntry

	for i, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		link := shelfLink(id)
		c.logger.Info("reading shelf",
			slog.String("user", id),
			slog.Int("n", i+1),
			slog.Int("of", len(userIDs)),
		)

		err := c.sess.With(link, func(page dom.Page) error {
			return c.walk(ctx, page, "shelf", func() error {
				var err error
				entries, err = c.ExtractShelfPage(page, id, entries)
				return err
			})
		})
		if err != nil {
			return nil, fmt.Errorf("shelf of user %s: %w", id, err)
		}
	}

	return entries, nil
}

func texts(els []dom.Element) ([]string, error) {
	out := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// attributes reads name from every element; a missing attribute reads as "".
func attributes(els []dom.Element, name string) ([]string, error) {
	out := make([]string, 0, len(els))
	for _, el := range els {
		v, _, err := el.Attribute(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
