package goodreads

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
)

var userIDPattern = regexp.MustCompile(`(\d+)`)

// UserID returns the first run of digits in a profile link.
func UserID(href string) (string, bool) {
	m := userIDPattern.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CollectUserIDs reads user ids from every page of the friends listing open
// on the primary context. Ids keep page order and are not deduplicated.
func (c *Client) CollectUserIDs(ctx context.Context) ([]string, error) {
	page := c.sess.Primary()
	var ids []string

	err := c.walk(ctx, page, "friends", func() error {
		links, err := page.Elements(c.sel.UserLink)
		if err != nil {
			return fmt.Errorf("find user links: %w", err)
		}
		for _, link := range links {
			href, ok, err := link.Attribute("href")
			if err != nil {
				return fmt.Errorf("read user link: %w", err)
			}
			if !ok {
				continue
			}
			if id, ok := UserID(href); ok {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("collected user ids", slog.Int("count", len(ids)))
	return ids, nil
}
