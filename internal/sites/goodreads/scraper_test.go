package goodreads

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"grshelves/internal/dom/domtest"
	"grshelves/internal/metrics"
	"grshelves/internal/model"
)

func TestScrape(t *testing.T) {
	d := domtest.New(map[string]string{
		signInURL:  signInPage,
		"/home":    "<html><body>home</body></html>",
		friendsURL: friendsPage("", "/user/show/100-alice", "/user/show/200-bob"),
		shelfURL("100"): shelfPage("",
			row{"Dune", "Frank Herbert", "it was amazing", "/book/1"},
		),
		shelfURL("200"): shelfPage(""),
		"/book/1": bookPage(book{
			avg: "4.27", ratings: "100", reviews: "10", pages: "412 pages", original: "Dune",
			genres: []string{"Science Fiction", "Classics", "42 users"},
		}),
	})
	m := metrics.New()
	s := NewScraper(testConfig(), nil, m)

	res, err := s.Scrape(context.Background(), d, model.Credential{Email: "reader@example.com", Password: "hunter2"})
	require.NoError(t, err)

	require.Equal(t, []string{"100", "200"}, res.UserIDs)
	require.Len(t, res.Books, 1)

	b := res.Books[0]
	require.Equal(t, "100", b.UserID)
	require.Equal(t, "Dune", b.Title)
	require.Equal(t, "Frank Herbert", b.Author)
	require.Equal(t, model.Some(5), b.Rating)
	require.Equal(t, "/book/1", b.Link)
	require.Equal(t, "Science Fiction,Classics", b.Detail.Genre())
	require.Equal(t, []model.GenreRecord{{Genre: "Science Fiction"}, {Genre: "Classics"}}, res.Genres)

	// primary only, never more than one secondary
	require.Equal(t, 1, d.Open())
	require.Equal(t, 2, d.MaxOpen())
	require.Equal(t, 3.0, testutil.ToFloat64(m.ContextsOpened))
	require.Equal(t, 0.0, testutil.ToFloat64(m.ContextsOpen))
	require.Equal(t, 1.0, testutil.ToFloat64(m.BooksTotal))
}

func TestScrapeLoginFailureIsFatal(t *testing.T) {
	d := domtest.New(map[string]string{signInURL: "<html><body>maintenance</body></html>"})
	s := NewScraper(testConfig(), nil, nil)

	_, err := s.Scrape(context.Background(), d, model.Credential{Email: "a", Password: "b"})
	require.ErrorContains(t, err, "failed to sign in")
}
