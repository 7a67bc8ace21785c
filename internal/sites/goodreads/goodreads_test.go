package goodreads

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"grshelves/internal/dom"
	"grshelves/internal/dom/domtest"
	"grshelves/internal/model"
)

func TestNextPage(t *testing.T) {
	c, sess, _ := newClient(t, map[string]string{
		"/list?page=1": friendsPage("/list?page=2"),
		"/list?page=2": friendsPage(""),
	}, nil)
	page := sess.Primary()
	require.NoError(t, page.Navigate("/list?page=1"))

	more, err := c.NextPage(page)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, "/list?page=2", page.URL())

	more, err = c.NextPage(page)
	require.NoError(t, err)
	require.False(t, more)
	require.Equal(t, "/list?page=2", page.URL())
}

func TestUserID(t *testing.T) {
	tests := []struct {
		href   string
		want   string
		wantOK bool
	}{
		{"https://www.goodreads.com/user/show/100-alice", "100", true},
		{"/user/show/4812-bob-smith", "4812", true},
		{"/user/show/carol", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := UserID(tt.href)
		require.Equal(t, tt.wantOK, ok, tt.href)
		require.Equal(t, tt.want, got, tt.href)
	}
}

func TestCollectUserIDsSinglePage(t *testing.T) {
	c, sess, _ := newClient(t, map[string]string{
		friendsURL: friendsPage("", "/user/show/100-alice", "/user/show/200-bob"),
	}, nil)
	require.NoError(t, sess.Primary().Navigate(friendsURL))

	ids, err := c.CollectUserIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"100", "200"}, ids)
}

func TestCollectUserIDsPaginates(t *testing.T) {
	c, sess, d := newClient(t, map[string]string{
		friendsURL:       friendsPage("/friend?page=2", "/user/show/100-alice", "/user/show/no-id"),
		"/friend?page=2": friendsPage("/friend?page=3", "/user/show/200-bob", "/user/show/100-alice"),
		"/friend?page=3": friendsPage("", "/user/show/300-carol"),
	}, nil)
	require.NoError(t, sess.Primary().Navigate(friendsURL))

	ids, err := c.CollectUserIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"100", "200", "100", "300"}, ids)
	require.Equal(t, []string{friendsURL, "/friend?page=2", "/friend?page=3"}, d.Visits())
}

func TestCollectUserIDsMaxPages(t *testing.T) {
	c, sess, d := newClient(t, map[string]string{
		friendsURL:       friendsPage("/friend?page=2", "/user/show/100-alice"),
		"/friend?page=2": friendsPage("", "/user/show/200-bob"),
	}, func(o *Options) { o.MaxPages = 1 })
	require.NoError(t, sess.Primary().Navigate(friendsURL))

	ids, err := c.CollectUserIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"100"}, ids)
	require.Len(t, d.Visits(), 1)
}

func TestCollectUserIDsCancelled(t *testing.T) {
	c, sess, _ := newClient(t, map[string]string{
		friendsURL: friendsPage("", "/user/show/100-alice"),
	}, nil)
	require.NoError(t, sess.Primary().Navigate(friendsURL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.CollectUserIDs(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractShelfPage(t *testing.T) {
	c, sess, _ := newClient(t, map[string]string{
		"/shelf": shelfPage("",
			row{"Dune", "Frank Herbert", "it was amazing", "/book/1"},
			row{"Emma", "Jane Austen", "", "/book/2"},
		),
	}, nil)
	page := sess.Primary()
	require.NoError(t, page.Navigate("/shelf"))

	prior := []model.ShelfEntry{{UserID: "1", Title: "Earlier"}}
	got, err := c.ExtractShelfPage(page, "100", prior)
	require.NoError(t, err)

	want := []model.ShelfEntry{
		{UserID: "1", Title: "Earlier"},
		{UserID: "100", Title: "Dune", Author: "Frank Herbert", RatingLabel: "it was amazing", Link: "/book/1"},
		{UserID: "100", Title: "Emma", Author: "Jane Austen", RatingLabel: "", Link: "/book/2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractShelfPageMismatchedColumns(t *testing.T) {
	// second row has no author link
	broken := `<html><body><table><tbody id="booksBody">` +
		shelfRow(1, row{"Dune", "Frank Herbert", "liked it", "/book/1"}) +
		`<tr id="review_2"><td></td><td></td><td></td><td><div><a href="/book/2">Emma</a></div></td></tr>` +
		`</tbody></table></body></html>`

	c, sess, _ := newClient(t, map[string]string{"/shelf": broken}, nil)
	page := sess.Primary()
	require.NoError(t, page.Navigate("/shelf"))

	prior := []model.ShelfEntry{{UserID: "7", Title: "Kept"}}
	got, err := c.ExtractShelfPage(page, "100", prior)
	require.NoError(t, err)
	require.Equal(t, prior, got)
}

func TestExtractShelfPageMissingBody(t *testing.T) {
	c, sess, _ := newClient(t, map[string]string{"/shelf": "<html><body><p>private</p></body></html>"}, nil)
	page := sess.Primary()
	require.NoError(t, page.Navigate("/shelf"))

	_, err := c.ExtractShelfPage(page, "100", nil)
	require.ErrorIs(t, err, dom.ErrNotFound)
}

func TestCollectShelves(t *testing.T) {
	c, sess, d := newClient(t, map[string]string{
		shelfURL("100"): shelfPage("/review/list/100?page=2",
			row{"Dune", "Frank Herbert", "it was amazing", "/book/1"},
		),
		"/review/list/100?page=2": shelfPage("",
			row{"Emma", "Jane Austen", "it was ok", "/book/2"},
		),
		shelfURL("200"): shelfPage("",
			row{"Dune", "Frank Herbert", "did not like it", "/book/1"},
		),
	}, nil)

	entries, err := c.CollectShelves(context.Background(), []string{"100", "200"}, shelfURL)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "100", entries[1].UserID)
	require.Equal(t, "Emma", entries[1].Title)
	require.Equal(t, "200", entries[2].UserID)
	require.Equal(t, "did not like it", entries[2].RatingLabel)

	require.Equal(t, 2, d.MaxOpen())
	require.Equal(t, 1, d.Open())
	require.False(t, sess.Secondary())
}

func TestCollectShelvesMissingBodyIsFatal(t *testing.T) {
	c, sess, d := newClient(t, map[string]string{
		shelfURL("100"): "<html><body>This profile is private</body></html>",
	}, nil)

	_, err := c.CollectShelves(context.Background(), []string{"100"}, shelfURL)
	require.ErrorIs(t, err, dom.ErrNotFound)
	require.Equal(t, 1, d.Open())
	require.False(t, sess.Secondary())
}

func TestLogin(t *testing.T) {
	c, sess, _ := newClient(t, map[string]string{
		signInURL: signInPage,
		"/home":   "<html><body>home</body></html>",
	}, nil)

	err := c.Login(signInURL, model.Credential{Email: "reader@example.com", Password: "hunter2"})
	require.NoError(t, err)
	require.Equal(t, "/home", sess.Primary().URL())

	page := sess.Primary().(*domtest.Page)
	require.Equal(t, "reader@example.com", page.Input("user_email"))
	require.Equal(t, "hunter2", page.Input("user_password"))
}

func TestLoginMissingField(t *testing.T) {
	c, _, _ := newClient(t, map[string]string{
		signInURL: `<html><body><form><input id="user_email"></form></body></html>`,
	}, nil)

	err := c.Login(signInURL, model.Credential{Email: "reader@example.com", Password: "hunter2"})
	require.ErrorIs(t, err, dom.ErrNotFound)
	require.ErrorContains(t, err, "password")
}
