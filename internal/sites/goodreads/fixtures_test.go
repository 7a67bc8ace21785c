package goodreads

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grshelves/internal/config"
	"grshelves/internal/dom/domtest"
	"grshelves/internal/session"
)

const (
	signInURL  = "https://gr.test/user/sign_in"
	friendsURL = "https://gr.test/friend"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.SignInURL = signInURL
	cfg.FriendsURL = friendsURL
	cfg.ShelfURL = "https://gr.test/review/list/{id}?shelf={shelf}"
	cfg.Wait = 10 * time.Millisecond
	return cfg
}

func shelfURL(id string) string {
	return testConfig().ShelfLink(id)
}

const signInPage = `<html><body>
<form action="/home" method="post">
  <input type="email" id="user_email" name="user[email]">
  <input type="password" id="user_password" name="user[password]">
  <input type="submit" name="next" value="Sign in">
</form>
</body></html>`

func friendsPage(next string, hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<tr><td><a class="userLink" href="%s">friend</a></td></tr>`, h)
	}
	b.WriteString("</table>")
	if next != "" {
		fmt.Fprintf(&b, `<a class="next_page" rel="next" href="%s">next »</a>`, next)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type row struct {
	title, author, rating, link string
}

func shelfRow(i int, r row) string {
	cells := make([]string, 14)
	for j := range cells {
		cells[j] = `<td class="field"><div class="value"></div></td>`
	}
	cells[3] = fmt.Sprintf(`<td class="field title"><div class="value"><a href="%s">%s</a></div></td>`, r.link, r.title)
	cells[4] = fmt.Sprintf(`<td class="field author"><div class="value"><a href="/author/%d">%s</a></div></td>`, i, r.author)
	cells[13] = fmt.Sprintf(`<td class="field rating"><div class="value"><span class="staticStars" title="%s"></span></div></td>`, r.rating)
	return fmt.Sprintf(`<tr id="review_%d" class="bookalike review">%s</tr>`, i, strings.Join(cells, ""))
}

func shelfPage(next string, rows ...row) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="books"><tbody id="booksBody">`)
	for i, r := range rows {
		b.WriteString(shelfRow(i+1, r))
	}
	b.WriteString("</tbody></table>")
	if next != "" {
		fmt.Fprintf(&b, `<div id="reviewPagination"><a class="next_page" rel="next" href="%s">next »</a></div>`, next)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type book struct {
	avg, ratings, reviews, pages, original string
	genres                                 []string
	noMeta                                 bool
}

func bookPage(bk book) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if !bk.noMeta {
		fmt.Fprintf(&b, `<div id="bookMeta">
  <span itemprop="ratingValue">%s</span>
  <a class="gr-hyperlink" href="#rating_details">Rating details</a>
  <a class="gr-hyperlink" href="#ratings"><meta itemprop="ratingCount" content="%s">%s ratings</a>
  <a class="gr-hyperlink" href="#reviews"><meta itemprop="reviewCount" content="%s">%s reviews</a>
</div>`, bk.avg, bk.ratings, bk.ratings, bk.reviews, bk.reviews)
		fmt.Fprintf(&b, `<div id="details"><div class="row"><span itemprop="numberOfPages">%s</span></div></div>`, bk.pages)
	}
	b.WriteString(`<div id="bookDataBox">`)
	if bk.original != "" {
		fmt.Fprintf(&b, `<div class="clearFloats"><div class="infoBoxRowTitle">Original Title</div><div class="infoBoxRowItem">%s</div></div>`, bk.original)
	}
	b.WriteString("</div>")
	for _, g := range bk.genres {
		fmt.Fprintf(&b, `<div class="elementList"><a class="actionLinkLite bookPageGenreLink" href="/genres/x">%s</a></div>`, g)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newClient(t *testing.T, site map[string]string, mutate func(*Options)) (*Client, *session.Session, *domtest.Driver) {
	t.Helper()
	d := domtest.New(site)
	sess, err := session.New(d, nil, session.Hooks{})
	require.NoError(t, err)

	opts := Options{
		Selectors: config.DefaultSelectors(),
		Wait:      10 * time.Millisecond,
		MaxPages:  -1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := NewClient(sess, opts)
	require.NoError(t, err)
	return c, sess, d
}
