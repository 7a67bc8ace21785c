package browser

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/require"
)

func TestNavigationTimeout(t *testing.T) {
	require.Equal(t, 2*time.Second, navigationTimeout(2*time.Second))
	require.Equal(t, DefaultNavigationTimeout, navigationTimeout(0))
	require.Equal(t, DefaultNavigationTimeout, navigationTimeout(-time.Second))
}

func TestClickWithoutNavigationReturns(t *testing.T) {
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chrome/Chromium installed")
	}

	b, err := New(context.Background(), Config{Headless: true, Bin: bin, Timeout: 2 * time.Second})
	require.NoError(t, err)
	defer b.Close()

	page, err := b.NewPage()
	require.NoError(t, err)
	defer page.Close()

	// a button that only toggles text, so no load event ever follows the click
	doc := `<button id="b" onclick="this.textContent='done'">go</button>`
	require.NoError(t, page.Navigate("data:text/html,"+url.PathEscape(doc)))

	el, err := page.Element("#b", time.Second)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, el.Click())
	require.Less(t, time.Since(start), 10*time.Second)

	text, err := el.Text()
	require.NoError(t, err)
	require.Equal(t, "done", text)
}
