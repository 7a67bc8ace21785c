package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"grshelves/internal/dom"
)

// Config controls how the browser process is launched.
type Config struct {
	Headless bool
	ProxyURL string
	Bin      string // Chrome/Chromium executable, empty to let rod find or download one
	// Timeout bounds each navigation including the load event. Zero means
	// no limit beyond the context.
	Timeout time.Duration
}

// Browser wraps a rod.Browser instance and implements dom.Driver.
type Browser struct {
	ctx      context.Context
	browser  *rod.Browser
	launcher *launcher.Launcher
	proxyURL string
	timeout  time.Duration
}

var _ dom.Driver = (*Browser)(nil)

// New launches a browser and connects to it. Pages created from the returned
// Browser are bound to ctx.
func New(ctx context.Context, cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)

	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{
		ctx:      ctx,
		browser:  b,
		launcher: l,
		proxyURL: cfg.ProxyURL,
		timeout:  cfg.Timeout,
	}, nil
}

// ProxyURL returns the proxy the browser was launched with.
func (b *Browser) ProxyURL() string {
	return b.proxyURL
}

// NewPage opens a blank tab in the shared browser context.
func (b *Browser) NewPage() (dom.Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &Page{page: page.Context(b.ctx), timeout: b.timeout}, nil
}

// Close closes the browser and cleans up resources.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
