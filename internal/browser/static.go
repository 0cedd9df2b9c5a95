package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/specharvest/helpers"
	crawlerrors "sjsage522/specharvest/pkg/errors"
	"sjsage522/specharvest/services/cache"
)

// FetchFunc fetches a page and returns its UTF-8 body and final URL
type FetchFunc func(ctx context.Context, url string) (io.Reader, string, error)

// StaticBrowser serves views from server-rendered HTML. Scripts never run, so
// Evaluate is unsupported and only link clicks navigate.
type StaticBrowser struct {
	fetch     FetchFunc
	cacheSvc  cache.CacheService
	blockTime time.Duration
}

// NewStaticBrowser creates a static engine. A host that answers 429 is blocked in
// cacheSvc for blockTime (or the server's Retry-After when longer).
func NewStaticBrowser(cacheSvc cache.CacheService, blockTime time.Duration) *StaticBrowser {
	return &StaticBrowser{
		fetch:     helpers.FetchWithRandomHeaders,
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
	}
}

// WithFetch replaces the fetch function
func (b *StaticBrowser) WithFetch(fetch FetchFunc) *StaticBrowser {
	b.fetch = fetch
	return b
}

// NewView returns an empty view at about:blank
func (b *StaticBrowser) NewView(_ context.Context) (View, error) {
	return &staticView{browser: b, location: "about:blank"}, nil
}

// Close is a no-op
func (b *StaticBrowser) Close() error {
	return nil
}

func blockKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "blocked:" + rawURL
	}
	return "blocked:" + u.Host
}

func (b *StaticBrowser) load(ctx context.Context, target string) (*goquery.Document, string, error) {
	key := blockKey(target)
	if b.cacheSvc != nil {
		if _, err := b.cacheSvc.Get(key); err == nil {
			return nil, "", crawlerrors.NewRateLimit(key, b.blockTime)
		}
	}

	body, finalURL, err := b.fetch(ctx, target)
	if err != nil {
		var rl *helpers.RateLimitedError
		if errors.As(err, &rl) {
			block := max(b.blockTime, rl.RetryAfter)
			if b.cacheSvc != nil {
				if cacheErr := b.cacheSvc.Set(key, []byte("1"), block); cacheErr != nil {
					return nil, "", fmt.Errorf("failed to set rate limit block: %w", cacheErr)
				}
			}
			return nil, "", crawlerrors.NewRateLimit(key, block)
		}
		return nil, "", crawlerrors.NewNetwork("load", target, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, "", crawlerrors.NewNavigation("load", "failed to parse "+target, err)
	}
	return doc, finalURL, nil
}

type staticView struct {
	browser  *StaticBrowser
	doc      *goquery.Document
	location string
}

func (v *staticView) Load(ctx context.Context, target string) error {
	doc, finalURL, err := v.browser.load(ctx, target)
	if err != nil {
		return err
	}
	v.doc, v.location = doc, finalURL
	return nil
}

func (v *staticView) WaitForQuiescence(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (v *staticView) Evaluate(context.Context, string, any, any) error {
	return ErrUnsupported
}

func (v *staticView) Query(_ context.Context, selector string) ([]Element, error) {
	if v.doc == nil {
		return nil, nil
	}
	var elements []Element
	v.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &staticElement{view: v, sel: s})
	})
	return elements, nil
}

func (v *staticView) Location(context.Context) (string, error) {
	return v.location, nil
}

func (v *staticView) Title(context.Context) (string, error) {
	if v.doc == nil {
		return "", nil
	}
	return strings.TrimSpace(v.doc.Find("title").First().Text()), nil
}

func (v *staticView) HTML(context.Context) (string, error) {
	if v.doc == nil {
		return "", nil
	}
	return v.doc.Html()
}

func (v *staticView) Close() error {
	v.doc = nil
	return nil
}

type staticElement struct {
	view *staticView
	sel  *goquery.Selection
}

func (e *staticElement) Attr(_ context.Context, name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e *staticElement) InnerText(context.Context) (string, error) {
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

// Click follows a plain link; anything needing a script is unsupported
func (e *staticElement) Click(ctx context.Context, timeout time.Duration) error {
	href, ok := e.sel.Attr("href")
	if goquery.NodeName(e.sel) != "a" || !ok || href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ErrUnsupported
	}

	base, err := url.Parse(e.view.location)
	if err != nil {
		return fmt.Errorf("invalid view location %q: %w", e.view.location, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("invalid href %q: %w", href, err)
	}

	clickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.view.Load(clickCtx, base.ResolveReference(ref).String())
}
