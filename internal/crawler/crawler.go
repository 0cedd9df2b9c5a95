package crawler

import (
	"context"
	"time"

	"sjsage522/specharvest/helpers"
	"sjsage522/specharvest/internal/browser"
	"sjsage522/specharvest/logger"
)

// Launcher starts a fresh browser for one pass
type Launcher func(ctx context.Context) (browser.Browser, error)

// Options bounds a traversal of one listing
type Options struct {
	ListingURL    string
	MaxPages      int
	ItemsPerPage  int // 0 = unbounded
	MaxTotalItems int // 0 = unbounded
	DelayMs       int

	ListingTimeout    time.Duration
	DetailTimeout     time.Duration
	QuiescenceTimeout time.Duration
	ClickTimeout      time.Duration
}

// DefaultOptions returns the timeouts used against the live site
func DefaultOptions(listingURL string) Options {
	return Options{
		ListingURL:        listingURL,
		MaxPages:          1,
		DelayMs:           1000,
		ListingTimeout:    10 * time.Second,
		DetailTimeout:     15 * time.Second,
		QuiescenceTimeout: 3 * time.Second,
		ClickTimeout:      2 * time.Second,
	}
}

// Crawler runs the learning and harvesting passes over one listing
type Crawler struct {
	launch   Launcher
	opts     Options
	failures helpers.FailureLogger
	pacer    *Pacer
}

// New creates a crawler. A nil failure logger discards failures.
func New(launch Launcher, opts Options, failures helpers.FailureLogger) *Crawler {
	if failures == nil {
		failures = helpers.NopFailureLog{}
	}
	return &Crawler{
		launch:   launch,
		opts:     opts,
		failures: failures,
		pacer:    NewPacer(opts.DelayMs),
	}
}

// WithPacer replaces the pacer
func (c *Crawler) WithPacer(p *Pacer) *Crawler {
	c.pacer = p
	return c
}

// budgetReached reports whether count has hit a non-zero limit
func budgetReached(count, limit int) bool {
	return limit > 0 && count >= limit
}

// pageVisitor handles one product link
type pageVisitor func(ctx context.Context, link string)

// traverse walks the listing page by page, calling visit for every product link until the
// page budget, the item budget or the pagination runs out. count returns the current
// number of budgeted items.
func (c *Crawler) traverse(ctx context.Context, b browser.Browser, log *logger.Logger, visit pageVisitor, count func() int) error {
	listing, err := b.NewView(ctx)
	if err != nil {
		return err
	}
	defer listing.Close()

	nav := NewNavigator(listing, c.opts, c.pacer)
	cursor, err := nav.Open(ctx)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			log.Warn().Int("page", cursor.Page).Msg("crawl cancelled")
			return nil
		}

		log.Info().Int("page", cursor.Page).Int("max_pages", c.opts.MaxPages).Msg("페이지 스캔 중")
		links := CollectLinks(ctx, listing, c.opts.ListingURL, c.opts.ItemsPerPage)
		log.Info().Int("page", cursor.Page).Int("links", len(links)).Msg("링크 발견")
		if len(links) == 0 {
			log.Info().Int("page", cursor.Page).Msg("no products on page, stopping")
			return nil
		}

		cursor.Fingerprint = nav.Fingerprint(ctx)

		for _, link := range links {
			if budgetReached(count(), c.opts.MaxTotalItems) || ctx.Err() != nil {
				break
			}
			visit(ctx, link)

			c.pacer.Pause(ctx)
			cursor = nav.Reconcile(ctx, cursor)
			c.pacer.Pause(ctx)
		}

		if budgetReached(count(), c.opts.MaxTotalItems) {
			log.Info().Int("items", count()).Msg("최대 아이템 수에 도달했습니다")
			return nil
		}
		if cursor.Page >= c.opts.MaxPages || ctx.Err() != nil {
			return nil
		}

		cursor = nav.EnsureListing(ctx, cursor)
		next := cursor.Page + 1
		if !nav.AdvanceTo(ctx, next) {
			log.Info().Int("page", next).Msg("다음 페이지로 이동할 수 없습니다")
			return nil
		}
		cursor = Cursor{ListingURL: cursor.ListingURL, Page: next}
		slowScroll(ctx, listing, c.pacer, listingScroll)
		c.pacer.Pause(ctx)
	}
}
