package crawler

import (
	"context"
	"fmt"
	"strings"

	"sjsage522/specharvest/internal/browser"
	"sjsage522/specharvest/logger"
	"sjsage522/specharvest/pkg/errors"
)

// Cursor is the navigator's position: which listing, which page, and the first product
// seen there before any detail visit.
type Cursor struct {
	ListingURL  string
	Page        int
	Fingerprint string
}

// State is where the listing view currently appears to be
type State int

const (
	StateUnknown State = iota
	StateAtListing
	StateAtDetail
)

func (s State) String() string {
	switch s {
	case StateAtListing:
		return "at_listing"
	case StateAtDetail:
		return "at_detail"
	default:
		return "unknown"
	}
}

const (
	nextGroupSelector = "a.edge_nav.nav_next, a[class*='nav_next'], a[onclick*='movePage']"

	// settle delays after a recovery reload, in milliseconds
	reconcileSettleMs = 1500
	ensureSettleMs    = 1000
)

// Navigator keeps one listing view on the cursor's page
type Navigator struct {
	view  browser.View
	opts  Options
	pacer *Pacer
	log   *logger.Logger
}

// NewNavigator wraps the listing view
func NewNavigator(view browser.View, opts Options, pacer *Pacer) *Navigator {
	return &Navigator{
		view:  view,
		opts:  opts,
		pacer: pacer,
		log:   logger.ForComponent("navigator"),
	}
}

// Open loads the listing and returns the cursor at page 1
func (n *Navigator) Open(ctx context.Context) (Cursor, error) {
	if err := n.load(ctx); err != nil {
		return Cursor{}, errors.NewNavigation("open listing", n.opts.ListingURL, err)
	}
	slowScroll(ctx, n.view, n.pacer, listingScroll)
	n.pacer.Pause(ctx)
	return Cursor{ListingURL: n.opts.ListingURL, Page: 1}, nil
}

func (n *Navigator) load(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, n.opts.ListingTimeout)
	defer cancel()
	if err := n.view.Load(loadCtx, n.opts.ListingURL); err != nil {
		return err
	}
	n.quiesce(ctx)
	return nil
}

func (n *Navigator) quiesce(ctx context.Context) {
	if err := n.view.WaitForQuiescence(ctx, n.opts.QuiescenceTimeout); err != nil {
		n.log.Debug().Err(err).Msg("quiescence wait interrupted")
	}
}

// Fingerprint identifies the listing page currently rendered
func (n *Navigator) Fingerprint(ctx context.Context) string {
	return Fingerprint(ctx, n.view)
}

// State classifies the listing view's current location
func (n *Navigator) State(ctx context.Context) State {
	location, err := n.view.Location(ctx)
	if err != nil {
		return StateUnknown
	}
	switch {
	case looksLikeDetail(location):
		return StateAtDetail
	case strings.Contains(location, n.opts.ListingURL) || strings.Contains(location, "list"):
		return StateAtListing
	default:
		return StateUnknown
	}
}

func looksLikeDetail(location string) bool {
	return strings.Contains(location, "/info/") || strings.Contains(location, "pcode=")
}

// AdvanceTo moves the listing to page. It tries the numbered page link, then the
// page's movePage function, then the next page group followed by the numbered link.
// False means the page could not be reached.
func (n *Navigator) AdvanceTo(ctx context.Context, page int) bool {
	pageSelector := fmt.Sprintf("a.num[onclick*='movePage(%d)']", page)

	if n.clickFirst(ctx, pageSelector) {
		n.log.Debug().Int("page", page).Msg("page link clicked")
		return true
	}

	var hasMovePage bool
	if err := n.view.Evaluate(ctx, "typeof movePage === 'function'", nil, &hasMovePage); err == nil && hasMovePage {
		err := n.view.Evaluate(ctx, fmt.Sprintf("movePage(%d)", page), nil, nil)
		if err == nil {
			n.quiesce(ctx)
			n.log.Debug().Int("page", page).Msg("movePage called")
			return true
		}
		n.log.Debug().Err(err).Int("page", page).Msg("movePage call failed")
	}

	groups, err := n.view.Query(ctx, nextGroupSelector)
	if err == nil && len(groups) > 0 {
		if err := groups[len(groups)-1].Click(ctx, n.opts.ClickTimeout); err == nil {
			n.quiesce(ctx)
			if n.clickFirst(ctx, pageSelector) {
				n.log.Debug().Int("page", page).Msg("page link clicked after next group")
				return true
			}
		}
	}

	n.log.Warn().Err(errors.NewPagination("advance", page)).Msg("페이지 버튼 또는 함수 호출 불가")
	return false
}

func (n *Navigator) clickFirst(ctx context.Context, selector string) bool {
	elements, err := n.view.Query(ctx, selector)
	if err != nil || len(elements) == 0 {
		return false
	}
	if err := elements[0].Click(ctx, n.opts.ClickTimeout); err != nil {
		n.log.Debug().Err(err).Str("selector", selector).Msg("click failed")
		return false
	}
	n.quiesce(ctx)
	return true
}

// Reconcile runs after a detail visit. A listing view that wandered onto a detail page
// or no longer shows the cursor's first product is reloaded and re-advanced to the
// cursor's page. Matching fingerprints never trigger a reload.
func (n *Navigator) Reconcile(ctx context.Context, cur Cursor) Cursor {
	if state := n.State(ctx); state == StateAtDetail {
		n.log.Info().Int("page", cur.Page).Stringer("state", state).Msg("listing view moved to a detail page, returning")
		n.recover(ctx, cur, reconcileSettleMs)
	}

	if cur.Fingerprint == "" {
		return cur
	}
	current := n.Fingerprint(ctx)
	if current == cur.Fingerprint {
		return cur
	}

	n.log.Info().
		Err(errors.NewDrift("reconcile", "first product changed")).
		Str("expected", cur.Fingerprint).
		Str("current", current).
		Msg("페이지 상태가 변경됨. 복구 중")
	n.recover(ctx, cur, reconcileSettleMs)

	if after := n.Fingerprint(ctx); after != cur.Fingerprint {
		n.log.Warn().Str("expected", cur.Fingerprint).Str("current", after).Msg("listing still differs after recovery")
	}
	return cur
}

// EnsureListing runs before a page advance and returns the view to the listing when it
// shows a detail page or anything that is not the listing
func (n *Navigator) EnsureListing(ctx context.Context, cur Cursor) Cursor {
	if state := n.State(ctx); state != StateAtListing {
		n.log.Info().Int("page", cur.Page).Stringer("state", state).Msg("목록 페이지가 아님. 복귀")
		n.recover(ctx, cur, ensureSettleMs)
	}
	return cur
}

// recover reloads the listing and re-advances to the cursor page. Failures are logged
// and the traversal carries on best effort.
func (n *Navigator) recover(ctx context.Context, cur Cursor, settleMs int) {
	if err := n.load(ctx); err != nil {
		n.log.Warn().Err(errors.NewNavigation("recover", "reload listing", err)).Msg("recovery failed")
		return
	}
	n.pacer.PauseFor(ctx, settleMs)

	if cur.Page > 1 {
		if !n.AdvanceTo(ctx, cur.Page) {
			n.log.Warn().Int("page", cur.Page).Msg("recovery could not return to page")
			return
		}
		n.pacer.PauseFor(ctx, settleMs)
	}
}
