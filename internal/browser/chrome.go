package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"sjsage522/specharvest/logger"
)

// quiescenceScript reports the number of resource entries fetched so far
const quiescenceScript = `document.readyState === 'complete' ? performance.getEntriesByType('resource').length : -1`

// ChromeBrowser drives a local Chromium through the DevTools protocol
type ChromeBrowser struct {
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
}

// NewChromeBrowser launches Chromium. The returned browser lives until Close or ctx ends.
func NewChromeBrowser(ctx context.Context, headless bool) (*ChromeBrowser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", Locale),
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(ViewportWidth, ViewportHeight),
	)

	b := &ChromeBrowser{}
	b.allocCtx, b.cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	b.browserCtx, b.cancelBrowser = chromedp.NewContext(b.allocCtx,
		chromedp.WithLogf(logger.Debug),
	)

	// start the browser process
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return b, nil
}

// NewView opens a new tab with the Korean locale and viewport applied
func (b *ChromeBrowser) NewView(ctx context.Context) (View, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	v := &chromeView{tabCtx: tabCtx, cancel: cancel}

	// the first Run allocates the target and must use the tab context itself
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	err := v.run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": AcceptLanguage}),
		emulation.SetTimezoneOverride(Timezone),
		emulation.SetLocaleOverride().WithLocale(Locale),
		emulation.SetDeviceMetricsOverride(ViewportWidth, ViewportHeight, 1.0, false),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to configure tab: %w", err)
	}
	return v, nil
}

// Close shuts down Chromium
func (b *ChromeBrowser) Close() error {
	if b.cancelBrowser != nil {
		b.cancelBrowser()
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
	}
	return nil
}

type chromeView struct {
	tabCtx context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab, bounded by both the tab and ctx.
// Cancelling the derived context aborts the actions without closing the tab.
func (v *chromeView) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(v.tabCtx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(v.tabCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (v *chromeView) Load(ctx context.Context, url string) error {
	return v.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (v *chromeView) WaitForQuiescence(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	last, stable := -2, 0
	for {
		var count int
		if err := v.run(waitCtx, chromedp.Evaluate(quiescenceScript, &count)); err == nil {
			if count >= 0 && count == last {
				stable++
				if stable >= 2 {
					return nil
				}
			} else {
				stable = 0
			}
			last = count
		}

		select {
		case <-waitCtx.Done():
			// the quiescence deadline itself is tolerated; only the caller's cancellation is reported
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (v *chromeView) Evaluate(ctx context.Context, expr string, arg any, out any) error {
	if arg != nil {
		encoded, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("failed to encode script argument: %w", err)
		}
		expr = fmt.Sprintf("(%s)(%s)", expr, encoded)
	}
	return v.run(ctx, chromedp.Evaluate(expr, out))
}

func (v *chromeView) Query(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := v.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}

	elements := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &chromeElement{view: v, node: node})
	}
	return elements, nil
}

func (v *chromeView) Location(ctx context.Context) (string, error) {
	var location string
	err := v.run(ctx, chromedp.Location(&location))
	return location, err
}

func (v *chromeView) Title(ctx context.Context) (string, error) {
	var title string
	err := v.run(ctx, chromedp.Title(&title))
	return title, err
}

func (v *chromeView) HTML(ctx context.Context) (string, error) {
	var html string
	err := v.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (v *chromeView) Close() error {
	v.cancel()
	return nil
}

type chromeElement struct {
	view *chromeView
	node *cdp.Node
}

func (e *chromeElement) Attr(_ context.Context, name string) (string, bool, error) {
	value, ok := e.node.Attribute(name)
	return value, ok, nil
}

func (e *chromeElement) InnerText(ctx context.Context) (string, error) {
	var text string
	err := e.view.run(ctx, e.call(`function() { return this.innerText || ''; }`, &text))
	return text, err
}

func (e *chromeElement) Click(ctx context.Context, timeout time.Duration) error {
	clickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.view.run(clickCtx, e.call(`function() { this.scrollIntoView({block: 'center'}); this.click(); }`, nil))
}

// call runs fn with this bound to the element's node. res may be nil.
func (e *chromeElement) call(fn string, res any) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node %d: %w", e.node.NodeID, err)
		}
		// best effort; navigation releases it too
		defer runtime.ReleaseObject(obj.ObjectID).Do(ctx)

		return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}).Do(ctx)
	})
}
