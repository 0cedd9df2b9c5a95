package crawler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/specharvest/internal/browser"
)

const testListingURL = "https://prod.danawa.com/list/?cate=16249091"

var movePageCall = regexp.MustCompile(`movePage\((\d+)\)`)

type fakeProduct struct {
	Name string
	Href string
}

// fakeSite is a scripted listing SPA plus its detail pages
type fakeSite struct {
	mu sync.Mutex

	pages     [][]fakeProduct   // products per page, page 1 first
	details   map[string]string // absolute detail url -> html
	groupSize int               // numbered page links per pager group, 0 = all
	movePage  bool              // whether the listing defines movePage()
	extraHTML string            // appended to every listing render
	noPager   bool              // omit the numbered page links
	reloadErr error             // when set, loading the listing fails

	listingLoads int
	detailLoads  []string
	tabClicks    int

	// afterDetailClose can disturb the listing view once a detail view closes
	afterDetailClose func(listing *fakeView)
}

func newFakeSite(pages [][]fakeProduct) *fakeSite {
	return &fakeSite{pages: pages, details: make(map[string]string), movePage: true}
}

func productPages(pages, perPage int) [][]fakeProduct {
	var out [][]fakeProduct
	n := 0
	for p := 0; p < pages; p++ {
		var products []fakeProduct
		for i := 0; i < perPage; i++ {
			n++
			products = append(products, fakeProduct{
				Name: fmt.Sprintf("상품 %d", n),
				Href: fmt.Sprintf("/info/?pcode=%d", n),
			})
		}
		out = append(out, products)
	}
	return out
}

func detailHTML(title string, rows ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>" + title + "</title></head><body><table>")
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

type fakeBrowser struct {
	site    *fakeSite
	views   []*fakeView
	closed  bool
	openErr error
}

func (b *fakeBrowser) NewView(context.Context) (browser.View, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	v := &fakeView{site: b.site, browser: b, location: "about:blank"}
	b.views = append(b.views, v)
	return v, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBrowser) listing() *fakeView {
	if len(b.views) == 0 {
		return nil
	}
	return b.views[0]
}

// fakeLauncher hands out fresh browsers over the same site and remembers them
type fakeLauncher struct {
	site     *fakeSite
	browsers []*fakeBrowser
}

func (l *fakeLauncher) Launch(context.Context) (browser.Browser, error) {
	b := &fakeBrowser{site: l.site}
	l.browsers = append(l.browsers, b)
	return b, nil
}

type fakeView struct {
	site     *fakeSite
	browser  *fakeBrowser
	location string
	page     int
	group    int
	closed   bool
}

func (v *fakeView) isListing() bool {
	return strings.HasPrefix(v.location, testListingURL)
}

func (v *fakeView) Load(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.site.mu.Lock()
	defer v.site.mu.Unlock()

	if url == testListingURL {
		if v.site.reloadErr != nil {
			return v.site.reloadErr
		}
		v.site.listingLoads++
		v.location, v.page, v.group = url, 1, 0
		return nil
	}
	if _, ok := v.site.details[url]; ok {
		v.site.detailLoads = append(v.site.detailLoads, url)
		v.location = url
		return nil
	}
	return fmt.Errorf("fake: 404 %s", url)
}

func (v *fakeView) WaitForQuiescence(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (v *fakeView) Evaluate(_ context.Context, expr string, arg any, out any) error {
	switch {
	case strings.Contains(expr, "scrollBy"):
		return nil
	case expr == "typeof movePage === 'function'":
		*(out.(*bool)) = v.isListing() && v.site.movePage
		return nil
	case movePageCall.MatchString(expr):
		if !v.isListing() || !v.site.movePage {
			return errors.New("ReferenceError: movePage is not defined")
		}
		n, _ := strconv.Atoi(movePageCall.FindStringSubmatch(expr)[1])
		v.goTo(n)
		return nil
	}
	return fmt.Errorf("fake: unexpected script %q", expr)
}

// goTo shows page; pages past the end render an empty product list
func (v *fakeView) goTo(page int) {
	if page < 1 {
		return
	}
	v.page = page
	if v.site.groupSize > 0 {
		v.group = (page - 1) / v.site.groupSize
	}
}

func (v *fakeView) render() string {
	if !v.isListing() {
		return v.site.details[v.location]
	}

	var b strings.Builder
	b.WriteString("<html><head><title>목록</title></head><body><ul class='product_list'>")
	var products []fakeProduct
	if v.page <= len(v.site.pages) {
		products = v.site.pages[v.page-1]
	}
	for _, p := range products {
		fmt.Fprintf(&b, `<li class="prod_item"><div class="prod_info"><a class="prod_link" href="%s"><span class="prod_name">%s</span></a></div>`+
			`<a class="price_link" href="%s#price">가격비교</a></li>`, p.Href, p.Name, p.Href)
	}
	b.WriteString("</ul><div class='paging'>")
	if v.site.noPager {
		b.WriteString("</div>" + v.site.extraHTML + "</body></html>")
		return b.String()
	}

	first, last := 1, len(v.site.pages)
	if v.site.groupSize > 0 {
		first = v.group*v.site.groupSize + 1
		last = min(first+v.site.groupSize-1, len(v.site.pages))
	}
	for n := first; n <= last; n++ {
		fmt.Fprintf(&b, `<a class="num" href="#" onclick="movePage(%d); return false;">%d</a>`, n, n)
	}
	if last < len(v.site.pages) {
		b.WriteString(`<a class="edge_nav nav_next" href="#" onclick="nextGroup(); return false;">다음</a>`)
	}
	b.WriteString("</div>" + v.site.extraHTML + "</body></html>")
	return b.String()
}

func (v *fakeView) Query(_ context.Context, selector string) ([]browser.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(v.render()))
	if err != nil {
		return nil, err
	}
	var elements []browser.Element
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &fakeElement{view: v, sel: s})
	})
	return elements, nil
}

func (v *fakeView) Location(context.Context) (string, error) {
	return v.location, nil
}

func (v *fakeView) Title(context.Context) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(v.render()))
	if err != nil {
		return "", err
	}
	return doc.Find("title").Text(), nil
}

func (v *fakeView) HTML(context.Context) (string, error) {
	return v.render(), nil
}

func (v *fakeView) Close() error {
	v.closed = true
	if listing := v.browser.listing(); listing != nil && listing != v && v.site.afterDetailClose != nil {
		v.site.afterDetailClose(listing)
	}
	return nil
}

type fakeElement struct {
	view *fakeView
	sel  *goquery.Selection
}

func (e *fakeElement) Attr(_ context.Context, name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e *fakeElement) InnerText(context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *fakeElement) Click(ctx context.Context, _ time.Duration) error {
	onclick, _ := e.sel.Attr("onclick")
	switch {
	case strings.Contains(onclick, "nextGroup"):
		e.view.group++
		return nil
	case movePageCall.MatchString(onclick):
		n, _ := strconv.Atoi(movePageCall.FindStringSubmatch(onclick)[1])
		e.view.goTo(n)
		return nil
	case goquery.NodeName(e.sel) == "button":
		e.view.site.tabClicks++
		return nil
	}
	return fmt.Errorf("fake: element is not clickable")
}

// recordingFailures collects skipped documents
type recordingFailures struct {
	urls []string
}

func (r *recordingFailures) LogFailure(_ string, url string, _ error) {
	r.urls = append(r.urls, url)
}

func testOptions() Options {
	opts := DefaultOptions(testListingURL)
	opts.DelayMs = 0
	return opts
}
