package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/specharvest/internal/attribute"
	"sjsage522/specharvest/internal/browser"
	"sjsage522/specharvest/logger"
	"sjsage522/specharvest/pkg/errors"
)

// detailTabLabels are the captions of the tab revealing the spec table
var detailTabLabels = []string{"상세정보", "상세 사양", "상세스펙", "상세 스펙", "스펙", "사양"}

const (
	buttonRoleSelector = "button, [role='button']"
	linkRoleSelector   = "a, [role='link']"
	textSelector       = "a, button, li, span, [role='tab']"
)

// detailPage is what one visit to a product page produced
type detailPage struct {
	Title string
	Specs *attribute.SpecMap
}

// visitDetail opens link in its own view, optionally reveals lazily rendered specs,
// and extracts the merged spec map. The view is always closed.
func (c *Crawler) visitDetail(ctx context.Context, b browser.Browser, link string, reveal bool) (*detailPage, error) {
	view, err := b.NewView(ctx)
	if err != nil {
		return nil, errors.NewNavigation("detail", "open view", err)
	}
	defer view.Close()

	loadCtx, cancel := context.WithTimeout(ctx, c.opts.DetailTimeout)
	err = view.Load(loadCtx, link)
	cancel()
	if err != nil {
		return nil, errors.NewNavigation("detail", "load", err)
	}
	if err := view.WaitForQuiescence(ctx, c.opts.QuiescenceTimeout); err != nil {
		return nil, errors.NewNavigation("detail", "wait", err)
	}

	if reveal {
		slowScroll(ctx, view, c.pacer, detailScroll)
		c.revealDetailTab(ctx, view)
	}

	html, err := view.HTML(ctx)
	if err != nil {
		return nil, errors.NewExtraction("detail", "read document", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewExtraction("detail", "parse document", err)
	}

	page := &detailPage{Specs: attribute.ExtractSpecs(doc.Selection)}

	title, err := view.Title(ctx)
	if err != nil {
		logger.Warn("제목 추출 실패 %s: %v", link, err)
	}
	page.Title = strings.TrimSpace(title)

	return page, nil
}

// revealDetailTab clicks the first control captioned like a spec tab: buttons, then
// links, then any element containing the caption. Failures are ignored.
func (c *Crawler) revealDetailTab(ctx context.Context, view browser.View) {
	for _, label := range detailTabLabels {
		for _, selector := range []string{buttonRoleSelector, linkRoleSelector} {
			if c.clickCaptioned(ctx, view, selector, label, strings.EqualFold) {
				return
			}
		}
	}
	for _, label := range detailTabLabels {
		if c.clickCaptioned(ctx, view, textSelector, label, strings.Contains) {
			return
		}
	}
}

func (c *Crawler) clickCaptioned(ctx context.Context, view browser.View, selector, label string, match func(text, label string) bool) bool {
	elements, err := view.Query(ctx, selector)
	if err != nil {
		return false
	}
	for _, el := range elements {
		text, err := el.InnerText(ctx)
		if err != nil || !match(strings.TrimSpace(text), label) {
			continue
		}
		if err := el.Click(ctx, c.opts.ClickTimeout); err != nil {
			logger.Debug("detail tab %q click failed: %v", label, err)
			return false
		}
		if err := view.WaitForQuiescence(ctx, c.opts.QuiescenceTimeout); err != nil {
			logger.Debug("detail tab %q wait interrupted: %v", label, err)
		}
		return true
	}
	return false
}
