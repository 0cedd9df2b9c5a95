package crawler

import (
	"context"
	"net/url"
	"strings"

	"sjsage522/specharvest/internal/browser"
	"sjsage522/specharvest/logger"
)

// productLinkSelectors are tried in order; title anchors inside list cards come first
var productLinkSelectors = []string{
	"li.prod_item div.prod_info a.prod_link",
	"li.prod_item .prod_name a",
	"div.prod_info a.prod_link",
	"a[href*='/product/']",
	"a[href*='product/view.html']",
}

// non-title anchors (price comparison, options, bundles)
var skippedLinkWords = []string{"가격", "비교", "옵션", "구성"}

// fingerprintSelector locates the first product of the rendered listing page
const fingerprintSelector = "li.prod_item .prod_name, li.prod_item a.prod_link"

// CollectLinks returns the absolute product detail URLs of the listing page shown in view,
// de-duplicated in document order and capped at maxPerPage (0 = unbounded).
func CollectLinks(ctx context.Context, view browser.View, listingURL string, maxPerPage int) []string {
	base, err := url.Parse(listingURL)
	if err != nil {
		logger.Warn("invalid listing url %q: %v", listingURL, err)
		return nil
	}

	var links []string
	seen := make(map[string]struct{})

	for _, selector := range productLinkSelectors {
		anchors, err := view.Query(ctx, selector)
		if err != nil {
			logger.Debug("selector %q failed: %v", selector, err)
			continue
		}

		for _, a := range anchors {
			href, ok, err := a.Attr(ctx, "href")
			if err != nil || !ok {
				continue
			}
			href = strings.TrimSpace(href)
			if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
				continue
			}

			ref, err := url.Parse(href)
			if err != nil || !sameSite(base, ref) {
				continue
			}

			text, err := a.InnerText(ctx)
			if err != nil {
				continue
			}
			if containsAny(strings.ToLower(text), skippedLinkWords) {
				continue
			}

			link := base.ResolveReference(ref).String()
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)

			if maxPerPage > 0 && len(links) >= maxPerPage {
				return links
			}
		}
	}

	return links
}

// sameSite accepts relative references and hosts sharing the listing's registrable domain
func sameSite(base, ref *url.URL) bool {
	if ref.Host == "" {
		return ref.Scheme == "" || ref.Scheme == base.Scheme
	}
	return siteOf(ref.Hostname()) == siteOf(base.Hostname())
}

// siteOf keeps the last two host labels ("prod.danawa.com" -> "danawa.com")
func siteOf(host string) string {
	labels := strings.Split(strings.ToLower(host), ".")
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Fingerprint returns the trimmed text of the first listed product, or "" when none is shown
func Fingerprint(ctx context.Context, view browser.View) string {
	items, err := view.Query(ctx, fingerprintSelector)
	if err != nil || len(items) == 0 {
		return ""
	}
	text, err := items[0].InnerText(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
