// Package browser abstracts the page-driving engine the crawler talks to.
//
// Two engines exist: a chromedp-driven Chromium that renders scripts, and a static
// engine that fetches server-rendered HTML over net/http and answers queries with goquery.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned by an engine for an operation it cannot perform
var ErrUnsupported = errors.New("browser: operation not supported by this engine")

// Browser creates isolated views (tabs) sharing one session
type Browser interface {
	NewView(ctx context.Context) (View, error)
	Close() error
}

// View is one tab. Every method is bounded by ctx.
type View interface {
	// Load navigates to url and waits for the document to be parsed
	Load(ctx context.Context, url string) error
	// WaitForQuiescence waits until network activity settles or timeout elapses.
	// Hitting the timeout is not an error.
	WaitForQuiescence(ctx context.Context, timeout time.Duration) error
	// Evaluate runs a script expression. With a non-nil arg, expr must be a function
	// expression and is called with arg. out may be nil to discard the result.
	Evaluate(ctx context.Context, expr string, arg any, out any) error
	// Query returns every element matching a CSS selector, in document order
	Query(ctx context.Context, selector string) ([]Element, error)
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Element is a handle to one node of a View
type Element interface {
	Attr(ctx context.Context, name string) (string, bool, error)
	InnerText(ctx context.Context) (string, error)
	Click(ctx context.Context, timeout time.Duration) error
}

// Locale settings shared by both engines
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	AcceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
	Locale         = "ko-KR"
	Timezone       = "Asia/Seoul"
	ViewportWidth  = 1366
	ViewportHeight = 800
)
