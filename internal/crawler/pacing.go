package crawler

import (
	"context"
	"time"

	"sjsage522/specharvest/helpers"
	"sjsage522/specharvest/internal/browser"
)

// Pacer spaces out browser actions with randomized delays
type Pacer struct {
	baseMs int
	sleep  func(ctx context.Context, d time.Duration)
}

// NewPacer creates a pacer sleeping base + rand[0, base] milliseconds per pause
func NewPacer(baseMs int) *Pacer {
	return &Pacer{baseMs: baseMs, sleep: sleepContext}
}

// NoopPacer never sleeps
func NoopPacer() *Pacer {
	return &Pacer{sleep: func(context.Context, time.Duration) {}}
}

// Pause sleeps the base jitter
func (p *Pacer) Pause(ctx context.Context) {
	p.PauseFor(ctx, p.baseMs)
}

// PauseFor sleeps a jitter around baseMs
func (p *Pacer) PauseFor(ctx context.Context, baseMs int) {
	if d := helpers.Jitter(baseMs); d > 0 {
		p.sleep(ctx, d)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// scrollPlan is a slow scroll used to trigger lazily loaded content
type scrollPlan struct {
	steps   int
	stepPx  int
	pauseMs int // 0 = the pacer's base delay
}

var listingScroll = scrollPlan{steps: 6, stepPx: 800, pauseMs: 300}

var detailScroll = scrollPlan{steps: 4, stepPx: 900}

func slowScroll(ctx context.Context, view browser.View, p *Pacer, plan scrollPlan) {
	for i := 0; i < plan.steps; i++ {
		if ctx.Err() != nil {
			return
		}
		if err := view.Evaluate(ctx, "step => window.scrollBy(0, step)", plan.stepPx, nil); err != nil {
			// engines without scripts have nothing to lazy load
			return
		}
		if plan.pauseMs > 0 {
			p.PauseFor(ctx, plan.pauseMs)
		} else {
			p.Pause(ctx)
		}
	}
}
