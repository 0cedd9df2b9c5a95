package crawler

import (
	"context"

	"sjsage522/specharvest/helpers"
	"sjsage522/specharvest/internal/attribute"
	"sjsage522/specharvest/logger"
)

// LearnResult is the outcome of the learning pass
type LearnResult struct {
	Vocabulary attribute.Vocabulary
	Observed   []string
	Scanned    int
}

// Learn samples detail pages across the listing and classifies every checkmark key seen.
// Only a failure to open the listing is returned; per-document failures are logged.
func (c *Crawler) Learn(ctx context.Context) (*LearnResult, error) {
	log := logger.ForPass("learn")
	log.Info().Str("listing", c.opts.ListingURL).Msg("=== PASS 1: 데이터 구조 학습 중 ===")

	b, err := c.launch(ctx)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	var observed attribute.ObservedKeys
	scanned := 0

	visit := func(ctx context.Context, link string) {
		page, err := c.visitDetail(ctx, b, link, false)
		if err != nil {
			c.failures.LogFailure("learn", link, err)
			return
		}
		observed.Observe(page.Specs)
		scanned++
		log.Debug().Str("url", helpers.Truncate(link, 80)).Int("scanned", scanned).Msg("scanned")
	}

	if err := c.traverse(ctx, b, log, visit, func() int { return scanned }); err != nil {
		return nil, err
	}

	vocab := attribute.Learn(observed.Keys())
	log.Info().
		Int("scanned", scanned).
		Int("checkmark_keys", len(observed.Keys())).
		Int("learned", vocab.Len()).
		Msg("[완료] 체크마크 항목 학습 완료")

	return &LearnResult{Vocabulary: vocab, Observed: observed.Keys(), Scanned: scanned}, nil
}
