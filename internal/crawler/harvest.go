package crawler

import (
	"context"

	"sjsage522/specharvest/helpers"
	"sjsage522/specharvest/internal/attribute"
	"sjsage522/specharvest/logger"
)

// Harvest visits every product again, normalizes its specs with resolver and returns the
// records in visit order. emit, when set, sees each record as soon as it is built.
func (c *Crawler) Harvest(ctx context.Context, resolver *attribute.Resolver, emit func(attribute.AttributeRecord)) ([]attribute.AttributeRecord, error) {
	log := logger.ForPass("harvest")
	log.Info().Str("listing", c.opts.ListingURL).Msg("=== PASS 2: 실제 데이터 크롤링 시작 ===")

	b, err := c.launch(ctx)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	var records []attribute.AttributeRecord

	visit := func(ctx context.Context, link string) {
		log.Info().Int("n", len(records)+1).Str("url", helpers.Truncate(link, 80)).Msg("크롤링 중")

		page, err := c.visitDetail(ctx, b, link, true)
		if err != nil {
			c.failures.LogFailure("harvest", link, err)
			return
		}

		record := attribute.AttributeRecord{
			Title:      page.Title,
			URL:        link,
			Attributes: attribute.Normalize(page.Specs, resolver),
		}
		records = append(records, record)
		if emit != nil {
			emit(record)
		}
		log.Debug().Int("total", len(records)).Int("attributes", len(record.Attributes)).Msg("완료")
	}

	if err := c.traverse(ctx, b, log, visit, func() int { return len(records) }); err != nil {
		return records, err
	}

	log.Info().Int("records", len(records)).Msg("harvest finished")
	return records, nil
}
