package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"sjsage522/specharvest/config"
	"sjsage522/specharvest/internal/attribute"
	"sjsage522/specharvest/internal/crawler"
	"sjsage522/specharvest/logger"
	"sjsage522/specharvest/pkg/errors"
	"sjsage522/specharvest/services/output"
	"sjsage522/specharvest/services/publisher"
)

// summaryKeys is how many keys per category the vocabulary summary lists
const summaryKeys = 5

// Crawler runs the two passes over one listing
type Crawler interface {
	Learn(ctx context.Context) (*crawler.LearnResult, error)
	Harvest(ctx context.Context, resolver *attribute.Resolver, emit func(attribute.AttributeRecord)) ([]attribute.AttributeRecord, error)
}

// Ensure the real crawler satisfies Crawler
var _ Crawler = (*crawler.Crawler)(nil)

// Result summarizes a finished run
type Result struct {
	RunID      string
	Vocabulary attribute.Vocabulary
	Records    []attribute.AttributeRecord
	Published  int
	OutputPath string
}

// Worker learns the vocabulary, harvests the listing and writes the output
type Worker struct {
	crawler    Crawler
	publisher  publisher.Publisher // optional
	overrides  *config.RuleOverrides
	outputPath string
	format     output.Format
	summary    io.Writer
}

// NewWorker creates a new worker. pub may be nil.
func NewWorker(c Crawler, pub publisher.Publisher, overrides *config.RuleOverrides, outputPath string, longFormat bool) *Worker {
	if overrides == nil {
		overrides = &config.RuleOverrides{}
	}
	format := output.FormatWide
	if longFormat {
		format = output.FormatLong
	}
	return &Worker{
		crawler:    c,
		publisher:  pub,
		overrides:  overrides,
		outputPath: outputPath,
		format:     format,
		summary:    os.Stdout,
	}
}

// WithSummaryWriter redirects the learned vocabulary table
func (w *Worker) WithSummaryWriter(out io.Writer) *Worker {
	w.summary = out
	return w
}

// Run executes both passes and writes whatever was harvested, even when the
// context is cancelled partway through.
func (w *Worker) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := logger.ForRun(runID)
	start := time.Now()

	learned, err := w.crawler.Learn(ctx)
	if err != nil {
		return nil, fmt.Errorf("learn pass: %w", err)
	}
	w.printVocabulary(learned.Vocabulary)

	resolver := attribute.NewResolver(learned.Vocabulary, w.overrides.Categories, w.overrides.Renames)

	result := &Result{RunID: runID, Vocabulary: learned.Vocabulary, OutputPath: w.outputPath}
	records, err := w.crawler.Harvest(ctx, resolver, func(r attribute.AttributeRecord) {
		if w.publish(ctx, r) {
			result.Published++
		}
	})
	if err != nil {
		return nil, fmt.Errorf("harvest pass: %w", err)
	}
	result.Records = records

	if err := output.WriteFile(w.outputPath, records, w.format); err != nil {
		return nil, errors.NewOutput("csv", "write records", err)
	}

	if w.publisher != nil {
		// trimming runs even after cancellation; failures only log
		trimCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := w.publisher.TrimStreams(trimCtx); err != nil {
			logger.LogError("StreamTrimming", err, "failed to trim streams")
		}
		cancel()
	}

	log.Info().
		Int("scanned", learned.Scanned).
		Int("learned", learned.Vocabulary.Len()).
		Int("records", len(records)).
		Int("published", result.Published).
		Str("output", w.outputPath).
		Dur("elapsed", time.Since(start)).
		Msg("[완료] 크롤링 완료")

	return result, nil
}

// publish sends one record to the stream; failures are logged and the run goes on
func (w *Worker) publish(ctx context.Context, r attribute.AttributeRecord) bool {
	if w.publisher == nil || ctx.Err() != nil {
		return false
	}
	data, err := json.Marshal(r)
	if err != nil {
		logger.LogError("publisher", err, "marshal %s", r.URL)
		return false
	}
	if err := w.publisher.Publish(ctx, publisher.RecordField, data); err != nil {
		logger.LogError("publisher", err, "publish %s", r.URL)
		return false
	}
	return true
}

// printVocabulary renders the learned checkmark keys grouped by category
func (w *Worker) printVocabulary(v attribute.Vocabulary) {
	if w.summary == nil {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w.summary)
	t.SetTitle("[학습 완료] %d개 체크마크 항목", v.Len())
	t.AppendHeader(table.Row{"분류", "항목 수", "항목"})
	for _, g := range v.Groups() {
		t.AppendRow(table.Row{g.Category, len(g.Keys), summarizeKeys(g.Keys)})
	}
	t.Render()
}

func summarizeKeys(keys []string) string {
	if len(keys) <= summaryKeys {
		return strings.Join(keys, ", ")
	}
	return fmt.Sprintf("%s 외 %d개", strings.Join(keys[:summaryKeys], ", "), len(keys)-summaryKeys)
}
