package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/specharvest/config"
	"sjsage522/specharvest/internal/attribute"
	"sjsage522/specharvest/internal/crawler"
	"sjsage522/specharvest/services/publisher"
)

// MockCrawler replays a fixed vocabulary and fixed raw spec maps
type MockCrawler struct {
	observed   []string
	documents  []mockDocument
	learnErr   error
	harvestErr error

	resolver *attribute.Resolver
}

type mockDocument struct {
	title string
	url   string
	pairs [][2]string
}

// Ensure MockCrawler implements Crawler
var _ Crawler = (*MockCrawler)(nil)

func (m *MockCrawler) Learn(context.Context) (*crawler.LearnResult, error) {
	if m.learnErr != nil {
		return nil, m.learnErr
	}
	vocab := attribute.Learn(m.observed)
	return &crawler.LearnResult{Vocabulary: vocab, Observed: m.observed, Scanned: len(m.documents)}, nil
}

func (m *MockCrawler) Harvest(_ context.Context, r *attribute.Resolver, emit func(attribute.AttributeRecord)) ([]attribute.AttributeRecord, error) {
	m.resolver = r
	if m.harvestErr != nil {
		return nil, m.harvestErr
	}
	var records []attribute.AttributeRecord
	for _, d := range m.documents {
		specs := attribute.NewSpecMap()
		for _, p := range d.pairs {
			specs.Add(p[0], p[1])
		}
		record := attribute.AttributeRecord{Title: d.title, URL: d.url, Attributes: attribute.Normalize(specs, r)}
		records = append(records, record)
		emit(record)
	}
	return records, nil
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu         sync.Mutex
	messages   [][]byte
	fields     []string
	publishErr error
	trimmed    int
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(_ context.Context, field string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.fields = append(m.fields, field)
	m.messages = append(m.messages, append([]byte(nil), message...))
	return nil
}

func (m *MockPublisher) TrimStreams(context.Context) error {
	m.trimmed++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func formulaCrawler() *MockCrawler {
	return &MockCrawler{
		observed: []string{"상온", "냉장", "1단계"},
		documents: []mockDocument{
			{
				title: "분유 A",
				url:   "https://prod.danawa.com/info/?pcode=1",
				pairs: [][2]string{{"상온", "○"}, {"냉장", "○"}, {"제조사", "ABC"}},
			},
			{
				title: "분유 B",
				url:   "https://prod.danawa.com/info/?pcode=2",
				pairs: [][2]string{{"1단계", "○"}},
			},
		},
	}
}

func TestWorkerRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	pub := &MockPublisher{}
	var summary bytes.Buffer

	w := NewWorker(formulaCrawler(), pub, nil, path, false).WithSummaryWriter(&summary)
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Vocabulary.Len())
	require.Len(t, result.Records, 2)
	assert.Equal(t, []string{"보관방식:상온,냉장", "제조사:ABC"}, result.Records[0].Attributes)
	assert.Equal(t, []string{"단계:1단계"}, result.Records[1].Attributes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF상품명,URL,상세정보\n"))
	assert.Contains(t, content, `분유 A,https://prod.danawa.com/info/?pcode=1,"보관방식:상온,냉장/제조사:ABC"`)

	// every record went to the stream as JSON and the streams were trimmed once
	assert.Equal(t, 2, result.Published)
	require.Len(t, pub.messages, 2)
	assert.Equal(t, []string{publisher.RecordField, publisher.RecordField}, pub.fields)
	var published attribute.AttributeRecord
	require.NoError(t, json.Unmarshal(pub.messages[1], &published))
	assert.Equal(t, result.Records[1], published)
	assert.Equal(t, 1, pub.trimmed)

	assert.Contains(t, summary.String(), "보관방식")
	assert.Contains(t, summary.String(), "단계")
}

func TestWorkerRunLongFormatWithoutPublisher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := NewWorker(formulaCrawler(), nil, nil, path, true).WithSummaryWriter(nil)
	result, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Published)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBF"+
		"상품명,URL,key,value\n"+
		"분유 A,https://prod.danawa.com/info/?pcode=1,보관방식,\"상온,냉장\"\n"+
		"분유 A,https://prod.danawa.com/info/?pcode=1,제조사,ABC\n"+
		"분유 B,https://prod.danawa.com/info/?pcode=2,단계,1단계\n", string(data))
}

func TestWorkerRunAppliesRuleOverrides(t *testing.T) {
	c := &MockCrawler{
		documents: []mockDocument{{
			title: "반찬",
			url:   "https://prod.danawa.com/info/?pcode=3",
			pairs: [][2]string{{"무농약", "○"}, {"재료 종류", "콩"}},
		}},
	}
	overrides := &config.RuleOverrides{
		Categories: map[string]string{"무농약": "재배방식"},
		Renames:    map[string]string{"재료 종류": "주재료"},
	}

	w := NewWorker(c, nil, overrides, filepath.Join(t.TempDir(), "out.csv"), false).WithSummaryWriter(nil)
	result, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, []string{"재배방식:무농약", "주재료:콩"}, result.Records[0].Attributes)
}

func TestWorkerRunPublishFailureDoesNotStopRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	pub := &MockPublisher{publishErr: errors.New("redis down")}

	result, err := NewWorker(formulaCrawler(), pub, nil, path, false).WithSummaryWriter(nil).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Zero(t, result.Published)
	assert.FileExists(t, path)
}

func TestWorkerRunPassErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := NewWorker(&MockCrawler{learnErr: errors.New("listing unreachable")}, nil, nil, path, false).
		WithSummaryWriter(nil).Run(context.Background())
	assert.ErrorContains(t, err, "learn pass")

	_, err = NewWorker(&MockCrawler{harvestErr: errors.New("listing unreachable")}, nil, nil, path, false).
		WithSummaryWriter(nil).Run(context.Background())
	assert.ErrorContains(t, err, "harvest pass")

	assert.NoFileExists(t, path)
}

func TestWorkerRunOutputError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	_, err := NewWorker(formulaCrawler(), nil, nil, path, false).WithSummaryWriter(nil).Run(context.Background())
	assert.ErrorContains(t, err, "write records")
}

func TestSummarizeKeys(t *testing.T) {
	assert.Equal(t, "a, b", summarizeKeys([]string{"a", "b"}))
	assert.Equal(t, "a, b, c, d, e 외 2개", summarizeKeys([]string{"a", "b", "c", "d", "e", "f", "g"}))
}
