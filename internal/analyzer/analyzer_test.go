package analyzer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/cache"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/testutil"
)

type fakeSource struct {
	records []models.RepostRecord
	calls   int
}

func (f *fakeSource) GetRecords(_ context.Context, scope string, limit int) ([]models.RepostRecord, error) {
	f.calls++
	out := make([]models.RepostRecord, 0, len(f.records))
	for _, r := range f.records {
		if scope != "" && r.SourceHandle != scope {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newTestAnalyzer(source RecordSource) *Analyzer {
	return New(source, nil, nil, logging.NewLogger(), DefaultDefinitions())
}

func record(text string, reposts int, ts time.Time) models.RepostRecord {
	return models.RepostRecord{
		ID:           "rec",
		SourceHandle: "techguru",
		OriginalText: text,
		RepostCount:  reposts,
		Timestamp:    ts,
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := newTestAnalyzer(&fakeSource{})

	snap, err := a.Analyze(context.Background(), "", 50)
	require.NoError(t, err)

	assert.True(t, snap.Empty())
	assert.NotNil(t, snap.LengthPatterns.Distribution)
	assert.NotNil(t, snap.TonePatterns.Distribution)
	assert.NotNil(t, snap.FormatPatterns.Formats)
	assert.NotNil(t, snap.EngagementCorrelation.Metrics)
	assert.NotNil(t, snap.TimePatterns.Hours)
	assert.NotNil(t, snap.ContentPatterns.Types)
	assert.Empty(t, snap.Recommendations)
	assert.Nil(t, snap.LengthPatterns.Optimal)
}

func TestLengthDistributionSumsToRecordCount(t *testing.T) {
	fixtures := testutil.NewRepostFixtures()
	records := fixtures.VariedRecords(23)
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	total := 0
	for _, bucket := range snap.LengthPatterns.Distribution {
		total += bucket.Count
	}
	assert.Equal(t, len(records), total)
}

func TestLengthOptimalCategory(t *testing.T) {
	fixtures := testutil.NewRepostFixtures()
	a := newTestAnalyzer(&fakeSource{records: fixtures.LengthScenario()})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	require.NotNil(t, snap.LengthPatterns.Optimal)
	assert.Equal(t, "medium", snap.LengthPatterns.Optimal.Category)
	assert.Equal(t, models.LengthRange{Min: 101, Max: 200}, snap.LengthPatterns.Optimal.Range)
	assert.InDelta(t, 50.0, snap.LengthPatterns.Optimal.AvgEngagement, 1e-9)
}

func TestLengthOptimalTieBreaksInCategoryOrder(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		record(strings.Repeat("a", 50), 10, base),
		record(strings.Repeat("a", 150), 10, base),
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	require.NotNil(t, snap.LengthPatterns.Optimal)
	assert.Equal(t, "short", snap.LengthPatterns.Optimal.Category)
}

func TestToneMixedCategory(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		// Matches question ("?") and call_to_action ("share")
		record("Why not share this with your team?", 20, base),
		record("Plain text with no keywords at xyz", 5, base),
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	mixed, ok := snap.TonePatterns.Distribution["mixed"]
	require.True(t, ok)
	assert.Equal(t, 1, mixed.Count)
	assert.Equal(t, 20, mixed.TotalEngagement)

	question := snap.TonePatterns.Distribution["question"]
	assert.Equal(t, 1, question.Count)
	assert.InDelta(t, 20*1.2, question.Effectiveness, 1e-9)
}

func TestTonePatternsTopThree(t *testing.T) {
	fixtures := testutil.NewRepostFixtures()
	a := newTestAnalyzer(&fakeSource{records: fixtures.VariedRecords(30)})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	require.NotEmpty(t, snap.TonePatterns.Top)
	assert.LessOrEqual(t, len(snap.TonePatterns.Top), 3)
	for i := 1; i < len(snap.TonePatterns.Top); i++ {
		assert.GreaterOrEqual(t,
			snap.TonePatterns.Top[i-1].Effectiveness,
			snap.TonePatterns.Top[i].Effectiveness)
	}
}

func TestFormatPatternsBuckets(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		record("no tags here", 5, base),
		record("two tags #go #dev", 50, base),
		record("many tags #a #b #c #d #e #f #g", 1, base),
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	hashtags, ok := snap.FormatPatterns.Formats["hashtags"]
	require.True(t, ok)
	assert.Equal(t, 1, hashtags.Buckets["0"].Count)
	assert.Equal(t, 1, hashtags.Buckets["2"].Count)
	assert.Equal(t, 1, hashtags.Buckets["5+"].Count)
	assert.Equal(t, 2, hashtags.OptimalCount)
	assert.InDelta(t, 50.0, hashtags.OptimalAvgEngagement, 1e-9)
}

func TestFormatOverflowBucketReportsAsFive(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		record("#a #b #c #d #e #f", 100, base),
		record("plain", 1, base),
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	hashtags := snap.FormatPatterns.Formats["hashtags"]
	assert.Equal(t, 5, hashtags.OptimalCount)
}

func TestEngagementCorrelationSkipsZeroMetrics(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		{OriginalText: "a", RepostCount: 10, LikeCount: 30, Timestamp: base},
		{OriginalText: "b", RepostCount: 20, LikeCount: 60, Timestamp: base},
		{OriginalText: "c", RepostCount: 30, LikeCount: 90, Timestamp: base},
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, snap.EngagementCorrelation.Metrics["like_count"], 1e-9)
	_, hasReplies := snap.EngagementCorrelation.Metrics["reply_count"]
	assert.False(t, hasReplies)
	require.NotNil(t, snap.EngagementCorrelation.Strongest)
	assert.Equal(t, "repost_count", snap.EngagementCorrelation.Strongest.Metric)
}

func TestTimePatternsTieBreakLowerBucket(t *testing.T) {
	// Same engagement at hours 9 and 14; hour 9 must rank first
	records := []models.RepostRecord{
		record("a", 10, time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)),
		record("b", 10, time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)),
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	require.Len(t, snap.TimePatterns.TopHours, 2)
	assert.Equal(t, 9, snap.TimePatterns.TopHours[0].Bucket)
	assert.Equal(t, 14, snap.TimePatterns.TopHours[1].Bucket)
}

func TestContentTypeClassificationPriority(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{"How does this even work?", "question"},
		{"Tip: use table-driven tests", "tip"},
		{"The story of our migration", "story"},
		{"Check out the new docs", "call_to_action"},
		{"Research shows 40% improvement", "fact"},
		{"Nothing special here at zxy", "general"},
		// Question mark wins over tip keyword
		{"A quick tip, maybe?", "question"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifyContentType(tc.text))
		})
	}
}

func TestContentPatternsFiltersStopwordsAndShortTokens(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		record("the performance performance of go go", 10, base),
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	terms := make(map[string]int)
	for _, w := range snap.ContentPatterns.TopWords {
		terms[w.Term] = w.Count
	}
	assert.Equal(t, 2, terms["performance"])
	_, hasThe := terms["the"]
	assert.False(t, hasThe, "stopword should be filtered")
	_, hasGo := terms["go"]
	assert.False(t, hasGo, "short token should be filtered")
}

func TestRecommendationsFromSections(t *testing.T) {
	fixtures := testutil.NewRepostFixtures()
	a := newTestAnalyzer(&fakeSource{records: fixtures.VariedRecords(25)})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	kinds := make(map[models.PatternKind]int)
	for _, rec := range snap.Recommendations {
		kinds[rec.Kind]++
	}
	assert.Equal(t, 1, kinds[models.PatternLength])
	assert.Equal(t, 1, kinds[models.PatternTone])
	assert.Equal(t, 1, kinds[models.PatternTiming])
	assert.GreaterOrEqual(t, kinds[models.PatternFormat], 1)
}

func TestAnalyzeCachesByScopeAndLimit(t *testing.T) {
	fixtures := testutil.NewRepostFixtures()
	source := &fakeSource{records: fixtures.VariedRecords(10)}
	c := cache.New(cache.Options{TTL: time.Minute, MaxEntries: 16}, cache.MetricsHooks{})
	a := New(source, nil, c, logging.NewLogger(), DefaultDefinitions())

	_, err := a.Analyze(context.Background(), "techguru", 50)
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), "techguru", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "second identical call should hit the cache")

	_, err = a.Analyze(context.Background(), "techguru", 25)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "different limit is a different cache key")

	a.Invalidate("techguru")
	_, err = a.Analyze(context.Background(), "techguru", 50)
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls, "invalidation forces recomputation")
}

func TestInvalidateScopeAlsoDropsAllScope(t *testing.T) {
	fixtures := testutil.NewRepostFixtures()
	source := &fakeSource{records: fixtures.VariedRecords(10)}
	c := cache.New(cache.Options{TTL: time.Minute, MaxEntries: 16}, cache.MetricsHooks{})
	a := New(source, nil, c, logging.NewLogger(), DefaultDefinitions())

	_, err := a.Analyze(context.Background(), "", 50)
	require.NoError(t, err)

	a.Invalidate("techguru")

	_, err = a.Analyze(context.Background(), "", 50)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "all-scope snapshot must be recomputed after any-scope ingest")
}

func TestAnalyzeNormalizesMalformedRecords(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	records := []models.RepostRecord{
		{OriginalText: "negative counts", RepostCount: -5, LikeCount: -1, Timestamp: base},
		{OriginalText: "fine", RepostCount: 10, Timestamp: base},
	}
	a := newTestAnalyzer(&fakeSource{records: records})

	snap, err := a.Analyze(context.Background(), "", 100)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Summary.TotalRecords)
	assert.Equal(t, 10, snap.Summary.TotalEngagement)
}
