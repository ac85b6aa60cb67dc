package testutil

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// RepostFixtures provides test data fixtures for repost analytics testing
type RepostFixtures struct{}

// NewRepostFixtures creates a new repost fixtures helper
func NewRepostFixtures() *RepostFixtures {
	return &RepostFixtures{}
}

// RecordColumns returns the column names repost record queries scan
func (f *RepostFixtures) RecordColumns() []string {
	return []string{
		"id", "source_handle", "original_text",
		"repost_count", "like_count", "reply_count", "quote_count",
		"timestamp",
	}
}

// RecordRow converts a record into driver values matching RecordColumns
func (f *RepostFixtures) RecordRow(r models.RepostRecord) []driver.Value {
	return []driver.Value{
		r.ID, r.SourceHandle, r.OriginalText,
		r.RepostCount, r.LikeCount, r.ReplyCount, r.QuoteCount,
		r.Timestamp,
	}
}

// Record creates one valid repost record with sensible defaults
func (f *RepostFixtures) Record(id string, text string, reposts int) models.RepostRecord {
	return models.RepostRecord{
		ID:           id,
		SourceHandle: "techguru",
		OriginalText: text,
		RepostCount:  reposts,
		LikeCount:    reposts * 3,
		ReplyCount:   reposts / 2,
		QuoteCount:   reposts / 4,
		Timestamp:    time.Date(2026, 7, 14, 15, 30, 0, 0, time.UTC),
	}
}

// LengthScenario returns the three-record set whose medium-length record has
// the highest average engagement. Useful for length-pattern assertions.
func (f *RepostFixtures) LengthScenario() []models.RepostRecord {
	return []models.RepostRecord{
		f.Record("rec-short", strings.Repeat("a", 50), 10),
		f.Record("rec-medium", strings.Repeat("a", 150), 50),
		f.Record("rec-long", strings.Repeat("a", 250), 5),
	}
}

// VariedRecords creates n records with varying text shapes, engagement, and
// timestamps spanning several hours and weekdays
func (f *RepostFixtures) VariedRecords(n int) []models.RepostRecord {
	texts := []string{
		"What do you think about the new framework? #golang",
		"Tip: always profile before you optimize. It saves hours of guesswork on real workloads.",
		"Once upon a time our deploy took 45 minutes. Today it takes 90 seconds. Here is what changed along the way.",
		"Check out our latest release and share it with your team! https://example.com #release #shipit",
		"Studies show that most outages trace back to config changes, not code changes.",
	}

	base := time.Date(2026, 7, 13, 8, 0, 0, 0, time.UTC)
	records := make([]models.RepostRecord, 0, n)
	for i := 0; i < n; i++ {
		r := f.Record(
			fmt.Sprintf("rec-%03d", i),
			texts[i%len(texts)],
			5+(i%7)*4,
		)
		r.Timestamp = base.Add(time.Duration(i) * 7 * time.Hour)
		records = append(records, r)
	}
	return records
}
