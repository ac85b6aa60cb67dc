package models

import "time"

// RepostRecord represents a single observed repost event row from ClickHouse.
// Records are read-only to the analysis core and never mutated after ingestion.
type RepostRecord struct {
	ID           string    `json:"id"`
	SourceHandle string    `json:"source_handle"`
	OriginalText string    `json:"original_text"`
	RepostCount  int       `json:"repost_count"`
	LikeCount    int       `json:"like_count"`
	ReplyCount   int       `json:"reply_count"`
	QuoteCount   int       `json:"quote_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// Normalize coerces malformed optional fields to safe defaults so a single
// bad record never aborts a batch analysis. Negative counts become zero.
func (r *RepostRecord) Normalize() {
	if r.RepostCount < 0 {
		r.RepostCount = 0
	}
	if r.LikeCount < 0 {
		r.LikeCount = 0
	}
	if r.ReplyCount < 0 {
		r.ReplyCount = 0
	}
	if r.QuoteCount < 0 {
		r.QuoteCount = 0
	}
}

// Engagement returns the primary engagement proxy for a record. Repost count
// is used as the scalar engagement measure throughout the analysis core.
func (r *RepostRecord) Engagement() int {
	return r.RepostCount
}
