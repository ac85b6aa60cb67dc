// Package store holds the persistence layer: repost records and pattern
// performance history live in ClickHouse, snapshots and durable A/B tests in
// Postgres, and short-lived A/B tests in Redis.
package store

import (
	"context"
	"fmt"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/database"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// RecordStore reads observed reposts from ClickHouse
type RecordStore struct {
	db     database.ClickHouseConn
	logger logging.Logger
}

func NewRecordStore(db database.ClickHouseConn, logger logging.Logger) *RecordStore {
	return &RecordStore{db: db, logger: logger}
}

// GetRecords returns the most recent records, newest first. An empty scope
// matches every source handle.
func (s *RecordStore) GetRecords(ctx context.Context, scope string, limit int) ([]models.RepostRecord, error) {
	query := `
		SELECT id, source_handle, original_text,
		       repost_count, like_count, reply_count, quote_count,
		       timestamp
		FROM repost_records`
	args := []interface{}{}
	if scope != "" {
		query += ` WHERE source_handle = ?`
		args = append(args, scope)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query repost records: %w", err)
	}
	defer rows.Close()

	var records []models.RepostRecord
	for rows.Next() {
		var r models.RepostRecord
		if err := rows.Scan(
			&r.ID, &r.SourceHandle, &r.OriginalText,
			&r.RepostCount, &r.LikeCount, &r.ReplyCount, &r.QuoteCount,
			&r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan repost record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repost records: %w", err)
	}
	return records, nil
}

// InsertRecord appends one observed repost
func (s *RecordStore) InsertRecord(ctx context.Context, r models.RepostRecord) error {
	r.Normalize()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repost_records
			(id, source_handle, original_text,
			 repost_count, like_count, reply_count, quote_count, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourceHandle, r.OriginalText,
		r.RepostCount, r.LikeCount, r.ReplyCount, r.QuoteCount, r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert repost record: %w", err)
	}
	return nil
}

// ListScopes returns the distinct source handles with at least one record.
// The scheduler iterates these for periodic re-analysis.
func (s *RecordStore) ListScopes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source_handle FROM repost_records ORDER BY source_handle`)
	if err != nil {
		return nil, fmt.Errorf("query scopes: %w", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scopes: %w", err)
	}
	return scopes, nil
}
