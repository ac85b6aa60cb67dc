package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/database"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// ErrSnapshotNotFound is returned when a scope has no stored snapshot
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore keeps analysis snapshot history in Postgres as JSON payloads
type SnapshotStore struct {
	db     database.PostgresConn
	logger logging.Logger
}

func NewSnapshotStore(db database.PostgresConn, logger logging.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

// SaveSnapshot appends one snapshot to the scope's history
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *models.AnalysisSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_snapshots (scope, record_limit, payload, generated_at)
		VALUES ($1, $2, $3, $4)`,
		snap.Scope, snap.RecordLimit, payload, snap.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the scope's most recent stored snapshot
func (s *SnapshotStore) LatestSnapshot(ctx context.Context, scope string) (*models.AnalysisSnapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM analysis_snapshots
		WHERE scope = $1
		ORDER BY generated_at DESC
		LIMIT 1`, scope,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	var snap models.AnalysisSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns snapshot history for a scope, newest first
func (s *SnapshotStore) ListSnapshots(ctx context.Context, scope string, limit int) ([]models.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope, record_limit, generated_at
		FROM analysis_snapshots
		WHERE scope = $1
		ORDER BY generated_at DESC
		LIMIT $2`, scope, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var entries []models.SnapshotInfo
	for rows.Next() {
		var e models.SnapshotInfo
		if err := rows.Scan(&e.ID, &e.Scope, &e.RecordLimit, &e.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return entries, nil
}
