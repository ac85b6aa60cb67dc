package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/database"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// PerformanceStore keeps the append-only pattern performance history in
// ClickHouse. Rows are never updated; decay detection reads windows of them.
type PerformanceStore struct {
	db     database.ClickHouseConn
	logger logging.Logger
}

func NewPerformanceStore(db database.ClickHouseConn, logger logging.Logger) *PerformanceStore {
	return &PerformanceStore{db: db, logger: logger}
}

func (s *PerformanceStore) AppendSample(ctx context.Context, sample models.PatternPerformanceSample) error {
	performance, err := json.Marshal(sample.Performance)
	if err != nil {
		return fmt.Errorf("marshal performance payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pattern_performance
			(pattern_type, pattern_fingerprint, repost_rate, performance, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		string(sample.Kind), sample.Fingerprint, sample.RepostRate, string(performance), sample.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert performance sample: %w", err)
	}
	return nil
}

// SamplesSince returns samples for a fingerprint within the window, oldest
// first so trend fitting can use row order directly
func (s *PerformanceStore) SamplesSince(ctx context.Context, kind models.PatternKind, fingerprint string, since time.Time) ([]models.PatternPerformanceSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern_type, pattern_fingerprint, repost_rate, performance, timestamp
		FROM pattern_performance
		WHERE pattern_type = ? AND pattern_fingerprint = ? AND timestamp >= ?
		ORDER BY timestamp ASC`,
		string(kind), fingerprint, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query performance samples: %w", err)
	}
	defer rows.Close()

	var samples []models.PatternPerformanceSample
	for rows.Next() {
		var sample models.PatternPerformanceSample
		var kindStr, performance string
		if err := rows.Scan(&kindStr, &sample.Fingerprint, &sample.RepostRate, &performance, &sample.Timestamp); err != nil {
			return nil, fmt.Errorf("scan performance sample: %w", err)
		}
		sample.Kind = models.PatternKind(kindStr)
		if performance != "" {
			if err := json.Unmarshal([]byte(performance), &sample.Performance); err != nil {
				s.logger.WithError(err).Warn("Dropping malformed performance payload")
			}
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance samples: %w", err)
	}
	return samples, nil
}
