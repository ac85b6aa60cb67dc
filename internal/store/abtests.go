package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/database"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// ErrTestNotFound is returned when an A/B test id is absent or expired
var ErrTestNotFound = errors.New("ab test not found")

// DurableTestStore keeps A/B tests in Postgres with an explicit expiry
// matching the test's stated duration. Reads past end_date report not-found.
type DurableTestStore struct {
	db     database.PostgresConn
	logger logging.Logger
}

func NewDurableTestStore(db database.PostgresConn, logger logging.Logger) *DurableTestStore {
	return &DurableTestStore{db: db, logger: logger}
}

func (s *DurableTestStore) SaveTest(ctx context.Context, test *models.ABTest) error {
	payload, err := json.Marshal(test)
	if err != nil {
		return fmt.Errorf("marshal ab test: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ab_tests (id, scope, payload, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			status = EXCLUDED.status,
			end_date = EXCLUDED.end_date`,
		test.ID, test.Scope, payload, test.Status, test.StartDate, test.EndDate,
	)
	if err != nil {
		return fmt.Errorf("upsert ab test: %w", err)
	}
	return nil
}

func (s *DurableTestStore) GetTest(ctx context.Context, id string) (*models.ABTest, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM ab_tests
		WHERE id = $1 AND end_date > NOW()`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ab test: %w", err)
	}

	var test models.ABTest
	if err := json.Unmarshal(payload, &test); err != nil {
		return nil, fmt.Errorf("unmarshal ab test: %w", err)
	}
	return &test, nil
}

// CachedTestStore keeps A/B tests in Redis under a renewable TTL. A test can
// silently expire before its stated duration elapses; every save renews the
// clock.
type CachedTestStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
	logger logging.Logger
}

// DefaultTestTTL is the renewable lifetime for cached tests
const DefaultTestTTL = 3600 * time.Second

func NewCachedTestStore(client goredis.UniversalClient, ttl time.Duration, logger logging.Logger) *CachedTestStore {
	if ttl <= 0 {
		ttl = DefaultTestTTL
	}
	return &CachedTestStore{client: client, ttl: ttl, logger: logger}
}

func testKey(id string) string {
	return "abtest:" + id
}

func (s *CachedTestStore) SaveTest(ctx context.Context, test *models.ABTest) error {
	payload, err := json.Marshal(test)
	if err != nil {
		return fmt.Errorf("marshal ab test: %w", err)
	}
	if err := s.client.Set(ctx, testKey(test.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache ab test: %w", err)
	}
	return nil
}

func (s *CachedTestStore) GetTest(ctx context.Context, id string) (*models.ABTest, error) {
	payload, err := s.client.Get(ctx, testKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cached ab test: %w", err)
	}

	var test models.ABTest
	if err := json.Unmarshal(payload, &test); err != nil {
		return nil, fmt.Errorf("unmarshal ab test: %w", err)
	}
	return &test, nil
}
