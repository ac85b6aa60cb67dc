package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Topics consumed and produced by the analytics service
const (
	TopicRepostObserved    = "reposts.observed"
	TopicEngagementUpdated = "reposts.engagement"
	TopicAnalysisCompleted = "analysis.completed"
	TopicDLQ               = "analytics.dlq"
)

// RepostObservedEvent is emitted by the ingestion pipeline whenever a new
// repost record lands. The analytics core reacts by invalidating cached
// snapshots for the record's scope; it never writes records itself.
type RepostObservedEvent struct {
	EventID       string              `json:"event_id"`
	SourceHandle  string              `json:"source_handle"`
	Record        models.RepostRecord `json:"record"`
	Timestamp     time.Time           `json:"timestamp"`
	SchemaVersion string              `json:"schema_version"`
}

// EngagementUpdatedEvent is emitted when engagement counts for an existing
// record are refreshed.
type EngagementUpdatedEvent struct {
	EventID      string    `json:"event_id"`
	RecordID     string    `json:"record_id"`
	SourceHandle string    `json:"source_handle"`
	RepostCount  int       `json:"repost_count"`
	LikeCount    int       `json:"like_count"`
	ReplyCount   int       `json:"reply_count"`
	QuoteCount   int       `json:"quote_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// AnalysisCompletedEvent is published after every analysis run so downstream
// consumers (dashboard, prompt builder) can refresh.
type AnalysisCompletedEvent struct {
	EventID     string    `json:"event_id"`
	Scope       string    `json:"scope"`
	RecordCount int       `json:"record_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DecodeRepostObserved parses a repost-observed event payload
func DecodeRepostObserved(value []byte) (RepostObservedEvent, error) {
	var evt RepostObservedEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		return evt, fmt.Errorf("decode repost observed event: %w", err)
	}
	return evt, nil
}

// DecodeEngagementUpdated parses an engagement-updated event payload
func DecodeEngagementUpdated(value []byte) (EngagementUpdatedEvent, error) {
	var evt EngagementUpdatedEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		return evt, fmt.Errorf("decode engagement updated event: %w", err)
	}
	return evt, nil
}

// ConsumerInterface defines the interface for Kafka consumers
type ConsumerInterface interface {
	Start(ctx context.Context) error
	Close() error
	HealthCheck() error
}

// ProducerInterface defines the interface for Kafka producers
type ProducerInterface interface {
	ProduceMessage(topic string, key []byte, value []byte, headers map[string]string) error
	Close() error
	HealthCheck() error
}
