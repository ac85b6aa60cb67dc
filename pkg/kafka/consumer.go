package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a decoded Kafka record handed to topic handlers
type Message struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Handler processes one message. A non-nil error blocks further commits on
// the message's partition so it is retried after restart.
type Handler func(ctx context.Context, msg Message) error

// Consumer polls the ingest topics and routes records to registered handlers.
// Commits are manual: only offsets up to the last fully handled record per
// partition are committed.
type Consumer struct {
	client    *kgo.Client
	logger    *logrus.Logger
	clusterID string
	groupID   string
	handlers  map[string]Handler
	mu        sync.RWMutex
}

// NewConsumer creates a consumer group member for the given brokers
func NewConsumer(brokers []string, groupID string, clusterID string, clientID string, logger *logrus.Logger) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ClientID(clientID),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Consumer{
		client:    client,
		logger:    logger,
		clusterID: clusterID,
		groupID:   groupID,
		handlers:  make(map[string]Handler),
	}, nil
}

// AddHandler registers a handler for a topic and subscribes to it
func (c *Consumer) AddHandler(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[topic] = handler
	c.client.AddConsumeTopics(topic)
}

// Close closes the underlying client
func (c *Consumer) Close() error {
	c.client.Close()
	return nil
}

// Start polls until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			fetches := c.client.PollFetches(ctx)
			if errs := fetches.Errors(); len(errs) > 0 {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Errorf("errors while polling: %v", errs)
				continue
			}

			var records []*kgo.Record
			iter := fetches.RecordIter()
			for !iter.Done() {
				records = append(records, iter.Next())
			}

			commits := c.dispatch(ctx, records)
			if len(commits) > 0 {
				if err := c.client.CommitRecords(ctx, commits...); err != nil {
					c.logger.WithError(err).Error("Failed to commit records")
				}
			}
		}
	}
}

// dispatch runs handlers in offset order and returns, per partition, the last
// record safe to commit. Once a handler fails the rest of that partition's
// batch is skipped; committing past the failure would lose the message.
func (c *Consumer) dispatch(ctx context.Context, records []*kgo.Record) []*kgo.Record {
	type partitionKey struct {
		topic     string
		partition int32
	}
	failed := make(map[partitionKey]bool)
	committable := make(map[partitionKey]*kgo.Record)

	for _, record := range records {
		pk := partitionKey{topic: record.Topic, partition: record.Partition}
		if failed[pk] {
			continue
		}

		c.mu.RLock()
		handler, exists := c.handlers[record.Topic]
		c.mu.RUnlock()

		if !exists {
			// Commit anyway so an unrouted topic does not pin the group
			c.logger.WithField("topic", record.Topic).Warn("No handler registered for topic")
			committable[pk] = record
			continue
		}

		if err := handler(ctx, toMessage(record)); err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"topic":     record.Topic,
				"partition": record.Partition,
				"offset":    record.Offset,
			}).Error("Failed to handle message, will retry on restart")
			failed[pk] = true
			continue
		}

		committable[pk] = record
	}

	if len(committable) == 0 {
		return nil
	}
	commits := make([]*kgo.Record, 0, len(committable))
	for _, record := range committable {
		commits = append(commits, record)
	}
	return commits
}

func toMessage(record *kgo.Record) Message {
	hdrs := make(map[string]string, len(record.Headers))
	for _, h := range record.Headers {
		hdrs[h.Key] = string(h.Value)
	}
	return Message{
		Key:       record.Key,
		Value:     record.Value,
		Headers:   hdrs,
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
		Timestamp: record.Timestamp,
	}
}

// HealthCheck pings the broker
func (c *Consumer) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

func (c *Consumer) GetClient() *kgo.Client {
	return c.client
}
