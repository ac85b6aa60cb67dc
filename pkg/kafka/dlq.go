package kafka

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// DLQPayload captures enough context to replay or inspect a failed Kafka message.
type DLQPayload struct {
	Topic        string            `json:"topic"`
	Partition    int32             `json:"partition"`
	Offset       int64             `json:"offset"`
	Timestamp    time.Time         `json:"timestamp"`
	KeyBase64    string            `json:"key_base64,omitempty"`
	ValueBase64  string            `json:"value_base64"`
	Headers      map[string]string `json:"headers,omitempty"`
	SourceHandle string            `json:"source_handle,omitempty"`
	Error        string            `json:"error"`
	Consumer     string            `json:"consumer"`
}

// EncodeDLQMessage serializes a Kafka message into a DLQ-safe payload. The
// source handle is lifted out of the original payload when present so DLQ
// consumers can triage per scope without decoding the base64 body.
func EncodeDLQMessage(msg Message, err error, consumer string) ([]byte, error) {
	payload := DLQPayload{
		Topic:       msg.Topic,
		Partition:   msg.Partition,
		Offset:      msg.Offset,
		Timestamp:   msg.Timestamp,
		ValueBase64: base64.StdEncoding.EncodeToString(msg.Value),
		Headers:     msg.Headers,
		Consumer:    consumer,
	}

	if len(msg.Key) > 0 {
		payload.KeyBase64 = base64.StdEncoding.EncodeToString(msg.Key)
	}

	if err != nil {
		payload.Error = err.Error()
	}

	handle := msg.Headers["source_handle"]
	var probe struct {
		SourceHandle string `json:"source_handle"`
	}
	if jsonErr := json.Unmarshal(msg.Value, &probe); jsonErr == nil && probe.SourceHandle != "" {
		handle = probe.SourceHandle
	}
	if handle != "" {
		payload.SourceHandle = handle
		if payload.Headers == nil {
			payload.Headers = make(map[string]string, 1)
		}
		payload.Headers["source_handle"] = handle
	}

	b, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal dlq payload: %w", marshalErr)
	}

	return b, nil
}
