package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	checkTimeout = 5 * time.Second
)

// HealthStatus is the aggregate health report served on /health
type HealthStatus struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult is the outcome of a single named check
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthCheck is a function that performs a health check
type HealthCheck func() CheckResult

// HealthChecker runs registered checks and folds them into one status
type HealthChecker struct {
	service string
	version string
	checks  map[string]HealthCheck
}

// NewHealthChecker creates a new health checker instance
func NewHealthChecker(service, version string) *HealthChecker {
	return &HealthChecker{
		service: service,
		version: version,
		checks:  make(map[string]HealthCheck),
	}
}

// AddCheck registers a named health check
func (hc *HealthChecker) AddCheck(name string, check HealthCheck) {
	hc.checks[name] = check
}

// CheckHealth runs all checks. Any unhealthy check makes the whole service
// unhealthy; an unknown status counts as unhealthy.
func (hc *HealthChecker) CheckHealth() HealthStatus {
	status := HealthStatus{
		Service:   hc.service,
		Version:   hc.version,
		Timestamp: time.Now().Unix(),
		Checks:    make(map[string]CheckResult),
	}

	anyUnhealthy := false
	anyDegraded := false
	for name, check := range hc.checks {
		result := check()
		status.Checks[name] = result
		switch result.Status {
		case StatusHealthy:
		case StatusDegraded:
			anyDegraded = true
		default:
			anyUnhealthy = true
		}
	}

	switch {
	case anyUnhealthy:
		status.Status = StatusUnhealthy
	case anyDegraded:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}

	return status
}

// Handler returns the gin handler for the health check endpoint
func (hc *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := hc.CheckHealth()
		statusCode := http.StatusOK
		if health.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}

// pingCheck wraps a ping function into a latency-reporting check
func pingCheck(target string, ping func(context.Context) error) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		if ping == nil {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s client is nil", target),
				Latency: time.Since(start).String(),
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		err := ping(ctx)
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s ping failed: %v", target, err),
				Latency: duration.String(),
			}
		}
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%s connection healthy", target),
			Latency: duration.String(),
		}
	}
}

// DatabaseHealthCheck pings the PostgreSQL connection
func DatabaseHealthCheck(db *sql.DB) HealthCheck {
	return pingCheck("database", db.PingContext)
}

// ClickHouseHealthCheck pings the ClickHouse SQL connection
func ClickHouseHealthCheck(db *sql.DB) HealthCheck {
	if db == nil {
		return pingCheck("clickhouse", nil)
	}
	return pingCheck("clickhouse", db.PingContext)
}

// KafkaProducerHealthCheck pings the brokers through the producer client
func KafkaProducerHealthCheck(client *kgo.Client) HealthCheck {
	if client == nil {
		return pingCheck("kafka producer", nil)
	}
	return pingCheck("kafka producer", client.Ping)
}

// KafkaConsumerHealthCheck pings the brokers through the consumer client
func KafkaConsumerHealthCheck(client *kgo.Client) HealthCheck {
	if client == nil {
		return pingCheck("kafka consumer", nil)
	}
	return pingCheck("kafka consumer", client.Ping)
}

// RedisHealthCheck pings the Redis backing the A/B test cache
func RedisHealthCheck(client goredis.UniversalClient) HealthCheck {
	if client == nil {
		return pingCheck("redis", nil)
	}
	return pingCheck("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// ConfigurationHealthCheck reports unhealthy while any required setting is empty
func ConfigurationHealthCheck(configs map[string]string) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		missing := []string{}
		for key, value := range configs {
			if value == "" {
				missing = append(missing, key)
			}
		}

		if len(missing) > 0 {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("Missing required configuration: %v", missing),
				Latency: time.Since(start).String(),
			}
		}
		return CheckResult{
			Status:  StatusHealthy,
			Message: "All required configuration present",
			Latency: time.Since(start).String(),
		}
	}
}
