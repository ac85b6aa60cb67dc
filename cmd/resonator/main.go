package main

import (
	"context"
	"strings"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/analyzer"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/handlers"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/metrics"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/scheduler"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/store"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/validator"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/cache"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/config"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/database"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/kafka"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/monitoring"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/redis"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/server"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("resonator")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Resonator (Repost Pattern Analysis API)")

	// PostgreSQL holds mutable state: snapshot history and durable A/B tests.
	// All record and performance-sample reads use ClickHouse.
	dbURL := config.RequireEnv("DATABASE_URL")
	clickhouseHost := config.RequireEnv("CLICKHOUSE_HOST")
	clickhouseDB := config.RequireEnv("CLICKHOUSE_DB")
	clickhouseUser := config.RequireEnv("CLICKHOUSE_USER")
	clickhousePassword := config.RequireEnv("CLICKHOUSE_PASSWORD")
	abTestBackend := config.GetEnv("AB_TEST_BACKEND", "durable")
	kafkaBrokers := config.GetEnv("KAFKA_BROKERS", "")
	clusterID := config.GetEnv("CLUSTER_ID", "")

	dbConfig := database.DefaultConfig()
	dbConfig.URL = dbURL
	pgDB := database.MustConnect(dbConfig, logger)
	defer func() { _ = pgDB.Close() }()

	chConfig := database.DefaultClickHouseConfig()
	chConfig.Addr = []string{clickhouseHost}
	chConfig.Database = clickhouseDB
	chConfig.Username = clickhouseUser
	chConfig.Password = clickhousePassword
	chConn := database.MustConnectClickHouse(chConfig, logger)
	defer func() { _ = chConn.Close() }()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("resonator", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("resonator", version.Version, version.GitCommit)

	healthChecker.AddCheck("postgres", monitoring.DatabaseHealthCheck(pgDB))
	healthChecker.AddCheck("clickhouse", monitoring.ClickHouseHealthCheck(chConn))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":    dbURL,
		"CLICKHOUSE_HOST": clickhouseHost,
		"CLICKHOUSE_DB":   clickhouseDB,
	}))

	serviceMetrics := &metrics.Metrics{
		AnalysisRuns:        metricsCollector.NewCounter("analysis_runs_total", "Analysis runs executed", []string{"operation", "status"}),
		AnalysisDuration:    metricsCollector.NewHistogram("analysis_duration_seconds", "Analysis run duration", []string{"operation"}, nil),
		CacheEvents:         metricsCollector.NewCounter("snapshot_cache_events_total", "Snapshot cache events", []string{"event"}),
		PatternApplications: metricsCollector.NewCounter("pattern_applications_total", "Pattern categories applied to content", []string{"kind"}),
		ABTestEvaluations:   metricsCollector.NewCounter("ab_test_evaluations_total", "A/B test result analyses", []string{"significant"}),
		DecayChecks:         metricsCollector.NewCounter("decay_checks_total", "Pattern decay detections", []string{"trend"}),
		IngestEvents:        metricsCollector.NewCounter("ingest_events_total", "Record ingest events", []string{"source", "status"}),
	}

	// Snapshot cache: TTL with stale-while-revalidate, invalidated on ingest
	snapshotCache := cache.New(cache.Options{
		TTL:                  config.GetEnvDuration("SNAPSHOT_CACHE_TTL", 10*time.Minute),
		StaleWhileRevalidate: config.GetEnvDuration("SNAPSHOT_CACHE_SWR", 2*time.Minute),
		MaxEntries:           config.GetEnvInt("SNAPSHOT_CACHE_MAX_ENTRIES", 512),
	}, cache.MetricsHooks{
		OnHit:   func(map[string]string) { serviceMetrics.CacheEvents.WithLabelValues("hit").Inc() },
		OnMiss:  func(map[string]string) { serviceMetrics.CacheEvents.WithLabelValues("miss").Inc() },
		OnStale: func(map[string]string) { serviceMetrics.CacheEvents.WithLabelValues("stale").Inc() },
		OnStore: func(map[string]string) { serviceMetrics.CacheEvents.WithLabelValues("store").Inc() },
		OnError: func(map[string]string) { serviceMetrics.CacheEvents.WithLabelValues("error").Inc() },
	})

	// Stores
	recordStore := store.NewRecordStore(chConn, logger)
	snapshotStore := store.NewSnapshotStore(pgDB, logger)
	performanceStore := store.NewPerformanceStore(chConn, logger)

	// A/B test persistence is a deployment choice: durable Postgres state
	// honoring duration_days, or a renewable short-lived Redis cache.
	var testStore validator.TestStore
	switch abTestBackend {
	case "cache":
		redisURL := config.RequireEnv("REDIS_URL")
		redisClient, err := redis.NewClientFromURL(context.Background(), redisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis for A/B test cache")
		}
		defer func() { _ = redisClient.Close() }()
		healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(redisClient))
		ttl := config.GetEnvDuration("AB_TEST_TTL", store.DefaultTestTTL)
		testStore = store.NewCachedTestStore(redisClient, ttl, logger)
		logger.WithFields(logging.Fields{"ttl": ttl}).Info("A/B tests backed by Redis cache")
	default:
		testStore = store.NewDurableTestStore(pgDB, logger)
		logger.Info("A/B tests backed by Postgres")
	}

	// Tone/stopword vocabulary, optionally overridden from a YAML file
	definitions, err := analyzer.LoadDefinitions(config.GetEnv("PATTERN_DEFINITIONS_FILE", ""))
	if err != nil {
		logger.WithError(err).Warn("Falling back to built-in pattern definitions")
	}

	patternAnalyzer := analyzer.New(recordStore, snapshotStore, snapshotCache, logger, definitions).
		WithMetrics(analyzer.Metrics{
			OnAnalysis: func(scope, status string) {
				serviceMetrics.AnalysisRuns.WithLabelValues("compute", status).Inc()
			},
			OnDuration: func(scope string, d time.Duration) {
				serviceMetrics.AnalysisDuration.WithLabelValues("compute").Observe(d.Seconds())
			},
		})

	patternValidator := validator.New(patternAnalyzer, testStore, performanceStore, logger).
		WithMetrics(validator.Metrics{
			OnApply: func(kind models.PatternKind) {
				serviceMetrics.PatternApplications.WithLabelValues(string(kind)).Inc()
			},
			OnABEval: func(significant bool) {
				label := "false"
				if significant {
					label = "true"
				}
				serviceMetrics.ABTestEvaluations.WithLabelValues(label).Inc()
			},
			OnDecayCheck: func(trend string) {
				serviceMetrics.DecayChecks.WithLabelValues(trend).Inc()
			},
		})

	// Kafka: consume ingest events for cache invalidation, publish
	// analysis-completed events. Optional; the HTTP ingest path covers
	// single-process deployments.
	var producer *kafka.KafkaProducer
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")

		producer, err = kafka.NewKafkaProducer(brokers, clusterID, "resonator-producer", logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer func() { _ = producer.Close() }()
		healthChecker.AddCheck("kafka_producer", monitoring.KafkaProducerHealthCheck(producer.GetClient()))

		consumer, err := kafka.NewConsumer(brokers, "resonator-analytics", clusterID, "resonator-consumer", logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka consumer")
		}
		defer func() { _ = consumer.Close() }()
		healthChecker.AddCheck("kafka_consumer", monitoring.KafkaConsumerHealthCheck(consumer.GetClient()))

		consumer.AddHandler(kafka.TopicRepostObserved, func(ctx context.Context, msg kafka.Message) error {
			evt, err := kafka.DecodeRepostObserved(msg.Value)
			if err != nil {
				serviceMetrics.IngestEvents.WithLabelValues("kafka", "error").Inc()
				if dlqErr := producer.PublishDLQ(msg, err, "resonator-analytics"); dlqErr != nil {
					logger.WithError(dlqErr).Error("Failed to publish DLQ message")
				}
				return nil
			}
			patternAnalyzer.Invalidate(evt.SourceHandle)
			serviceMetrics.IngestEvents.WithLabelValues("kafka", "success").Inc()
			return nil
		})
		consumer.AddHandler(kafka.TopicEngagementUpdated, func(ctx context.Context, msg kafka.Message) error {
			evt, err := kafka.DecodeEngagementUpdated(msg.Value)
			if err != nil {
				if dlqErr := producer.PublishDLQ(msg, err, "resonator-analytics"); dlqErr != nil {
					logger.WithError(dlqErr).Error("Failed to publish DLQ message")
				}
				return nil
			}
			patternAnalyzer.Invalidate(evt.SourceHandle)
			return nil
		})

		consumerCtx, consumerCancel := context.WithCancel(context.Background())
		defer consumerCancel()
		go func() {
			if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
				logger.WithError(err).Error("Kafka consumer stopped")
			}
		}()
	}

	// Scheduler: periodic full re-analysis over every known scope
	interval := scheduler.ParseInterval(config.GetEnv("ANALYSIS_INTERVAL", "daily"))
	intervalGauge := metricsCollector.NewGauge("analysis_interval_seconds", "Configured re-analysis cadence", []string{})
	intervalGauge.WithLabelValues().Set(interval.Seconds())
	var publisher scheduler.EventPublisher
	if producer != nil {
		publisher = producer
	}
	taskScheduler := scheduler.NewScheduler(patternAnalyzer, recordStore, publisher, interval, logger)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	// HTTP surface
	handlers.Init(patternAnalyzer, patternValidator, snapshotStore, recordStore, logger, serviceMetrics)
	router := server.SetupServiceRouter(logger, "resonator", healthChecker, metricsCollector)
	handlers.Register(router.Group("/api/v1"))

	serverConfig := server.DefaultConfig("resonator", "18010")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
