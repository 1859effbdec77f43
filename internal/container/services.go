package container

import (
	"time"

	"github.com/samber/do"
	"github.com/serroba/keygate/internal/auth"
	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/messaging"
	"github.com/serroba/keygate/internal/metrics"
	"github.com/serroba/keygate/internal/ratelimit"
	"github.com/serroba/keygate/internal/store"
	"github.com/serroba/keygate/internal/usage"
	"go.uber.org/zap"
)

const issueRateWindow = time.Minute

// MetricsPackage provides the Prometheus metrics.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New("keygate"), nil
	})
}

// CredentialPackage provides the key service and the validator in front of it.
func CredentialPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*credential.Service, error) {
		opts := do.MustInvoke[*Options](i)

		gen, err := credential.NewGenerator(opts.KeyLength)
		if err != nil {
			return nil, err
		}

		return credential.NewService(
			do.MustInvoke[Storage](i),
			gen,
			do.MustInvoke[*metrics.Metrics](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*auth.Validator, error) {
		return auth.NewValidator(
			do.MustInvoke[*credential.Service](i),
			do.MustInvoke[*metrics.Metrics](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// UsagePackage provides the counters, the background recorder and the
// tracker feeding both. Events go to storage directly or to the stream.
func UsagePackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*usage.Counters, error) {
		return usage.NewCounters(usage.Endpoints...), nil
	})

	do.Provide(i, func(i *do.Injector) (*usage.Recorder, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var sink usage.EventStore = do.MustInvoke[Storage](i)
		if opts.UsageSink == SinkStream {
			group := do.MustInvoke[*messaging.PublisherGroup](i)
			sink = usage.NewStreamStore(messaging.NewPublishFunc[usage.Event](group.Publisher(), usage.TopicUsageRecorded))
		}

		return usage.NewRecorder(
			usage.NewBreakerStore(sink, usage.DefaultBreakerSettings, logger),
			do.MustInvoke[*metrics.Metrics](i),
			logger,
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*usage.Tracker, error) {
		return usage.NewTracker(
			do.MustInvoke[*usage.Counters](i),
			do.MustInvoke[*usage.Recorder](i),
		), nil
	})
}

// RateLimitPackage provides the issuance limiter.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.RateLimitBackend == StorageRedis {
			client := do.MustInvoke[*RedisClient](i)

			return ratelimit.NewSlidingWindowLimiter(
				store.NewRateLimitRedisStore(client.Client),
				int64(opts.IssueRateLimit),
				issueRateWindow,
			), nil
		}

		return ratelimit.NewTokenBucketLimiter(opts.IssueRateLimit, issueRateWindow), nil
	})
}

// PublisherGroupPackage provides the Redis stream publisher.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := messaging.NewRedisPublisher(client.Client, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides the consumer persisting streamed usage events.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := messaging.NewRedisSubscriber(client.Client, "usage-persister", logger)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			usage.TopicUsageRecorded,
			usage.PersistHandler(do.MustInvoke[Storage](i), logger),
			logger,
		))

		return group, nil
	})
}
