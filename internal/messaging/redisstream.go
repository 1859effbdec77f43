package messaging

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisPublisher creates a watermill publisher writing to Redis streams.
func NewRedisPublisher(client redis.UniversalClient, logger *zap.Logger) (*redisstream.Publisher, error) {
	return redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: client},
		NewLoggerAdapter(logger),
	)
}

// NewRedisSubscriber creates a watermill subscriber reading Redis streams as
// part of the given consumer group.
func NewRedisSubscriber(
	client redis.UniversalClient,
	consumerGroup string,
	logger *zap.Logger,
) (*redisstream.Subscriber, error) {
	return redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroup,
		},
		NewLoggerAdapter(logger),
	)
}
