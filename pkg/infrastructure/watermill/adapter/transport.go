package adapter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const (
	TransportGoChannel = "gochannel"
	TransportRedis     = "redis"
	TransportKafka     = "kafka"
)

// TransportConfig escolhe e configura o transporte dos eventos de domínio.
type TransportConfig struct {
	Kind          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KafkaBrokers  []string
	ConsumerGroup string
	Consumer      string
}

// Transport agrupa o par publisher/subscriber de um backend do watermill.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	closers    []func() error
}

// Close fecha subscriber, publisher e conexões auxiliares, nesta ordem.
func (t *Transport) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewTransport cria o publisher/subscriber conforme cfg.Kind.
func NewTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", TransportGoChannel:
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
		return &Transport{
			Publisher:  pubSub,
			Subscriber: pubSub,
			closers:    []func() error{pubSub.Close},
		}, nil
	case TransportRedis:
		return newRedisTransport(cfg, logger)
	case TransportKafka:
		return newKafkaTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Kind)
	}
}

func newRedisTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	t := &Transport{closers: []func() error{client.Close}}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("redis publisher: %w", err)
	}
	t.Publisher = publisher
	t.closers = append(t.closers, publisher.Close)

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: cfg.ConsumerGroup,
		Consumer:      cfg.Consumer,
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("redis subscriber: %w", err)
	}
	t.Subscriber = subscriber
	t.closers = append(t.closers, subscriber.Close)

	return t, nil
}

func newKafkaTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("kafka transport requires at least one broker")
	}
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: marshaler,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	t := &Transport{Publisher: publisher, closers: []func() error{publisher.Close}}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.ClientID = cfg.Consumer

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.KafkaBrokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         cfg.ConsumerGroup,
		OverwriteSaramaConfig: saramaConfig,
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("kafka subscriber: %w", err)
	}
	t.Subscriber = subscriber
	t.closers = append(t.closers, subscriber.Close)

	return t, nil
}
