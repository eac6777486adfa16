package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Service limits how often a caller may hit the mutating API. Financial
// mutations are cheap for the engine but expensive to untangle when a
// misbehaving client floods them.
type Service interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type redisService struct {
	client *redis.Client
	logger *logrus.Logger
}

// Config configures the rate limiter.
type Config struct {
	Enabled  bool
	RedisURL string
}

// New creates a redis-backed rate limiter, or a noop one when disabled.
func New(config Config, logger *logrus.Logger) (Service, error) {
	if !config.Enabled {
		logger.Info("rate limiting disabled")
		return &noopService{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("rate limiting service initialized")
	return &redisService{client: client, logger: logger}, nil
}

// Allow increments the caller's counter in the window and reports whether
// the call is still under the limit.
func (s *redisService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipeline := s.client.Pipeline()
	incr := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)
	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("failed to increment rate limit counter")
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := incr.Val()
	if count > int64(limit) {
		s.logger.WithFields(logrus.Fields{
			"key":   key,
			"count": count,
			"limit": limit,
		}).Warn("rate limit exceeded")
		return false, nil
	}
	return true, nil
}

type noopService struct{}

func (n *noopService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
