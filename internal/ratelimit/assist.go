package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/tvnrapp/relationship-os/internal/config"
)

const keyAssistUser = "assist:user:%s"

// AssistLimiter throttles the AI endpoints per user. A nil limiter means
// rate limiting is disabled and everything is allowed.
type AssistLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAssistLimiter(cfg config.Config) (*AssistLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.AssistRate <= 0 || limitCfg.AssistBurst <= 0 {
		return nil, errors.New("assist rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &AssistLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.AssistRate,
		burst:  limitCfg.AssistBurst,
	}, nil
}

func (l *AssistLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one token for the user. Disabled limiters always allow.
func (l *AssistLimiter) Allow(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAssistUser, strings.TrimSpace(userID)), l.rate, l.burst)
}
