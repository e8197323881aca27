package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/whitelabel/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyBrandingLookup = "branding:lookup:ip:"

// Limiter throttles the public branding lookup per client address. A nil
// Limiter admits everything.
type Limiter struct {
	bucket Bucket
	rate   float64
	burst  int
	log    *zap.Logger
}

// NewBrandingLookupLimiter returns nil when rate limiting is disabled. With a
// redis address the bucket is shared across replicas, otherwise it is local.
func NewBrandingLookupLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*Limiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if err := validate(keyBrandingLookup, limitCfg.BrandingLookupRate, limitCfg.BrandingLookupBurst); err != nil {
		return nil, err
	}

	log = log.Named("ratelimit")

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		log.Info("branding lookup rate limit uses in-process buckets")
		return NewLimiter(NewLocalBucket(), limitCfg.BrandingLookupRate, limitCfg.BrandingLookupBurst, log), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("branding lookup rate limit uses redis", zap.String("addr", addr))
	return NewLimiter(NewTokenBucket(client), limitCfg.BrandingLookupRate, limitCfg.BrandingLookupBurst, log), nil
}

func NewLimiter(bucket Bucket, rate float64, burst int, log *zap.Logger) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Limiter{bucket: bucket, rate: rate, burst: burst, log: log}
}

// Allow admits one lookup from clientIP. Bucket failures admit the request.
func (l *Limiter) Allow(ctx context.Context, clientIP string) *Result {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}
	}

	res, err := l.bucket.Allow(ctx, keyBrandingLookup+strings.TrimSpace(clientIP), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed, admitting request", zap.Error(err))
		return &Result{Allowed: true, Limit: l.burst}
	}
	return res
}
