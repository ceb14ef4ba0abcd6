package kv

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend     string
	Path        string // bolt
	Redis       RedisOptions
	PostgresDSN string
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Store, error) {
	log = log.With(zap.String("backend", opts.Backend))

	switch opts.Backend {
	case BackendMemory:
		log.Warn("using in-memory storage; progress is lost on exit")
		return NewMemory(), nil
	case BackendBolt:
		log.Info("opening storage", zap.String("path", opts.Path))
		return OpenBolt(opts.Path)
	case BackendRedis:
		log.Info("opening storage", zap.String("addr", opts.Redis.Addr), zap.Int("db", opts.Redis.DB))
		return OpenRedis(ctx, opts.Redis)
	case BackendPostgres:
		log.Info("opening storage")
		return OpenPostgres(opts.PostgresDSN, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
