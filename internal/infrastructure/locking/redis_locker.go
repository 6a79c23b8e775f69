package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultExpiry     = 10 * time.Second
	DefaultTries      = 32
	DefaultRetryDelay = 100 * time.Millisecond
	keyPrefix         = "bizdesk:lock:"
)

type RedisOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// RedisLocker holds a redsync mutex around fn so that several API
// replicas serialise on the same key. The mutex is extended every third of
// its expiry while fn runs; if an extension fails fn's context is cancelled
// and WithLock reports the lost lock.
type RedisLocker struct {
	rs     *redsync.Redsync
	opts   RedisOptions
	logger *zap.Logger
}

var _ interfaces.ILocker = (*RedisLocker)(nil)

func NewRedisLocker(client redis.UniversalClient, opts RedisOptions, logger *zap.Logger) *RedisLocker {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Tries <= 0 {
		opts.Tries = DefaultTries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts,
		logger: logger,
	}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(
		keyPrefix+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, redsync.ErrFailed) {
			return fmt.Errorf("%w: lock %s is busy", entities.ErrStoreUnavailable, key)
		}
		return fmt.Errorf("%w: acquire lock %s: %v", entities.ErrStoreUnavailable, key, err)
	}

	defer func() {
		// A fresh context lets the release go through after ctx is cancelled.
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.Expiry)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	workCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		l.keepAlive(workCtx, mutex, key, cancel, stop)
	}()

	err := fn(workCtx)
	close(stop)
	<-stopped
	if cause := context.Cause(workCtx); errors.Is(cause, errLockLost) {
		return cause
	}
	return err
}

var errLockLost = errors.New("lock lost")

func (l *RedisLocker) keepAlive(ctx context.Context, mutex *redsync.Mutex, key string, lost context.CancelCauseFunc, stop <-chan struct{}) {
	ticker := time.NewTicker(l.opts.Expiry / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ok, err := mutex.ExtendContext(ctx); !ok || err != nil {
				l.logger.Warn("failed to extend lock", zap.String("key", key), zap.Error(err))
				lost(fmt.Errorf("%w: %w %s", entities.ErrStoreUnavailable, errLockLost, key))
				return
			}
		}
	}
}
