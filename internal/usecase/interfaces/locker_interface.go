package interfaces

import "context"

// ILocker serializes work per key. fn runs only while the lock is held and
// its error is returned unchanged.
type ILocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
