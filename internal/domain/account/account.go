// Package account carries the authenticated account identifier through
// request contexts. Every store call is scoped to it.
package account

import (
	"context"
	"strings"

	"bizdesk/internal/domain/entities"
)

type ctxKey struct{}

// WithID returns a copy of ctx bound to accountID.
func WithID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, strings.TrimSpace(accountID))
}

// IDFromContext returns the account bound to ctx or ErrNotAuthenticated.
func IDFromContext(ctx context.Context) (string, error) {
	id, _ := ctx.Value(ctxKey{}).(string)
	if id == "" {
		return "", entities.ErrNotAuthenticated
	}
	return id, nil
}
