package utils

import (
	"context"
	"time"
)

// DefaultQueryTimeout is the default timeout for database queries
const DefaultQueryTimeout = 30 * time.Second

// SlowQueryTimeout is for multi-statement work like cascade deletes
const SlowQueryTimeout = 60 * time.Second

// GetQueryContext returns a context with timeout for database queries.
// If parent context is nil a background context is used.
func GetQueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

// GetDefaultQueryContext returns a context with default timeout
func GetDefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, DefaultQueryTimeout)
}

// GetSlowQueryContext returns a context with slow query timeout
func GetSlowQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, SlowQueryTimeout)
}
