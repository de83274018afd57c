package api

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// userLimiter keeps one token bucket per authenticated user.
type userLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[uuid.UUID]*rate.Limiter
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		limit:    limit,
		burst:    burst,
		visitors: make(map[uuid.UUID]*rate.Limiter),
	}
}

func (l *userLimiter) allow(userID uuid.UUID) bool {
	l.mu.Lock()
	limiter, ok := l.visitors[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.visitors[userID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
