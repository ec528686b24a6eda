package adapter

import "context"

// TurnLimiter throttles chat turns per key (session ID).
type TurnLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
