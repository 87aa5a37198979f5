package app

import (
	"context"
	"errors"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
)

// withRetry reruns fn on transient failures with doubling backoff. Business
// outcomes (domain sentinels) are returned immediately.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff << i):
		}
	}
	return err
}

func retryable(err error) bool {
	for _, sentinel := range []error{
		domain.ErrInvalidID,
		domain.ErrOfferNotFound,
		domain.ErrOfferInactive,
		domain.ErrOfferExhausted,
		domain.ErrIdempotencyConflict,
		domain.ErrPickupCodeCollision,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}
