package querycache

import (
	"context"
	"errors"
	"time"

	"groom-admin-backend/internal/apperrors"
)

const maxRetryDelay = 30 * time.Second

// DefaultRetryDelay doubles from one second, capped at thirty.
func DefaultRetryDelay(attempt int) time.Duration {
	d := time.Second << attempt
	if d <= 0 || d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// retryWithBackoff runs fn until it succeeds, retries are exhausted or ctx
// ends. The last error is returned as is.
func retryWithBackoff(ctx context.Context, fn func(context.Context) error, retries int, delay func(int) time.Duration) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == retries || !retryable(err) {
			break
		}

		timer := time.NewTimer(delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func retryable(err error) bool {
	var (
		validation *apperrors.ValidationError
		configErr  *apperrors.ConfigurationError
	)
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.As(err, &validation),
		errors.As(err, &configErr):
		return false
	}
	return true
}
