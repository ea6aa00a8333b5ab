package broker

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"tradeforge/internal/types"
)

// ErrorClass classifies broker errors following RPC status semantics. Live
// adapters retry only the transient classes; a backtest rejection is the
// analog of ClassFailedPrecondition and must never be retried.
type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassInvalidArgument
	ClassFailedPrecondition
	ClassNotFound
	ClassPermissionDenied
	ClassUnavailable
	ClassDeadlineExceeded
	ClassResourceExhausted
)

func (c ErrorClass) String() string {
	switch c {
	case ClassInvalidArgument:
		return "invalid_argument"
	case ClassFailedPrecondition:
		return "failed_precondition"
	case ClassNotFound:
		return "not_found"
	case ClassPermissionDenied:
		return "permission_denied"
	case ClassUnavailable:
		return "unavailable"
	case ClassDeadlineExceeded:
		return "deadline_exceeded"
	case ClassResourceExhausted:
		return "resource_exhausted"
	default:
		return "internal"
	}
}

// Retryable reports whether errors of this class are safe to retry with
// backoff.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ClassUnavailable, ClassDeadlineExceeded, ClassResourceExhausted:
		return true
	default:
		return false
	}
}

// Classify maps an error to its ErrorClass.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassInternal
	case errors.Is(err, types.ErrInvalidOrderQty),
		errors.Is(err, types.ErrEmptyTarget):
		return ClassInvalidArgument
	case errors.Is(err, types.ErrCannotCancelCompleted),
		errors.Is(err, types.ErrCannotCloseMoreThanHeld):
		return ClassFailedPrecondition
	case errors.Is(err, types.ErrOrderNotFound),
		errors.Is(err, types.ErrPositionNotFound):
		return ClassNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return ClassDeadlineExceeded
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassDeadlineExceeded
		}
		return ClassUnavailable
	}

	return ClassInternal
}

// Retry calls fn up to maxAttempts times with exponential backoff and
// jitter, starting at baseDelay. It gives up immediately on errors whose
// class is not retryable, and respects context cancellation between
// attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !Classify(err).Retryable() {
			return err
		}

		if attempt < maxAttempts-1 {
			jittered := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jittered):
			}
			delay *= 2
		}
	}

	return err
}
