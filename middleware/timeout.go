package middleware

import (
	"context"
	"time"
)

// Timeout creates a middleware that enforces a timeout on command execution.
// The action keeps running in its goroutine after a timeout; it should watch
// ctx.Done(), which is closed when the deadline passes.
func Timeout(duration time.Duration) Middleware {
	return DynamicTimeout(func(Context) time.Duration { return duration })
}

// TimeoutWithDefault uses the DefaultTimeout of the given options.
func TimeoutWithDefault(options ...MiddlewareOption) Middleware {
	return Timeout(newConfig(options).DefaultTimeout)
}

// TimeoutFromFlag reads the timeout from a duration option, falling back to
// defaultTimeout when the option has no value.
func TimeoutFromFlag(flagName string, defaultTimeout time.Duration) Middleware {
	return DynamicTimeout(func(ctx Context) time.Duration {
		if d, ok := ctx.Duration(flagName); ok && d > 0 {
			return d
		}
		return defaultTimeout
	})
}

// DynamicTimeout computes the timeout per run. A non-positive duration
// disables it.
func DynamicTimeout(timeoutFunc func(ctx Context) time.Duration) Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			duration := timeoutFunc(ctx)
			if duration <= 0 {
				return next(ctx)
			}

			parent := context.Background()
			if c, ok := any(ctx).(interface{ Context() context.Context }); ok {
				parent = c.Context()
			}
			timeoutCtx, cancel := context.WithTimeout(parent, duration)
			defer cancel()

			resultChan := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						resultChan <- &RecoveryError{Panic: r, Command: getCommandName(ctx)}
					}
				}()
				resultChan <- next(ctx)
			}()

			select {
			case err := <-resultChan:
				return err
			case <-timeoutCtx.Done():
				if parent.Err() != nil {
					return parent.Err()
				}
				ctx.Cancel()
				return &TimeoutError{Duration: duration, Command: getCommandName(ctx)}
			}
		}
	}
}
