package middleware

import (
	"fmt"
	"runtime"
)

// Recovery creates a middleware that turns a panic in the action into a
// *RecoveryError.
func Recovery(options ...MiddlewareOption) Middleware {
	config := newConfig(options)
	return RecoveryWithHandler(func(panicVal any, command string, stack []byte) error {
		if config.PrintStack && len(stack) > 0 && config.Output != nil {
			fmt.Fprintf(config.Output, "PANIC in command '%s': %v\n", command, panicVal)
			fmt.Fprintf(config.Output, "Stack trace:\n%s\n", stack)
		}
		return &RecoveryError{Panic: panicVal, Command: command, Stack: stack}
	}, options...)
}

// RecoveryWithHandler creates a recovery middleware with a custom panic
// handler. The handler's result is returned from the action.
func RecoveryWithHandler(
	handler func(panicVal any, command string, stack []byte) error,
	options ...MiddlewareOption,
) Middleware {
	config := newConfig(options)

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				var stack []byte
				if config.PrintStack {
					stack = make([]byte, config.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}
				err = handler(r, getCommandName(ctx), stack)
			}()
			return next(ctx)
		}
	}
}

// RecoveryToError recovers without printing anything.
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}
