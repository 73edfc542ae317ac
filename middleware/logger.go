package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// RequestInfo describes one action run.
type RequestInfo struct {
	ID        string        `json:"id"`
	Command   string        `json:"command"`
	Args      []string      `json:"args,omitempty"`
	StartTime time.Time     `json:"start"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// Logger creates a middleware that logs command execution
func Logger(options ...MiddlewareOption) Middleware {
	config := newConfig(options)

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			if config.LogLevel == LogLevelNone || config.Output == nil {
				return next(ctx)
			}

			info := &RequestInfo{
				ID:        ctx.ID(),
				Command:   strings.Join(ctx.CommandPath(), " "),
				StartTime: time.Now(),
			}
			if config.IncludeArgs {
				info.Args = ctx.Args()
			}

			if config.LogLevel >= LogLevelDebug {
				writeLog(config, info, "START")
			}

			err := next(ctx)

			info.Duration = time.Since(info.StartTime)
			level := "SUCCESS"
			if err != nil {
				info.Error = err.Error()
				level = "ERROR"
			}
			if shouldLog(config.LogLevel, level) {
				writeLog(config, info, level)
			}
			return err
		}
	}
}

// LoggerWithWriter logs to writer instead of stderr.
func LoggerWithWriter(writer io.Writer, options ...MiddlewareOption) Middleware {
	return Logger(append(options, WithOutput(writer))...)
}

// JSONLogger logs one JSON object per action to stderr.
func JSONLogger(options ...MiddlewareOption) Middleware {
	return Logger(append(options, WithLogFormat(LogFormatJSON))...)
}

// DebugLogger also logs when an action starts.
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

func shouldLog(configLevel LogLevel, messageLevel string) bool {
	switch messageLevel {
	case "ERROR":
		return configLevel >= LogLevelError
	case "START":
		return configLevel >= LogLevelDebug
	default:
		return configLevel >= LogLevelInfo
	}
}

func writeLog(config *MiddlewareConfig, info *RequestInfo, level string) {
	if config.LogFormat == LogFormatJSON {
		entry := struct {
			Level string `json:"level"`
			*RequestInfo
		}{level, info}
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		fmt.Fprintln(config.Output, string(data))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", level, info.ID, info.Command)
	if len(info.Args) > 0 {
		fmt.Fprintf(&b, " args=%q", info.Args)
	}
	if level != "START" {
		fmt.Fprintf(&b, " duration=%s", info.Duration)
	}
	if info.Error != "" {
		fmt.Fprintf(&b, " error=%q", info.Error)
	}
	fmt.Fprintln(config.Output, b.String())
}
