// Package envconfig reads rawpipe settings from the environment.
//
// Values are read on every call so tests and long-running hosts can change
// them without restarting.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var returns the trimmed value of an environment variable with surrounding
// quotes removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel returns the configured log level.
// RAWPIPE_DEBUG: 0/false = INFO (default), 1/true = DEBUG, 2 = TRACE.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("RAWPIPE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// NumThreads returns the number of workers used for per-row fan-out.
// RAWPIPE_NUM_THREADS overrides the default of GOMAXPROCS.
func NumThreads() int {
	return int(Uint("RAWPIPE_NUM_THREADS", uint(runtime.GOMAXPROCS(0)))())
}

// Uint returns a getter for a positive integer variable. Zero and malformed
// values fall back to the default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil || n == 0 {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EnvVar describes one setting for display.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every setting with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"RAWPIPE_DEBUG":       {"RAWPIPE_DEBUG", LogLevel(), "Show additional debug information (e.g. RAWPIPE_DEBUG=1)"},
		"RAWPIPE_NUM_THREADS": {"RAWPIPE_NUM_THREADS", NumThreads(), "Worker count for row-parallel processing (default GOMAXPROCS)"},
	}
}

// Values returns every setting formatted as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
