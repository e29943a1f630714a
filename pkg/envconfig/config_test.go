package envconfig

import (
	"log/slog"
	"runtime"
	"testing"
)

func TestNumThreads(t *testing.T) {
	cases := map[string]int{
		"":     runtime.GOMAXPROCS(0),
		"1":    1,
		"8":    8,
		"'4'":  4,
		"0":    runtime.GOMAXPROCS(0),
		"-2":   runtime.GOMAXPROCS(0),
		"lots": runtime.GOMAXPROCS(0),
		" 16 ": 16,
	}
	for v, want := range cases {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RAWPIPE_NUM_THREADS", v)
			if got := NumThreads(); got != want {
				t.Errorf("NumThreads() with %q = %d, want %d", v, got, want)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"0":     slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
		"2":     slog.Level(-8),
	}
	for v, want := range cases {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RAWPIPE_DEBUG", v)
			if got := LogLevel(); got != want {
				t.Errorf("LogLevel() with %q = %v, want %v", v, got, want)
			}
		})
	}
}

func TestValues(t *testing.T) {
	t.Setenv("RAWPIPE_NUM_THREADS", "3")
	vals := Values()
	if vals["RAWPIPE_NUM_THREADS"] != "3" {
		t.Errorf("Values()[RAWPIPE_NUM_THREADS] = %q, want %q", vals["RAWPIPE_NUM_THREADS"], "3")
	}
	if _, ok := vals["RAWPIPE_DEBUG"]; !ok {
		t.Error("Values() missing RAWPIPE_DEBUG")
	}
}
