package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// DefaultRingLines is used when the configured capacity is not positive.
const DefaultRingLines = 1000

// Ring keeps the most recent log lines in a fixed-size circular buffer.
// It is a zapcore.WriteSyncer so it can sit in a tee next to stdout.
type Ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingLines
	}
	return &Ring{lines: make([]string, capacity)}
}

func (r *Ring) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\r\n")
	r.mu.Lock()
	for _, line := range strings.Split(text, "\n") {
		r.lines[r.next] = line
		r.next = (r.next + 1) % len(r.lines)
		if r.next == 0 {
			r.full = true
		}
	}
	r.mu.Unlock()
	return len(p), nil
}

func (r *Ring) Sync() error { return nil }

// Lines returns up to limit of the newest lines, oldest first. A limit of
// zero or less returns everything buffered.
func (r *Ring) Lines(limit int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	if r.full {
		out = append(out, r.lines[r.next:]...)
	}
	out = append(out, r.lines[:r.next]...)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func (r *Ring) Cap() int { return len(r.lines) }

// ringEncoder renders "2006-01-02 15:04:05 | INFO | message {fields}".
func ringEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " | ",
	})
}
