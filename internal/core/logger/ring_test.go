package logger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRing_KeepsNewestLines(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		_, err := fmt.Fprintf(r, "line %d\n", i)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, r.Lines(0))
	assert.Equal(t, []string{"line 4", "line 5"}, r.Lines(2))
}

func TestRing_PartiallyFilled(t *testing.T) {
	r := NewRing(10)
	_, _ = r.Write([]byte("a\nb\n"))

	assert.Equal(t, []string{"a", "b"}, r.Lines(0))
	assert.Equal(t, 10, r.Cap())
}

func TestRing_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultRingLines, NewRing(0).Cap())
}

func TestNew_TeesIntoRing(t *testing.T) {
	ring := NewRing(16)
	l, flush := New(Options{Level: "info", JSON: true, Ring: ring})
	l.Info("recipe created", zap.Int64("id", 7))
	l.Debug("dropped below level")
	flush()

	lines := ring.Lines(0)
	require.Len(t, lines, 1)
	parts := strings.Split(lines[0], " | ")
	require.GreaterOrEqual(t, len(parts), 3)
	assert.Equal(t, "INFO", parts[1])
	assert.Contains(t, parts[2], "recipe created")
	assert.Contains(t, lines[0], `"id": 7`)
}
