package core

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

// Progress always lands in [0,100], whatever the container reports
func TestProgress_Property(t *testing.T) {
	f := func(index, total int32) bool {
		p := Progress(int(index), int(total))
		return p >= 0 && p <= 100 && !math.IsNaN(p)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 1000}); err != nil {
		t.Error(err)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name         string
		index, total int
		want         float64
	}{
		{"start", 0, 10, 0},
		{"first frame", 1, 10, 10},
		{"half", 5, 10, 50},
		{"last frame", 10, 10, 100},
		{"overrun clamps", 12, 10, 100},
		{"unknown total", 5, 0, 0},
		{"negative total", 5, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Progress(tt.index, tt.total), 1e-9)
		})
	}
}

func TestProgressTrackerNeverDecreases(t *testing.T) {
	var pt progressTracker
	assert.InDelta(t, 50.0, pt.update(5, 10), 1e-9)
	assert.InDelta(t, 50.0, pt.update(3, 10), 1e-9)
	assert.InDelta(t, 70.0, pt.update(7, 10), 1e-9)
}

func TestClampPercentage(t *testing.T) {
	assert.Equal(t, 0.0, clampPercentage(math.NaN()))
	assert.Equal(t, 0.0, clampPercentage(-3))
	assert.Equal(t, 100.0, clampPercentage(math.Inf(1)))
	assert.Equal(t, 42.5, clampPercentage(42.5))
}
