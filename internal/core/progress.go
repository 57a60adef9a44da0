package core

import "math"

// Progress returns index/total as a percentage in [0,100].
// An unknown total (<= 0) yields 0.
func Progress(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clampPercentage(float64(index) / float64(total) * 100)
}

func clampPercentage(pct float64) float64 {
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// progressTracker keeps published progress non-decreasing within a session
type progressTracker struct {
	last float64
}

func (pt *progressTracker) update(index, total int) float64 {
	p := Progress(index, total)
	if p < pt.last {
		p = pt.last
	}
	pt.last = p
	return p
}
