package core

import "time"

// statsWindow is about one second of ticks at the preview cadence
const statsWindow = 30

// Stats summarizes tick timings for one session
type Stats struct {
	Ticks         int
	LastTransform time.Duration
	AvgTransform  time.Duration
	LastWrite     time.Duration
	AvgWrite      time.Duration
	Started       time.Time
	Elapsed       time.Duration
}

// ProcessingFPS returns transformed frames per second of wall time
func (s Stats) ProcessingFPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Ticks) / s.Elapsed.Seconds()
}

type statsRecorder struct {
	ticks          int
	started        time.Time
	stopped        time.Time
	transformTimes []time.Duration
	writeTimes     []time.Duration
}

func (sr *statsRecorder) start(now time.Time) {
	sr.started = now
}

func (sr *statsRecorder) stop(now time.Time) {
	if sr.stopped.IsZero() {
		sr.stopped = now
	}
}

func (sr *statsRecorder) recordTransform(d time.Duration) {
	sr.ticks++
	sr.transformTimes = appendWindow(sr.transformTimes, d)
}

func (sr *statsRecorder) recordWrite(d time.Duration) {
	sr.writeTimes = appendWindow(sr.writeTimes, d)
}

func (sr *statsRecorder) snapshot(now time.Time) Stats {
	s := Stats{
		Ticks:         sr.ticks,
		Started:       sr.started,
		LastTransform: last(sr.transformTimes),
		AvgTransform:  average(sr.transformTimes),
		LastWrite:     last(sr.writeTimes),
		AvgWrite:      average(sr.writeTimes),
	}
	if !sr.started.IsZero() {
		end := now
		if !sr.stopped.IsZero() {
			end = sr.stopped
		}
		s.Elapsed = end.Sub(sr.started)
	}
	return s
}

func appendWindow(times []time.Duration, d time.Duration) []time.Duration {
	times = append(times, d)
	if len(times) > statsWindow {
		times = times[len(times)-statsWindow:]
	}
	return times
}

func last(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	return times[len(times)-1]
}

func average(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	var total time.Duration
	for _, t := range times {
		total += t
	}
	return total / time.Duration(len(times))
}
