// Session state for one opened video
package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the pipeline lifecycle state
type State int

const (
	StateIdle State = iota
	StateLoaded
	StatePlaying
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StatePlaying:
		return "playing"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions happen in this session
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// SessionInfo is a read-only snapshot of a session
type SessionInfo struct {
	ID            string
	Path          string
	State         State
	Stream        StreamInfo
	FrameIndex    int
	Progress      float64
	Recording     bool
	OutputPath    string
	FramesWritten int
	Stats         Stats
	// Err is the failure that ended the session or aborted its recording
	Err error
}

// Session owns the capture and writer handles of one opened video.
// All fields are guarded by the Controller mutex.
type Session struct {
	id     string
	path   string
	state  State
	source *guardedSource
	info   StreamInfo

	// recording
	record     bool
	sink       *guardedSink
	outputPath string
	written    int

	index    int
	progress progressTracker
	pending  Frame
	buffered bool

	timer Timer
	stats statsRecorder
	err   error
	done  chan struct{}
	log   *logrus.Entry
}

func newSession(path string, logger *logrus.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:    id,
		path:  path,
		state: StateIdle,
		done:  make(chan struct{}),
		log: logger.WithFields(logrus.Fields{
			"session_id": id,
			"path":       path,
		}),
	}
}

func (s *Session) recording() bool {
	return s.record && s.sink != nil
}

func (s *Session) framesWritten() int {
	if s.sink != nil {
		return s.sink.written
	}
	return s.written
}

func (s *Session) snapshot(now time.Time) SessionInfo {
	return SessionInfo{
		ID:            s.id,
		Path:          s.path,
		State:         s.state,
		Stream:        s.info,
		FrameIndex:    s.index,
		Progress:      s.progress.last,
		Recording:     s.recording(),
		OutputPath:    s.outputPath,
		FramesWritten: s.framesWritten(),
		Stats:         s.stats.snapshot(now),
		Err:           s.err,
	}
}

// cancelTimer drops any scheduled tick
func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// closeSink finalizes the recorder and keeps its frame count
func (s *Session) closeSink() error {
	if s.sink == nil {
		return nil
	}
	sink := s.sink
	s.written = sink.written
	s.sink = nil
	return sink.Close()
}

// release closes every handle the session owns. Safe on every exit path.
func (s *Session) release() error {
	s.cancelTimer()
	sinkErr := s.closeSink()
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			s.log.WithError(err).Warn("PIPELINE: Capture close failed")
		}
	}
	s.buffered = false
	s.pending = Frame{}
	return sinkErr
}

// finish moves the session into a terminal state and wakes waiters
func (s *Session) finish(state State, now time.Time) {
	if s.state.Terminal() {
		return
	}
	s.state = state
	s.stats.stop(now)
	close(s.done)
}
