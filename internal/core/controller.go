// internal/core/controller.go
// Live video pipeline: open, play, tick, record, cancel
package core

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTickInterval gives a ~30 fps preview cadence independent of the source fps
	DefaultTickInterval = 33 * time.Millisecond

	// defaultRecordFPS is used when the source does not report a frame rate
	defaultRecordFPS = 30.0
)

// Options configures a Controller
type Options struct {
	TickInterval time.Duration
	OutputPath   string
	Codec        string
	// FlushFinalFrame writes the last buffered transformed frame at end of
	// stream. When false a stream of T frames records T-1 frames.
	FlushFinalFrame bool
	// Scheduler defaults to RealScheduler
	Scheduler Scheduler
}

// DefaultOptions matches the desktop app defaults
func DefaultOptions() Options {
	return Options{
		TickInterval: DefaultTickInterval,
		OutputPath:   "output.avi",
		Codec:        "DIVX",
	}
}

// Controller drives one Session at a time through
// Idle -> Loaded -> Playing -> Completed|Cancelled.
//
// Ticks never overlap: each tick schedules the next one only after it has run
// to completion, and every exported method serializes on the same mutex.
type Controller struct {
	mu        sync.Mutex
	opener    SourceOpener
	recorder  SinkOpener
	transform Transformer
	preview   PreviewPort
	sched     Scheduler
	opts      Options
	logger    *logrus.Logger

	session *Session
}

func NewController(opener SourceOpener, recorder SinkOpener, transform Transformer, preview PreviewPort, logger *logrus.Logger, opts Options) *Controller {
	if preview == nil {
		preview = DiscardPreview{}
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = RealScheduler{}
	}
	if opts.TickInterval < 0 {
		opts.TickInterval = 0
	}
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOptions().OutputPath
	}
	if opts.Codec == "" {
		opts.Codec = DefaultOptions().Codec
	}
	return &Controller{
		opener:    opener,
		recorder:  recorder,
		transform: transform,
		preview:   preview,
		sched:     sched,
		opts:      opts,
		logger:    logger,
	}
}

// OpenVideo tears down any previous session and loads path.
// On failure the controller is left Idle and the error wraps ErrSourceOpen.
func (c *Controller) OpenVideo(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := c.session; prev != nil {
		c.cancelSession(prev)
		c.session = nil
	}

	s := newSession(path, c.logger)
	s.log.Info("PIPELINE: Opening video")

	src, err := c.opener.Open(path)
	if err == nil && src == nil {
		err = errors.New("opener returned no source")
	}
	if err != nil {
		if !errors.Is(err, ErrSourceOpen) {
			err = fmt.Errorf("%w: %s: %v", ErrSourceOpen, path, err)
		}
		s.log.WithError(err).Error("PIPELINE: Failed to open video")
		return err
	}

	s.source = newGuardedSource(src, s.log)
	s.info = s.source.Info()
	s.state = StateLoaded
	c.session = s

	s.log.WithFields(logrus.Fields{
		"width":        s.info.Width,
		"height":       s.info.Height,
		"fps":          s.info.FPS,
		"total_frames": s.info.TotalFrames,
	}).Info("PIPELINE: Video loaded")

	if poster, ok := s.source.Poster(); ok {
		c.preview.ShowFrame(StreamRaw, poster, 0)
	}
	c.publish(s)
	return nil
}

// StartPlayback moves a loaded session to Playing and schedules the first tick.
// With record set, the recorder is created once the first transformed frame
// fixes the output size.
func (c *Controller) StartPlayback(record bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if s.state != StateLoaded {
		return fmt.Errorf("%w: cannot start playback while %s", ErrInvalidState, s.state)
	}

	s.record = record
	if record {
		s.outputPath = c.opts.OutputPath
	}
	s.state = StatePlaying
	s.stats.start(time.Now())
	s.log.WithFields(logrus.Fields{
		"record":   record,
		"output":   s.outputPath,
		"interval": c.opts.TickInterval,
	}).Info("PIPELINE: Playback started")

	c.publish(s)
	c.schedule(s, 0)
	return nil
}

// Cancel stops the active session, closing the recorder and the capture.
// It is a no-op when nothing is loaded or the session already ended, so the
// host can call it unconditionally on shutdown.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.state.Terminal() {
		return nil
	}
	return c.cancelSession(s)
}

// Snapshot returns the current session state. Idle when nothing is loaded.
func (c *Controller) Snapshot() SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return SessionInfo{State: StateIdle}
	}
	return c.session.snapshot(time.Now())
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	return c.Snapshot().State
}

// Wait blocks until the current session reaches a terminal state or ctx is
// done. The returned error is ctx's error or the session failure, if any.
func (c *Controller) Wait(ctx context.Context) (SessionInfo, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return SessionInfo{State: StateIdle}, ErrNoSession
	}

	select {
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	case <-s.done:
	}

	c.mu.Lock()
	info := s.snapshot(time.Now())
	c.mu.Unlock()
	return info, info.Err
}

func (c *Controller) schedule(s *Session, d time.Duration) {
	s.timer = c.sched.AfterFunc(d, func() {
		c.tick(s)
	})
}

// tick runs one cycle: lagged write, read, preview, transform, reschedule.
func (c *Controller) tick(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// stale tick from a cancelled or replaced session
	if c.session != s || s.state != StatePlaying {
		return
	}
	s.timer = nil

	if s.info.KnownLength() && s.index >= s.info.TotalFrames {
		c.complete(s)
		return
	}

	if s.recording() && s.buffered {
		c.writePending(s)
	}

	frame, err := s.source.Next()
	if err != nil {
		c.complete(s)
		return
	}

	s.index++
	progress := s.progress.update(s.index, s.info.TotalFrames)
	c.preview.ShowFrame(StreamRaw, frame, progress)

	start := time.Now()
	out, err := c.transform.Transform(frame)
	s.stats.recordTransform(time.Since(start))
	if err == nil && out.Empty() {
		err = errors.New("transform returned an empty frame")
	}
	if err != nil {
		if !errors.Is(err, ErrTransform) {
			err = fmt.Errorf("%w: frame %d: %v", ErrTransform, frame.Index, err)
		}
		c.fail(s, err)
		return
	}
	out.Index = frame.Index
	c.preview.ShowFrame(StreamTransformed, out, progress)

	s.pending = out
	s.buffered = true
	if s.record && s.sink == nil {
		c.openSink(s, out.Size())
	}

	s.log.WithFields(logrus.Fields{
		"frame_index": s.index,
		"progress":    progress,
	}).Debug("PIPELINE: Tick completed")

	c.schedule(s, c.opts.TickInterval)
}

func (c *Controller) openSink(s *Session, size image.Point) {
	fps := s.info.FPS
	if fps <= 0 {
		fps = defaultRecordFPS
	}

	sink, err := c.recorder.Create(s.outputPath, fps, size, c.opts.Codec)
	if err == nil && sink == nil {
		err = errors.New("recorder returned no sink")
	}
	if err != nil {
		c.abortRecording(s, wrapEncode(err))
		return
	}

	s.sink = newGuardedSink(sink, s.outputPath, size)
	s.log.WithFields(logrus.Fields{
		"output": s.outputPath,
		"codec":  c.opts.Codec,
		"fps":    fps,
		"width":  size.X,
		"height": size.Y,
	}).Info("RECORDER: Output created")
	c.publish(s)
}

func (c *Controller) writePending(s *Session) {
	start := time.Now()
	err := s.sink.Write(s.pending)
	s.stats.recordWrite(time.Since(start))
	s.buffered = false
	if err != nil {
		c.abortRecording(s, err)
	}
}

// abortRecording closes the recorder and keeps playback running
func (c *Controller) abortRecording(s *Session, err error) {
	closeErr := s.closeSink()
	s.record = false
	s.err = errors.Join(s.err, err, closeErr)
	s.log.WithError(s.err).Error("RECORDER: Recording aborted")
	c.publish(s)
}

func (c *Controller) complete(s *Session) {
	if c.opts.FlushFinalFrame && s.recording() && s.buffered {
		c.writePending(s)
	}
	if err := s.release(); err != nil {
		s.err = errors.Join(s.err, err)
		s.log.WithError(err).Error("RECORDER: Finalize failed")
	}
	s.finish(StateCompleted, time.Now())
	s.log.WithFields(logrus.Fields{
		"frame_index":    s.index,
		"frames_written": s.framesWritten(),
	}).Info("PIPELINE: Video finished")
	c.publish(s)
}

func (c *Controller) fail(s *Session, err error) {
	s.err = errors.Join(s.err, err)
	if relErr := s.release(); relErr != nil {
		s.err = errors.Join(s.err, relErr)
	}
	s.finish(StateCancelled, time.Now())
	s.log.WithError(s.err).Error("PIPELINE: Session aborted")
	c.publish(s)
}

func (c *Controller) cancelSession(s *Session) error {
	if s.state.Terminal() {
		s.release()
		return nil
	}
	err := s.release()
	if err != nil {
		s.err = errors.Join(s.err, err)
	}
	s.finish(StateCancelled, time.Now())
	s.log.WithField("frame_index", s.index).Info("PIPELINE: Session cancelled")
	c.publish(s)
	return err
}

func (c *Controller) publish(s *Session) {
	c.preview.SessionChanged(s.snapshot(time.Now()))
}
