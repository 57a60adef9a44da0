// Collaborator interfaces for the live video pipeline
package core

import (
	"image"
	"time"
)

// Source yields frames of one opened video in increasing index order.
type Source interface {
	Info() StreamInfo
	// Next returns the next frame or ErrEndOfStream.
	Next() (Frame, error)
	// Close releases the capture. Safe to call more than once.
	Close() error
}

// Poster is implemented by sources that can show their first frame without
// consuming it.
type Poster interface {
	Poster() (Frame, bool)
}

// SourceOpener opens a Source for a path picked by the user.
type SourceOpener interface {
	Open(path string) (Source, error)
}

// Sink persists transformed frames. The frame size is fixed at creation.
type Sink interface {
	Write(frame Frame) error
	// Close finalizes the container. Safe to call more than once.
	Close() error
}

// SinkOpener creates the output container for a recording run.
type SinkOpener interface {
	Create(path string, fps float64, size image.Point, codec string) (Sink, error)
}

// Transformer applies the per-frame model. Implementations are synchronous and
// deterministic for fixed weights.
type Transformer interface {
	Transform(frame Frame) (Frame, error)
}

// TransformFunc adapts a plain function to Transformer
type TransformFunc func(Frame) (Frame, error)

func (f TransformFunc) Transform(frame Frame) (Frame, error) {
	return f(frame)
}

// PreviewPort receives rendered frames and lifecycle updates. Calls arrive on
// the tick goroutine; implementations must not call back into the Controller
// synchronously.
type PreviewPort interface {
	ShowFrame(stream Stream, frame Frame, progress float64)
	SessionChanged(info SessionInfo)
}

// DiscardPreview is a PreviewPort that drops everything
type DiscardPreview struct{}

func (DiscardPreview) ShowFrame(Stream, Frame, float64) {}
func (DiscardPreview) SessionChanged(SessionInfo)       {}

// Timer is a pending scheduled tick
type Timer interface {
	Stop() bool
}

// Scheduler posts a function to run once after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules with time.AfterFunc
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
