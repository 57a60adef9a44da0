// Wrappers enforcing the frame source and recorder contracts regardless of backend
package core

import (
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
)

// guardedSource assigns indices, caps reads at TotalFrames and folds every
// read failure into ErrEndOfStream.
type guardedSource struct {
	src    Source
	info   StreamInfo
	next   int
	done   bool
	closed bool
	log    *logrus.Entry
}

func newGuardedSource(src Source, log *logrus.Entry) *guardedSource {
	return &guardedSource{
		src:  src,
		info: src.Info(),
		log:  log,
	}
}

func (gs *guardedSource) Info() StreamInfo {
	return gs.info
}

func (gs *guardedSource) Next() (Frame, error) {
	if gs.closed || gs.done {
		return Frame{}, ErrEndOfStream
	}
	if gs.info.KnownLength() && gs.next >= gs.info.TotalFrames {
		gs.done = true
		return Frame{}, ErrEndOfStream
	}

	frame, err := gs.src.Next()
	if err != nil {
		gs.done = true
		if !errors.Is(err, ErrEndOfStream) {
			gs.log.WithError(err).WithField("frame_index", gs.next).Warn("CAPTURE: Read failed, treating as end of stream")
		}
		return Frame{}, ErrEndOfStream
	}
	if frame.Empty() {
		gs.done = true
		gs.log.WithField("frame_index", gs.next).Debug("CAPTURE: Empty frame, treating as end of stream")
		return Frame{}, ErrEndOfStream
	}

	frame.Index = gs.next
	gs.next++
	return frame, nil
}

func (gs *guardedSource) Close() error {
	if gs.closed {
		return nil
	}
	gs.closed = true
	return gs.src.Close()
}

func (gs *guardedSource) Poster() (Frame, bool) {
	p, ok := gs.src.(Poster)
	if !ok {
		return Frame{}, false
	}
	frame, ok := p.Poster()
	if !ok || frame.Empty() {
		return Frame{}, false
	}
	frame.Index = 0
	return frame, true
}

// guardedSink pins the frame size chosen at creation and counts frames.
type guardedSink struct {
	sink    Sink
	path    string
	size    image.Point
	written int
	closed  bool
}

func newGuardedSink(sink Sink, path string, size image.Point) *guardedSink {
	return &guardedSink{
		sink: sink,
		path: path,
		size: size,
	}
}

func (gs *guardedSink) Write(frame Frame) error {
	if gs.closed {
		return fmt.Errorf("%w: recorder %s already closed", ErrEncode, gs.path)
	}
	if frame.Size() != gs.size {
		return fmt.Errorf("%w: frame %d is %dx%d, recorder expects %dx%d",
			ErrEncode, frame.Index, frame.Width(), frame.Height(), gs.size.X, gs.size.Y)
	}
	if err := gs.sink.Write(frame); err != nil {
		return wrapEncode(err)
	}
	gs.written++
	return nil
}

func (gs *guardedSink) Close() error {
	if gs.closed {
		return nil
	}
	gs.closed = true
	if err := gs.sink.Close(); err != nil {
		return wrapEncode(err)
	}
	return nil
}

func wrapEncode(err error) error {
	if errors.Is(err, ErrEncode) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrEncode, err)
}
