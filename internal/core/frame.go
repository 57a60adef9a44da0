// Frame and stream metadata shared by capture, transform, preview and recording
package core

import (
	"fmt"
	"image"
)

// Frame is one decoded picture plus its position in the source stream.
// The pixel buffer is treated as immutable once the frame leaves its producer.
type Frame struct {
	Index int
	Image image.Image
}

// Width returns the frame width in pixels
func (f Frame) Width() int {
	if f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels
func (f Frame) Height() int {
	if f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dy()
}

// Size returns the frame dimensions as a point (X = width, Y = height)
func (f Frame) Size() image.Point {
	return image.Pt(f.Width(), f.Height())
}

// Empty reports whether the frame carries no pixels
func (f Frame) Empty() bool {
	return f.Width() <= 0 || f.Height() <= 0
}

func (f Frame) String() string {
	return fmt.Sprintf("frame#%d(%dx%d)", f.Index, f.Width(), f.Height())
}

// StreamInfo is fixed for the lifetime of an opened source.
// TotalFrames <= 0 means the length is unknown (live camera).
type StreamInfo struct {
	Width       int
	Height      int
	FPS         float64
	TotalFrames int
}

// KnownLength reports whether TotalFrames can be used for progress
func (si StreamInfo) KnownLength() bool {
	return si.TotalFrames > 0
}

// Stream identifies which of the two preview streams a frame belongs to
type Stream int

const (
	StreamRaw Stream = iota
	StreamTransformed
)

func (s Stream) String() string {
	switch s {
	case StreamRaw:
		return "raw"
	case StreamTransformed:
		return "transformed"
	default:
		return fmt.Sprintf("stream(%d)", int(s))
	}
}
