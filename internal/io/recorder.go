package io

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"gan-video-studio/internal/core"
)

// RecorderOpener creates output videos through gocv
type RecorderOpener struct {
	logger *logrus.Logger
}

func NewRecorderOpener(logger *logrus.Logger) *RecorderOpener {
	return &RecorderOpener{
		logger: logger,
	}
}

// Create opens path for writing color frames of exactly size
func (ro *RecorderOpener) Create(path string, fps float64, size image.Point, codec string) (core.Sink, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: invalid frame size %dx%d", core.ErrEncode, size.X, size.Y)
	}

	vw, err := gocv.VideoWriterFile(path, codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrEncode, path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("%w: cannot open %s with codec %s", core.ErrEncode, path, codec)
	}

	ro.logger.WithFields(logrus.Fields{
		"path":   path,
		"codec":  codec,
		"fps":    fps,
		"width":  size.X,
		"height": size.Y,
	}).Info("RECORDER: Opened")

	return &Recorder{
		vw:     vw,
		path:   path,
		size:   size,
		logger: ro.logger,
	}, nil
}

// Recorder is a core.Sink over a gocv.VideoWriter
type Recorder struct {
	vw      *gocv.VideoWriter
	path    string
	size    image.Point
	written int
	closed  bool
	logger  *logrus.Logger
}

// Write encodes one frame; its size must match the size given to Create
func (r *Recorder) Write(frame core.Frame) error {
	if r.closed {
		return fmt.Errorf("%w: %s is closed", core.ErrEncode, r.path)
	}
	if frame.Size() != r.size {
		return fmt.Errorf("%w: frame %dx%d, writer %dx%d",
			core.ErrEncode, frame.Width(), frame.Height(), r.size.X, r.size.Y)
	}

	mat, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return fmt.Errorf("%w: convert frame %d: %v", core.ErrEncode, frame.Index, err)
	}
	defer mat.Close()

	if err := r.vw.Write(mat); err != nil {
		return fmt.Errorf("%w: write frame %d: %v", core.ErrEncode, frame.Index, err)
	}
	r.written++
	return nil
}

// Close finalizes the container
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.vw.Close(); err != nil {
		return fmt.Errorf("%w: finalize %s: %v", core.ErrEncode, r.path, err)
	}
	r.logger.WithFields(logrus.Fields{
		"path":           r.path,
		"frames_written": r.written,
	}).Info("RECORDER: Finalized")
	return nil
}
