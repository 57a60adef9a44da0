package core

import "errors"

var (
	// ErrSourceOpen is returned when a path cannot be opened as a video stream.
	ErrSourceOpen = errors.New("cannot open video source")

	// ErrEndOfStream signals that a source has no more frames. A failed read is
	// reported the same way.
	ErrEndOfStream = errors.New("end of stream")

	// ErrTransform wraps failures of the per-frame transform. Fatal to the session.
	ErrTransform = errors.New("frame transform failed")

	// ErrEncode wraps recorder failures: size mismatch, write or flush errors.
	ErrEncode = errors.New("frame encode failed")

	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid pipeline state")

	// ErrNoSession is returned when an operation needs a loaded video.
	ErrNoSession = errors.New("no video loaded")
)
