// Video capture backed by OpenCV
package io

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"gan-video-studio/internal/core"
)

// CameraPrefix selects a capture device instead of a file, e.g. "camera:0"
const CameraPrefix = "camera:"

// CaptureOpener opens video files and cameras through gocv
type CaptureOpener struct {
	logger *logrus.Logger
}

func NewCaptureOpener(logger *logrus.Logger) *CaptureOpener {
	return &CaptureOpener{
		logger: logger,
	}
}

// Open returns a core.Source for a file path or a "camera:<id>" device
func (co *CaptureOpener) Open(path string) (core.Source, error) {
	co.logger.WithField("path", path).Debug("CAPTURE: Opening")

	device, isCamera, err := parseDevice(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceOpen, err)
	}

	var vc *gocv.VideoCapture
	if isCamera {
		vc, err = gocv.OpenVideoCapture(device)
	} else {
		vc, err = gocv.VideoCaptureFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrSourceOpen, path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", core.ErrSourceOpen, path)
	}

	c := &Capture{
		vc:   vc,
		mat:  gocv.NewMat(),
		path: path,
		info: core.StreamInfo{
			Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
			Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
			FPS:    vc.Get(gocv.VideoCaptureFPS),
		},
		logger: co.logger,
	}
	if !isCamera {
		c.info.TotalFrames = int(vc.Get(gocv.VideoCaptureFrameCount))
		c.readPoster()
	}

	// a container that reports frames but yields none is not a video
	if !isCamera && c.info.TotalFrames > 0 && !c.hasPoster {
		c.Close()
		return nil, fmt.Errorf("%w: %s: no decodable frames", core.ErrSourceOpen, path)
	}

	co.logger.WithFields(logrus.Fields{
		"path":         path,
		"width":        c.info.Width,
		"height":       c.info.Height,
		"fps":          c.info.FPS,
		"total_frames": c.info.TotalFrames,
		"camera":       isCamera,
	}).Info("CAPTURE: Opened")

	return c, nil
}

func parseDevice(path string) (int, bool, error) {
	if !strings.HasPrefix(path, CameraPrefix) {
		return 0, false, nil
	}
	id, err := strconv.Atoi(strings.TrimPrefix(path, CameraPrefix))
	if err != nil || id < 0 {
		return 0, true, fmt.Errorf("invalid camera id in %q", path)
	}
	return id, true, nil
}

// Capture is a core.Source over a gocv.VideoCapture
type Capture struct {
	vc        *gocv.VideoCapture
	mat       gocv.Mat
	path      string
	info      core.StreamInfo
	index     int
	closed    bool
	poster    core.Frame
	hasPoster bool
	logger    *logrus.Logger
}

// readPoster decodes the first frame and rewinds to it
func (c *Capture) readPoster() {
	if !c.vc.Read(&c.mat) || c.mat.Empty() {
		return
	}
	img, err := c.mat.ToImage()
	if err != nil {
		c.logger.WithError(err).Warn("CAPTURE: Poster conversion failed")
		return
	}
	c.poster = core.Frame{Index: 0, Image: img}
	c.hasPoster = true
	c.vc.Set(gocv.VideoCapturePosFrames, 0)
}

func (c *Capture) Info() core.StreamInfo {
	return c.info
}

// Poster returns the first frame read at open time
func (c *Capture) Poster() (core.Frame, bool) {
	return c.poster, c.hasPoster
}

// Next decodes the next frame. Any decode failure ends the stream.
func (c *Capture) Next() (core.Frame, error) {
	if c.closed {
		return core.Frame{}, core.ErrEndOfStream
	}
	if !c.vc.Read(&c.mat) || c.mat.Empty() {
		return core.Frame{}, core.ErrEndOfStream
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return core.Frame{}, fmt.Errorf("%w: frame %d: %v", core.ErrEndOfStream, c.index, err)
	}

	frame := core.Frame{Index: c.index, Image: img}
	c.index++
	return frame, nil
}

// Close releases the capture and its decode buffer
func (c *Capture) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.mat.Close()
	err := c.vc.Close()
	c.logger.WithFields(logrus.Fields{
		"path":        c.path,
		"frames_read": c.index,
	}).Debug("CAPTURE: Closed")
	return err
}
