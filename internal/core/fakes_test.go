package core

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func solidImage(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// fakeSource yields `frames` frames while reporting info.TotalFrames
type fakeSource struct {
	mu      sync.Mutex
	info    StreamInfo
	frames  int
	reads   int
	closes  int
	poster  bool
	readErr error
}

func (fs *fakeSource) Info() StreamInfo { return fs.info }

func (fs *fakeSource) Next() (Frame, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.reads >= fs.frames {
		if fs.readErr != nil {
			return Frame{}, fs.readErr
		}
		return Frame{}, ErrEndOfStream
	}
	idx := fs.reads
	fs.reads++
	return Frame{Index: idx, Image: solidImage(fs.info.Width, fs.info.Height, uint8(idx))}, nil
}

func (fs *fakeSource) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closes++
	return nil
}

func (fs *fakeSource) Poster() (Frame, bool) {
	if !fs.poster {
		return Frame{}, false
	}
	return Frame{Image: solidImage(fs.info.Width, fs.info.Height, 0)}, true
}

func (fs *fakeSource) readCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.reads
}

func (fs *fakeSource) closeCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.closes
}

func newFakeSource(frames, total int) *fakeSource {
	return &fakeSource{
		info:   StreamInfo{Width: 8, Height: 6, FPS: 30, TotalFrames: total},
		frames: frames,
	}
}

type fakeOpener struct {
	sources map[string]*fakeSource
	opened  []string
}

func (fo *fakeOpener) Open(path string) (Source, error) {
	src, ok := fo.sources[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	fo.opened = append(fo.opened, path)
	return src, nil
}

type fakeSink struct {
	mu        sync.Mutex
	frames    []Frame
	closes    int
	failAfter int // fail the write after this many successful ones; 0 disables
}

func (fs *fakeSink) Write(frame Frame) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failAfter > 0 && len(fs.frames) >= fs.failAfter {
		return errors.New("disk full")
	}
	fs.frames = append(fs.frames, frame)
	return nil
}

func (fs *fakeSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closes++
	return nil
}

func (fs *fakeSink) written() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.frames)
}

func (fs *fakeSink) closeCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.closes
}

type sinkCall struct {
	path  string
	fps   float64
	size  image.Point
	codec string
}

type fakeRecorder struct {
	mu        sync.Mutex
	calls     []sinkCall
	sink      *fakeSink
	failAfter int
}

func (fr *fakeRecorder) Create(path string, fps float64, size image.Point, codec string) (Sink, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.calls = append(fr.calls, sinkCall{path: path, fps: fps, size: size, codec: codec})
	fr.sink = &fakeSink{failAfter: fr.failAfter}
	return fr.sink, nil
}

func (fr *fakeRecorder) created() int {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return len(fr.calls)
}

// shrinkTransform maps every frame to a 4x4 image whose value encodes the index
func shrinkTransform() TransformFunc {
	return func(f Frame) (Frame, error) {
		return Frame{Index: f.Index, Image: solidImage(4, 4, uint8(255-f.Index))}, nil
	}
}

func failingTransform(at int) TransformFunc {
	return func(f Frame) (Frame, error) {
		if f.Index == at {
			return Frame{}, errors.New("model exploded")
		}
		return shrinkTransform()(f)
	}
}

type shownFrame struct {
	stream   Stream
	index    int
	progress float64
}

type recordingPreview struct {
	mu     sync.Mutex
	frames []shownFrame
	infos  []SessionInfo
}

func (rp *recordingPreview) ShowFrame(stream Stream, frame Frame, progress float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.frames = append(rp.frames, shownFrame{stream: stream, index: frame.Index, progress: progress})
}

func (rp *recordingPreview) SessionChanged(info SessionInfo) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.infos = append(rp.infos, info)
}

func (rp *recordingPreview) progressOf(stream Stream) []float64 {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	var out []float64
	for _, f := range rp.frames {
		if f.stream == stream {
			out = append(out, f.progress)
		}
	}
	return out
}

// manualScheduler queues tasks until the test runs them
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (mt *manualTask) Stop() bool {
	if mt.fired || mt.stopped {
		return false
	}
	mt.stopped = true
	return true
}

func (ms *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	task := &manualTask{delay: d, fn: f}
	ms.tasks = append(ms.tasks, task)
	return task
}

// pending counts tasks that are neither stopped nor fired
func (ms *manualScheduler) pending() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	n := 0
	for _, t := range ms.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// runNext fires the oldest live task; false when nothing is queued
func (ms *manualScheduler) runNext() bool {
	ms.mu.Lock()
	var task *manualTask
	for _, t := range ms.tasks {
		if !t.stopped && !t.fired {
			task = t
			break
		}
	}
	if task != nil {
		task.fired = true
	}
	ms.mu.Unlock()

	if task == nil {
		return false
	}
	task.fn()
	return true
}

// fireAll runs even stopped tasks, the way a timer that already fired would
func (ms *manualScheduler) fireAll() {
	ms.mu.Lock()
	tasks := append([]*manualTask(nil), ms.tasks...)
	ms.mu.Unlock()
	for _, t := range tasks {
		t.fn()
	}
}

func (ms *manualScheduler) runAll(limit int) int {
	n := 0
	for n < limit && ms.runNext() {
		n++
	}
	return n
}
