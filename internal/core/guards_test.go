package core

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skippingSource stamps every frame with a bogus index
type skippingSource struct {
	*fakeSource
}

func (ss *skippingSource) Next() (Frame, error) {
	f, err := ss.fakeSource.Next()
	f.Index = 7
	return f, err
}

func TestGuardedSourceAssignsIndicesAndCaps(t *testing.T) {
	inner := &skippingSource{fakeSource: newFakeSource(5, 3)}
	gs := newGuardedSource(inner, testLogger().WithField("test", t.Name()))

	for want := 0; want < 3; want++ {
		f, err := gs.Next()
		require.NoError(t, err)
		assert.Equal(t, want, f.Index)
	}
	_, err := gs.Next()
	assert.ErrorIs(t, err, ErrEndOfStream)
	assert.Equal(t, 3, inner.readCount(), "reads past TotalFrames must not reach the capture")
}

func TestGuardedSourceFoldsReadErrors(t *testing.T) {
	inner := newFakeSource(1, 5)
	inner.readErr = errors.New("decoder hiccup")
	gs := newGuardedSource(inner, testLogger().WithField("test", t.Name()))

	_, err := gs.Next()
	require.NoError(t, err)
	_, err = gs.Next()
	assert.Equal(t, ErrEndOfStream, err)

	// stays exhausted
	_, err = gs.Next()
	assert.Equal(t, ErrEndOfStream, err)
}

func TestGuardedSourceEmptyFrameEndsStream(t *testing.T) {
	empty := &fakeSource{info: StreamInfo{TotalFrames: 4}, frames: 4}
	gs := newGuardedSource(empty, testLogger().WithField("test", t.Name()))

	_, err := gs.Next()
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestGuardedSourceCloseIsIdempotent(t *testing.T) {
	inner := newFakeSource(3, 3)
	gs := newGuardedSource(inner, testLogger().WithField("test", t.Name()))

	require.NoError(t, gs.Close())
	require.NoError(t, gs.Close())
	assert.Equal(t, 1, inner.closeCount())

	_, err := gs.Next()
	assert.ErrorIs(t, err, ErrEndOfStream)
	assert.Equal(t, 0, inner.readCount())
}

func TestGuardedSinkRejectsSizeMismatch(t *testing.T) {
	inner := &fakeSink{}
	gs := newGuardedSink(inner, "out.avi", image.Pt(4, 4))

	require.NoError(t, gs.Write(Frame{Image: solidImage(4, 4, 1)}))
	err := gs.Write(Frame{Index: 1, Image: solidImage(5, 4, 1)})
	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, 1, gs.written)
	assert.Equal(t, 1, inner.written())
}

func TestGuardedSinkWrapsWriteErrors(t *testing.T) {
	inner := &fakeSink{failAfter: 1}
	gs := newGuardedSink(inner, "out.avi", image.Pt(4, 4))

	require.NoError(t, gs.Write(Frame{Image: solidImage(4, 4, 1)}))
	err := gs.Write(Frame{Image: solidImage(4, 4, 1)})
	assert.ErrorIs(t, err, ErrEncode)
}

func TestGuardedSinkCloseIsIdempotent(t *testing.T) {
	inner := &fakeSink{}
	gs := newGuardedSink(inner, "out.avi", image.Pt(4, 4))

	require.NoError(t, gs.Close())
	require.NoError(t, gs.Close())
	assert.Equal(t, 1, inner.closeCount())
	assert.ErrorIs(t, gs.Write(Frame{Image: solidImage(4, 4, 1)}), ErrEncode)
}

func TestStatsRecorder(t *testing.T) {
	var sr statsRecorder
	t0 := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	sr.start(t0)
	sr.recordTransform(10 * time.Millisecond)
	sr.recordTransform(30 * time.Millisecond)
	sr.recordWrite(4 * time.Millisecond)
	sr.stop(t0.Add(time.Second))

	s := sr.snapshot(t0.Add(time.Hour))
	assert.Equal(t, 2, s.Ticks)
	assert.Equal(t, 30*time.Millisecond, s.LastTransform)
	assert.Equal(t, 20*time.Millisecond, s.AvgTransform)
	assert.Equal(t, 4*time.Millisecond, s.AvgWrite)
	assert.Equal(t, time.Second, s.Elapsed)
	assert.InDelta(t, 2.0, s.ProcessingFPS(), 1e-9)
}

func TestStatsWindowIsBounded(t *testing.T) {
	var sr statsRecorder
	for i := 0; i < statsWindow*3; i++ {
		sr.recordTransform(time.Millisecond)
	}
	assert.Len(t, sr.transformTimes, statsWindow)
	assert.Equal(t, statsWindow*3, sr.ticks)
}
