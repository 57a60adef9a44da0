// Side-by-side raw and transformed preview
package gui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"gan-video-studio/internal/core"
)

// PreviewPanel renders controller output. It implements core.PreviewPort and
// only touches widgets inside fyne.Do, so it is safe to call from the tick goroutine.
type PreviewPanel struct {
	box    image.Point
	logger *logrus.Logger

	container   *fyne.Container
	rawImage    *canvas.Image
	resultImage *canvas.Image
	progressBar *widget.ProgressBar

	mu        sync.Mutex
	rawSize   image.Point
	lastFrame core.Frame

	onSessionChanged func(core.SessionInfo)
}

func NewPreviewPanel(width, height int, logger *logrus.Logger) *PreviewPanel {
	pp := &PreviewPanel{
		box:    image.Pt(width, height),
		logger: logger,
	}
	pp.initializeComponents()
	pp.buildLayout()
	return pp
}

func (pp *PreviewPanel) initializeComponents() {
	blank := image.NewRGBA(image.Rect(0, 0, pp.box.X, pp.box.Y))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	pp.rawImage = canvas.NewImageFromImage(blank)
	pp.rawImage.FillMode = canvas.ImageFillContain
	pp.rawImage.SetMinSize(fyne.NewSize(float32(pp.box.X), float32(pp.box.Y)))

	pp.resultImage = canvas.NewImageFromImage(blank)
	pp.resultImage.FillMode = canvas.ImageFillContain
	pp.resultImage.SetMinSize(fyne.NewSize(float32(pp.box.X), float32(pp.box.Y)))

	pp.progressBar = widget.NewProgressBar()
	pp.progressBar.Min = 0
	pp.progressBar.Max = 100
}

func (pp *PreviewPanel) buildLayout() {
	split := container.NewHSplit(
		widget.NewCard("Original", "", pp.rawImage),
		widget.NewCard("Transformed", "", pp.resultImage),
	)
	split.SetOffset(0.5)

	pp.container = container.NewBorder(nil, pp.progressBar, nil, nil, split)
}

func (pp *PreviewPanel) GetContainer() *fyne.Container {
	return pp.container
}

// ShowFrame scales the frame into the preview box and swaps it onto the canvas.
// Transformed frames are stretched to the raw preview size so square model
// output lines up with the source.
func (pp *PreviewPanel) ShowFrame(stream core.Stream, frame core.Frame, progress float64) {
	if frame.Empty() {
		return
	}

	pp.mu.Lock()
	var target image.Point
	switch stream {
	case core.StreamRaw:
		target = fitSize(frame.Size(), pp.box)
		pp.rawSize = target
	case core.StreamTransformed:
		target = pp.rawSize
		if target.X <= 0 || target.Y <= 0 {
			target = fitSize(frame.Size(), pp.box)
		}
		pp.lastFrame = frame
	}
	pp.mu.Unlock()

	scaled := scaleTo(frame.Image, target)

	fyne.Do(func() {
		switch stream {
		case core.StreamRaw:
			pp.rawImage.Image = scaled
			pp.rawImage.Refresh()
		case core.StreamTransformed:
			pp.resultImage.Image = scaled
			pp.resultImage.Refresh()
		}
		pp.progressBar.SetValue(progress)
	})
}

// SessionChanged forwards the update to the registered listener on the UI goroutine
func (pp *PreviewPanel) SessionChanged(info core.SessionInfo) {
	pp.mu.Lock()
	callback := pp.onSessionChanged
	if info.State == core.StateLoaded {
		pp.lastFrame = core.Frame{}
	}
	pp.mu.Unlock()

	fyne.Do(func() {
		if info.State == core.StateLoaded {
			pp.progressBar.SetValue(0)
		}
		if callback != nil {
			callback(info)
		}
	})
}

// LastTransformed returns the most recent transformed frame at full model resolution
func (pp *PreviewPanel) LastTransformed() (core.Frame, bool) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return pp.lastFrame, !pp.lastFrame.Empty()
}

func (pp *PreviewPanel) SetSessionCallback(callback func(core.SessionInfo)) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.onSessionChanged = callback
}

// fitSize returns the largest size with src's aspect ratio that fits in box
func fitSize(src, box image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 || box.X <= 0 || box.Y <= 0 {
		return image.Point{}
	}
	if src.X*box.Y > src.Y*box.X {
		h := src.Y * box.X / src.X
		return image.Pt(box.X, max(h, 1))
	}
	w := src.X * box.Y / src.Y
	return image.Pt(max(w, 1), box.Y)
}

func scaleTo(img image.Image, size image.Point) image.Image {
	if size.X <= 0 || size.Y <= 0 || img.Bounds().Size() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
