// Frame transforms: a pretrained generator network and a model-free fallback
package model

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"gan-video-studio/internal/config"
	"gan-video-studio/internal/core"
)

// Model is a core.Transformer that holds native resources
type Model interface {
	core.Transformer
	Name() string
	Close() error
}

// New picks the generator when a model path is configured, the stylizer otherwise
func New(cfg config.Config, logger *logrus.Logger) (Model, error) {
	if cfg.ModelPath == "" {
		logger.Info("MODEL: No model configured, using OpenCV stylization")
		return NewStylizer(cfg.ModelInputSize), nil
	}
	return NewGenerator(cfg.ModelPath, cfg.ModelInputSize, cfg.Backend, cfg.Target, logger)
}

// Generator runs an image-to-image GAN generator with the OpenCV DNN module.
// Input is normalized to [-1,1] at size x size RGB; output is expected in [-1,1].
type Generator struct {
	mu     sync.Mutex
	net    gocv.Net
	path   string
	size   int
	logger *logrus.Logger
}

func NewGenerator(path string, size int, backend, target string, logger *logrus.Logger) (*Generator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid model input size %d", size)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	net := gocv.ReadNet(path, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model: %s", path)
	}
	if err := net.SetPreferableBackend(gocv.ParseNetBackend(backend)); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set backend %q: %w", backend, err)
	}
	if err := net.SetPreferableTarget(gocv.ParseNetTarget(target)); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set target %q: %w", target, err)
	}

	logger.WithFields(logrus.Fields{
		"model":      path,
		"input_size": size,
		"backend":    backend,
		"target":     target,
	}).Info("MODEL: Generator loaded")

	return &Generator{
		net:    net,
		path:   path,
		size:   size,
		logger: logger,
	}, nil
}

func (g *Generator) Name() string {
	return "generator"
}

// Transform returns a size x size frame painted by the generator
func (g *Generator) Transform(frame core.Frame) (core.Frame, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	src, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return core.Frame{}, fmt.Errorf("%w: convert frame %d: %v", core.ErrTransform, frame.Index, err)
	}
	defer src.Close()

	blob := gocv.BlobFromImage(src, 1.0/127.5, image.Pt(g.size, g.size),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	g.net.SetInput(blob, "")
	out := g.net.Forward("")
	defer out.Close()
	if out.Empty() {
		return core.Frame{}, fmt.Errorf("%w: frame %d: empty network output", core.ErrTransform, frame.Index)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return core.Frame{}, fmt.Errorf("%w: frame %d: %v", core.ErrTransform, frame.Index, err)
	}
	img, err := tensorToRGBA(data, out.Size())
	if err != nil {
		return core.Frame{}, fmt.Errorf("%w: frame %d: %v", core.ErrTransform, frame.Index, err)
	}

	g.logger.WithFields(logrus.Fields{
		"frame_index": frame.Index,
		"duration":    time.Since(start),
	}).Debug("MODEL: Frame generated")

	return core.Frame{Index: frame.Index, Image: img}, nil
}

func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.net.Close()
}

// Stylizer paints frames with OpenCV's edge-preserving stylization filter.
// It needs no weights, so the app is usable without a trained model.
type Stylizer struct {
	size   int
	sigmaS float32
	sigmaR float32
}

func NewStylizer(size int) *Stylizer {
	return &Stylizer{
		size:   size,
		sigmaS: 60,
		sigmaR: 0.45,
	}
}

func (s *Stylizer) Name() string {
	return "stylization"
}

func (s *Stylizer) Transform(frame core.Frame) (core.Frame, error) {
	src, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return core.Frame{}, fmt.Errorf("%w: convert frame %d: %v", core.ErrTransform, frame.Index, err)
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(s.size, s.size), 0, 0, gocv.InterpolationArea)

	painted := gocv.NewMat()
	defer painted.Close()
	gocv.Stylization(resized, &painted, s.sigmaS, s.sigmaR)
	if painted.Empty() {
		return core.Frame{}, fmt.Errorf("%w: frame %d: stylization produced no output", core.ErrTransform, frame.Index)
	}

	img, err := painted.ToImage()
	if err != nil {
		return core.Frame{}, fmt.Errorf("%w: frame %d: %v", core.ErrTransform, frame.Index, err)
	}
	return core.Frame{Index: frame.Index, Image: img}, nil
}

func (s *Stylizer) Close() error {
	return nil
}
