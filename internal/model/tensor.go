package model

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// denormalize maps generator output in [-1,1] back to a byte
func denormalize(v float32) uint8 {
	x := float64(v)*127.5 + 127.5
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(math.Round(x))
}

// tensorToRGBA converts a single RGB image tensor to an RGBA image.
// dims is either [1,3,H,W] (NCHW) or [1,H,W,3] (NHWC).
func tensorToRGBA(data []float32, dims []int) (*image.RGBA, error) {
	if len(dims) != 4 || dims[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}

	var h, w int
	var at func(c, y, x int) float32
	switch {
	case dims[1] == 3:
		h, w = dims[2], dims[3]
		plane := h * w
		at = func(c, y, x int) float32 { return data[c*plane+y*w+x] }
	case dims[3] == 3:
		h, w = dims[1], dims[2]
		at = func(c, y, x int) float32 { return data[(y*w+x)*3+c] }
	default:
		return nil, fmt.Errorf("output shape %v is not a 3 channel image", dims)
	}
	if h <= 0 || w <= 0 || len(data) < 3*h*w {
		return nil, fmt.Errorf("output tensor holds %d values, shape %v needs %d", len(data), dims, 3*h*w)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: denormalize(at(0, y, x)),
				G: denormalize(at(1, y, x)),
				B: denormalize(at(2, y, x)),
				A: 255,
			})
		}
	}
	return img, nil
}
