package sprite

import (
	"fmt"
	"image"
)

// alphaOpaqueMin is the alpha below which a pixel is treated as transparent
// throughout the pipeline. Hard edge, not configurable: anything dimmer is
// rewritten to transparent black so garbage RGB never leaks into output.
const alphaOpaqueMin = 10

// validateRaster checks that the declared bounds agree with the pixel
// buffer. Zero-area images are fine; a short Pix slice is not.
func validateRaster(src *image.NRGBA) error {
	if src == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidDimensions)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}

	need := src.PixOffset(b.Max.X-1, b.Max.Y-1) + 4
	if need > len(src.Pix) {
		return fmt.Errorf("%w: %dx%d raster needs %d pixel bytes, have %d",
			ErrInvalidDimensions, b.Dx(), b.Dy(), need, len(src.Pix))
	}
	return nil
}

// cloneRaster copies src into a fresh image with its origin at (0,0) and a
// tight stride. All pipeline stages write into clones, never into inputs.
func cloneRaster(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := dst.PixOffset(0, y)
		copy(dst.Pix[do:do+b.Dx()*4], src.Pix[so:so+b.Dx()*4])
	}
	return dst
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
