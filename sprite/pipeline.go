package sprite

import (
	"fmt"
	"image"

	"github.com/cenkalti/dominantcolor"

	"github.com/DonAyers/pixegen/palette"
)

// ProcessSingle runs the full pipeline on one image: optional background
// keying, downscale to the sprite grid, palette quantization, then the
// enabled cleanup passes. The input is never mutated; the result is always a
// fresh size.W by size.H buffer.
func ProcessSingle(src *image.NRGBA, size Size, pal *palette.Palette, opts Options) (*image.NRGBA, error) {
	if err := validateRaster(src); err != nil {
		return nil, err
	}
	if size.W < 1 || size.H < 1 {
		return nil, fmt.Errorf("%w: sprite size %dx%d", ErrInvalidDimensions, size.W, size.H)
	}

	cur := src
	if opts.KeyBackground {
		cur = keyBackground(cur, opts.KeyThreshold)
	}

	cur, err := Downscale(cur, size.W, size.H, opts.Downscale)
	if err != nil {
		return nil, err
	}

	cur, err = Quantize(cur, pal, opts)
	if err != nil {
		return nil, err
	}

	if opts.Cleanup {
		cur = CleanupOrphans(cur, opts.CleanupThreshold)
	}
	if opts.Outline {
		cur = GenerateOutlines(cur, opts.OutlineDarken)
	}

	return cur, nil
}

// ProcessSheet treats src as frameCount equal-width vertical strips and runs
// each through ProcessSingle with the same palette value, so the shared
// OKLAB cache maps colors identically in every frame and animations do not
// drift. When frameCount does not divide the source width the remainder
// columns are dropped from the last frame.
func ProcessSheet(src *image.NRGBA, frameCount int, size Size, pal *palette.Palette, opts Options) ([]*image.NRGBA, error) {
	if err := validateRaster(src); err != nil {
		return nil, err
	}
	if frameCount < 1 {
		return nil, fmt.Errorf("%w: frame count %d", ErrInvalidDimensions, frameCount)
	}

	b := src.Bounds()
	frameW := b.Dx() / frameCount
	if frameW < 1 {
		return nil, fmt.Errorf("%w: %d frames in a %d pixel wide sheet", ErrInvalidDimensions, frameCount, b.Dx())
	}

	out := make([]*image.NRGBA, frameCount)
	for i := range out {
		strip := src.SubImage(image.Rect(
			b.Min.X+i*frameW, b.Min.Y,
			b.Min.X+(i+1)*frameW, b.Max.Y,
		)).(*image.NRGBA)

		frame, err := ProcessSingle(cloneRaster(strip), size, pal, opts)
		if err != nil {
			return nil, fmt.Errorf("frame %d/%d: %w", i+1, frameCount, err)
		}
		out[i] = frame
	}

	return out, nil
}

// keyBackground detects the dominant source color and knocks out every pixel
// within threshold summed RGB difference of it. Generated sprites usually
// arrive on a solid backdrop rather than real transparency.
func keyBackground(src *image.NRGBA, threshold int) *image.NRGBA {
	dst := cloneRaster(src)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	bg := dominantcolor.Find(src)

	for y := 0; y < h; y++ {
		o := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			if dst.Pix[o+3] >= alphaOpaqueMin {
				diff := absDiff(dst.Pix[o+0], bg.R) +
					absDiff(dst.Pix[o+1], bg.G) +
					absDiff(dst.Pix[o+2], bg.B)
				if diff <= threshold {
					dst.Pix[o+0] = 0
					dst.Pix[o+1] = 0
					dst.Pix[o+2] = 0
					dst.Pix[o+3] = 0
				}
			}
			o += 4
		}
	}

	return dst
}
