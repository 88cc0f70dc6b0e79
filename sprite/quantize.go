package sprite

import (
	"fmt"
	"image"
	"image/color"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/DonAyers/pixegen/okcolor"
	"github.com/DonAyers/pixegen/palette"
)

// bayerOrder is the canonical 4x4 ordered-dither permutation. Thresholds are
// normalized to [-0.5,+0.5) as k/16 - 0.5 before use.
var bayerOrder = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// Quantize maps every pixel of src onto pal. Pixels with alpha below
// alphaOpaqueMin become fully transparent black regardless of strategy;
// every other output pixel carries a palette RGB (or, in bit-depth mode, the
// nearest representable channel values) and its original alpha. A zero-area
// src yields a zero-area result.
func Quantize(src *image.NRGBA, pal *palette.Palette, opts Options) (*image.NRGBA, error) {
	if err := validateRaster(src); err != nil {
		return nil, err
	}

	switch opts.PaletteMode {
	case PaletteBitDepth:
		if pal == nil || pal.Depth() == 0 {
			return nil, fmt.Errorf("sprite: bit-depth quantization needs a bit-depth palette")
		}
		return quantizeBitDepth(src, pal.Depth()), nil
	case PaletteFixed:
		if pal == nil || pal.Len() == 0 {
			return nil, fmt.Errorf("sprite: fixed-palette quantization needs explicit palette colors")
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPaletteMode, opts.PaletteMode)
	}

	switch opts.Quantize {
	case QuantizeOKLabNearest:
		return quantizeNearest(src, pal, 0), nil
	case QuantizeOKLabBayer:
		return quantizeNearest(src, pal, opts.DitherStrength), nil
	case QuantizeHistogram:
		return quantizeDiffusion(src, pal, opts)
	default:
		return nil, fmt.Errorf("%w: quantize strategy %d", ErrUnknownStrategy, opts.Quantize)
	}
}

// quantizeNearest linear-scans the palette's precomputed OKLAB cache per
// pixel. With strength > 0 the pixel's L channel is perturbed by the tiled
// Bayer threshold before the search; only lightness is touched so the dither
// never introduces hue shifts. Nearest ties resolve to the lowest palette
// index.
func quantizeNearest(src *image.NRGBA, pal *palette.Palette, strength float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			a := src.Pix[so+3]
			if a < alphaOpaqueMin {
				// dst is zeroed, transparent black already in place
				so += 4
				do += 4
				continue
			}

			lc := okcolor.FromRGB8(src.Pix[so+0], src.Pix[so+1], src.Pix[so+2])
			if strength != 0 {
				lc.L += (float64(bayerOrder[y&3][x&3])/16 - 0.5) * strength
			}

			c := pal.At(pal.NearestLab(lc))
			dst.Pix[do+0] = c.R
			dst.Pix[do+1] = c.G
			dst.Pix[do+2] = c.B
			dst.Pix[do+3] = a

			so += 4
			do += 4
		}
	}
	return dst
}

func diffusionMatrix(k DiffusionKernel) (dither.ErrorDiffusionMatrix, error) {
	switch k {
	case KernelFloydSteinberg:
		return dither.FloydSteinberg, nil
	case KernelAtkinson:
		return dither.Atkinson, nil
	case KernelStucki:
		return dither.Stucki, nil
	case KernelSierra:
		return dither.Sierra, nil
	case KernelSierraLite:
		return dither.SierraLite, nil
	default:
		return nil, fmt.Errorf("%w: diffusion kernel %d", ErrUnknownStrategy, k)
	}
}

// quantizeDiffusion is the classic reducer: sRGB distance, serpentine
// error-diffusion scan. The diffusion library writes opaque palette colors;
// the transparency rule and original alpha are reimposed afterwards.
func quantizeDiffusion(src *image.NRGBA, pal *palette.Palette, opts Options) (*image.NRGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst, nil
	}

	cols := pal.Colors()

	var mapped image.Image
	if opts.Kernel == KernelNone || pal.Len() < 2 {
		mapped = nil
	} else {
		m, err := diffusionMatrix(opts.Kernel)
		if err != nil {
			return nil, err
		}
		d := dither.NewDitherer(cols)
		d.Matrix = m
		d.Serpentine = opts.Serpentine
		mapped = d.DitherCopy(src)
	}

	for y := 0; y < h; y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			a := src.Pix[so+3]
			if a < alphaOpaqueMin {
				so += 4
				do += 4
				continue
			}

			var c color.NRGBA
			if mapped != nil {
				c = color.NRGBAModel.Convert(mapped.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			} else {
				nearest := cols.Convert(color.NRGBA{
					R: src.Pix[so+0],
					G: src.Pix[so+1],
					B: src.Pix[so+2],
					A: 0xFF,
				})
				c = color.NRGBAModel.Convert(nearest).(color.NRGBA)
			}

			dst.Pix[do+0] = c.R
			dst.Pix[do+1] = c.G
			dst.Pix[do+2] = c.B
			dst.Pix[do+3] = a

			so += 4
			do += 4
		}
	}
	return dst, nil
}

// quantizeBitDepth rounds each channel independently to its nearest
// representable value at the given depth. No palette search, alpha
// untouched.
func quantizeBitDepth(src *image.NRGBA, bits int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	var lut [256]uint8
	levels := 1<<bits - 1
	for v := range lut {
		q := (v*levels + 127) / 255
		lut[v] = uint8((q*255 + levels/2) / levels)
	}

	for y := 0; y < h; y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			a := src.Pix[so+3]
			if a < alphaOpaqueMin {
				so += 4
				do += 4
				continue
			}

			dst.Pix[do+0] = lut[src.Pix[so+0]]
			dst.Pix[do+1] = lut[src.Pix[so+1]]
			dst.Pix[do+2] = lut[src.Pix[so+2]]
			dst.Pix[do+3] = a

			so += 4
			do += 4
		}
	}
	return dst
}
