package sprite

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessSingleSolidRed(t *testing.T) {
	// 4x4 all-red source to a 2x2 sprite against [red, blue]: every output
	// pixel must be exactly the red palette entry.
	pal := redBluePalette(t)
	src := solid(4, 4, color.NRGBA{R: 255, A: 255})

	got, err := ProcessSingle(src, Size{W: 2, H: 2}, pal, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, 2, got.Rect.Dx())
	require.Equal(t, 2, got.Rect.Dy())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(x, y))
		}
	}
}

func TestProcessSingleKeepsTransparency(t *testing.T) {
	pal := redBluePalette(t)

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 230, G: 20, B: 20, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 230, G: 20, B: 20, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{R: 230, G: 20, B: 20, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{R: 120, G: 120, B: 120, A: 0})

	for _, strategy := range []QuantizeStrategy{QuantizeOKLabNearest, QuantizeOKLabBayer, QuantizeHistogram} {
		t.Run(strategy.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Quantize = strategy

			got, err := ProcessSingle(src, Size{W: 2, H: 2}, pal, opts)
			require.NoError(t, err)

			transparent := 0
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					c := got.NRGBAAt(x, y)
					if c.A == 0 {
						transparent++
						assert.Equal(t, color.NRGBA{}, c)
					} else {
						assert.Equal(t, color.NRGBA{R: 255, A: 255}, c)
					}
				}
			}
			assert.Equal(t, 1, transparent)
		})
	}
}

func TestProcessSingleOutlineEnabled(t *testing.T) {
	pal := redBluePalette(t)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 1; y < 4; y++ {
		for x := 1; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 250, A: 255})
		}
	}

	opts := DefaultOptions()
	opts.Outline = true
	opts.OutlineDarken = 0.5

	got, err := ProcessSingle(src, Size{W: 4, H: 4}, pal, opts)
	require.NoError(t, err)

	// The quantized red gets darkened wherever it borders transparency.
	assert.Equal(t, color.NRGBA{R: 127, A: 255}, got.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{}, got.NRGBAAt(0, 0))
}

func TestProcessSingleErrors(t *testing.T) {
	pal := redBluePalette(t)
	src := solid(4, 4, color.NRGBA{A: 255})

	_, err := ProcessSingle(src, Size{W: 0, H: 2}, pal, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = ProcessSingle(src, Size{W: 2, H: 0}, pal, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = ProcessSingle(nil, Size{W: 2, H: 2}, pal, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	short := &image.NRGBA{
		Pix:    make([]uint8, 8),
		Stride: 16,
		Rect:   image.Rect(0, 0, 4, 4),
	}
	_, err = ProcessSingle(short, Size{W: 2, H: 2}, pal, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestProcessSheetConsistentFrames(t *testing.T) {
	// Solid single-color sheet: all three frames must pick the identical
	// palette entry, the whole point of sharing the palette cache.
	pal := redBluePalette(t)
	src := solid(12, 4, color.NRGBA{R: 200, G: 40, B: 40, A: 255})

	frames, err := ProcessSheet(src, 3, Size{W: 2, H: 2}, pal, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, frames, 3)

	want := frames[0].NRGBAAt(0, 0)
	assert.EqualValues(t, 255, want.A)
	for i, frame := range frames {
		require.Equal(t, 2, frame.Rect.Dx())
		require.Equal(t, 2, frame.Rect.Dy())
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				require.Equal(t, want, frame.NRGBAAt(x, y), "frame %d (%d,%d)", i, x, y)
			}
		}
	}
}

func TestProcessSheetRemainderTruncated(t *testing.T) {
	pal := redBluePalette(t)
	// Left 9 columns red, last column blue; 3 frames of width 3 drop the
	// remainder column entirely.
	src := solid(10, 3, color.NRGBA{R: 255, A: 255})
	for y := 0; y < 3; y++ {
		src.SetNRGBA(9, y, color.NRGBA{B: 255, A: 255})
	}

	frames, err := ProcessSheet(src, 3, Size{W: 3, H: 3}, pal, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, frames, 3)

	for i, frame := range frames {
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				require.Equal(t, color.NRGBA{R: 255, A: 255}, frame.NRGBAAt(x, y),
					"frame %d (%d,%d)", i, x, y)
			}
		}
	}
}

func TestProcessSheetErrors(t *testing.T) {
	pal := redBluePalette(t)
	src := solid(4, 4, color.NRGBA{A: 255})

	_, err := ProcessSheet(src, 0, Size{W: 2, H: 2}, pal, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = ProcessSheet(src, 5, Size{W: 2, H: 2}, pal, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDimensions, "more frames than columns")
}

func TestProcessSheetDoesNotMutateSource(t *testing.T) {
	pal := redBluePalette(t)
	src := solid(12, 4, color.NRGBA{R: 250, G: 10, B: 10, A: 255})
	before := append([]uint8(nil), src.Pix...)

	_, err := ProcessSheet(src, 3, Size{W: 2, H: 2}, pal, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, src.Pix)
}

func TestKeyBackground(t *testing.T) {
	// Mostly-white canvas with a red square: keying drops the backdrop and
	// leaves the subject.
	src := solid(8, 8, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	for y := 3; y < 5; y++ {
		for x := 3; x < 5; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	got := keyBackground(src, 48)

	assert.Equal(t, color.NRGBA{}, got.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(3, 3))
}

func TestProcessSingleWithKeying(t *testing.T) {
	pal := redBluePalette(t)

	src := solid(8, 8, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			src.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}

	opts := DefaultOptions()
	opts.KeyBackground = true

	got, err := ProcessSingle(src, Size{W: 4, H: 4}, pal, opts)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{}, got.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, got.NRGBAAt(1, 1))
}

func TestValidateRaster(t *testing.T) {
	assert.ErrorIs(t, validateRaster(nil), ErrInvalidDimensions)
	assert.NoError(t, validateRaster(image.NewNRGBA(image.Rect(0, 0, 0, 0))))
	assert.NoError(t, validateRaster(image.NewNRGBA(image.Rect(0, 0, 3, 3))))

	short := &image.NRGBA{
		Pix:    make([]uint8, 4),
		Stride: 8,
		Rect:   image.Rect(0, 0, 2, 2),
	}
	assert.ErrorIs(t, validateRaster(short), ErrInvalidDimensions)
}
