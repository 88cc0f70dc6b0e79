package sprite

import (
	"fmt"
	"image"
)

// Downscale reduces src to a targetW by targetH grid. Each output cell
// covers the source region [floor(x*cellW), floor((x+1)*cellW)) horizontally
// and likewise vertically, with real-valued cell sizes so boundaries stay
// evenly distributed when they do not align to whole pixels. A target larger
// than the source is tolerated and degrades to nearest-pixel sampling.
func Downscale(src *image.NRGBA, targetW, targetH int, strategy DownscaleStrategy) (*image.NRGBA, error) {
	if err := validateRaster(src); err != nil {
		return nil, err
	}
	if targetW < 1 || targetH < 1 {
		return nil, fmt.Errorf("%w: downscale target %dx%d", ErrInvalidDimensions, targetW, targetH)
	}

	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW < 1 || srcH < 1 {
		return nil, fmt.Errorf("%w: downscale source %dx%d", ErrInvalidDimensions, srcW, srcH)
	}

	var cell func(x0, y0, x1, y1 int) [4]uint8
	switch strategy {
	case DownscaleAverage:
		cell = func(x0, y0, x1, y1 int) [4]uint8 { return averageCell(src, x0, y0, x1, y1) }
	case DownscaleMode:
		cell = func(x0, y0, x1, y1 int) [4]uint8 { return modeCell(src, x0, y0, x1, y1) }
	default:
		return nil, fmt.Errorf("%w: downscale strategy %d", ErrUnknownStrategy, strategy)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	cellW := float64(srcW) / float64(targetW)
	cellH := float64(srcH) / float64(targetH)

	for ty := 0; ty < targetH; ty++ {
		y0 := int(float64(ty) * cellH)
		y1 := int(float64(ty+1) * cellH)
		if y1 <= y0 {
			y1 = y0 + 1
		}
		if y1 > srcH {
			y1 = srcH
		}

		for tx := 0; tx < targetW; tx++ {
			x0 := int(float64(tx) * cellW)
			x1 := int(float64(tx+1) * cellW)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			if x1 > srcW {
				x1 = srcW
			}

			px := cell(b.Min.X+x0, b.Min.Y+y0, b.Min.X+x1, b.Min.Y+y1)
			o := dst.PixOffset(tx, ty)
			dst.Pix[o+0] = px[0]
			dst.Pix[o+1] = px[1]
			dst.Pix[o+2] = px[2]
			dst.Pix[o+3] = px[3]
		}
	}

	return dst, nil
}

// averageCell takes the per-channel arithmetic mean, alpha included, rounded
// to nearest. Smooths noise at the cost of blurring hard edges.
func averageCell(src *image.NRGBA, x0, y0, x1, y1 int) [4]uint8 {
	var sum [4]int
	for y := y0; y < y1; y++ {
		o := src.PixOffset(x0, y)
		for x := x0; x < x1; x++ {
			sum[0] += int(src.Pix[o+0])
			sum[1] += int(src.Pix[o+1])
			sum[2] += int(src.Pix[o+2])
			sum[3] += int(src.Pix[o+3])
			o += 4
		}
	}

	n := (x1 - x0) * (y1 - y0)
	var out [4]uint8
	for i := range sum {
		out[i] = uint8((sum[i] + n/2) / n)
	}
	return out
}

// modeCell picks the most frequent color in the cell. Colors are binned by
// their top 5 bits per channel so near-duplicate anti-aliased shades merge
// into one bucket; the bucket keeps the first pixel it saw as its
// representative. On a count tie the bucket encountered first in scan order
// wins.
func modeCell(src *image.NRGBA, x0, y0, x1, y1 int) [4]uint8 {
	type bucket struct {
		key   uint32
		count int
		rep   [4]uint8
	}

	var buckets []bucket
	index := make(map[uint32]int)

	for y := y0; y < y1; y++ {
		o := src.PixOffset(x0, y)
		for x := x0; x < x1; x++ {
			r, g, b, a := src.Pix[o+0], src.Pix[o+1], src.Pix[o+2], src.Pix[o+3]
			key := uint32(r>>3)<<10 | uint32(g>>3)<<5 | uint32(b>>3)
			if i, ok := index[key]; ok {
				buckets[i].count++
			} else {
				index[key] = len(buckets)
				buckets = append(buckets, bucket{key: key, count: 1, rep: [4]uint8{r, g, b, a}})
			}
			o += 4
		}
	}

	best := 0
	for i := 1; i < len(buckets); i++ {
		// Strict > keeps the earliest bucket on ties.
		if buckets[i].count > buckets[best].count {
			best = i
		}
	}
	return buckets[best].rep
}
