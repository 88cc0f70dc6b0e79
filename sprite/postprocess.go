package sprite

import "image"

// Neighbor offsets in scan order. Cleanup tie-breaks depend on this order
// staying fixed.
var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// CleanupOrphans replaces isolated off-color pixels, the usual anti-aliasing
// fringe artifacts, with their surroundings. An interior opaque pixel whose
// opaque 8-neighbors all differ by at least 3*colorThreshold in summed
// channel distance is rewritten to the most frequent opaque neighbor color
// (ties to the first such color in neighbor scan order). Alpha is untouched.
// Single pass over the original: an orphan created by a fix is not chased.
// Border pixels are skipped so the neighborhood lookups stay branch-free.
func CleanupOrphans(src *image.NRGBA, colorThreshold int) *image.NRGBA {
	in := cloneRaster(src)
	dst := cloneRaster(src)

	w, h := in.Rect.Dx(), in.Rect.Dy()
	if w < 3 || h < 3 {
		return dst
	}
	limit := 3 * colorThreshold

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			o := in.PixOffset(x, y)
			if in.Pix[o+3] < alphaOpaqueMin {
				continue
			}
			r, g, b := in.Pix[o+0], in.Pix[o+1], in.Pix[o+2]

			matches := 0
			var opaque [8][3]uint8
			opaqueCount := 0
			for _, d := range neighbors8 {
				no := in.PixOffset(x+d[0], y+d[1])
				if in.Pix[no+3] < alphaOpaqueMin {
					continue
				}
				nr, ng, nb := in.Pix[no+0], in.Pix[no+1], in.Pix[no+2]
				opaque[opaqueCount] = [3]uint8{nr, ng, nb}
				opaqueCount++

				if absDiff(r, nr)+absDiff(g, ng)+absDiff(b, nb) < limit {
					matches++
				}
			}

			if matches > 0 || opaqueCount == 0 {
				continue
			}

			// Most frequent neighbor color, first-found on ties.
			best, bestCount := 0, 0
			for i := 0; i < opaqueCount; i++ {
				count := 0
				for j := 0; j < opaqueCount; j++ {
					if opaque[j] == opaque[i] {
						count++
					}
				}
				if count > bestCount {
					best, bestCount = i, count
				}
			}

			do := dst.PixOffset(x, y)
			dst.Pix[do+0] = opaque[best][0]
			dst.Pix[do+1] = opaque[best][1]
			dst.Pix[do+2] = opaque[best][2]
		}
	}

	return dst
}

// GenerateOutlines darkens every opaque pixel that touches transparency or
// the raster boundary 4-adjacently, multiplying RGB by (1-darkenFactor) and
// leaving alpha alone. Produces the 1-pixel silhouette outline hand-drawn
// pixel art usually has and generated art usually lacks.
func GenerateOutlines(src *image.NRGBA, darkenFactor float64) *image.NRGBA {
	in := cloneRaster(src)
	dst := cloneRaster(src)

	w, h := in.Rect.Dx(), in.Rect.Dy()
	scale := 1 - darkenFactor

	transparentAt := func(x, y int) bool {
		if x < 0 || x >= w || y < 0 || y >= h {
			return true
		}
		return in.Pix[in.PixOffset(x, y)+3] < alphaOpaqueMin
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := in.PixOffset(x, y)
			if in.Pix[o+3] < alphaOpaqueMin {
				continue
			}
			if !transparentAt(x-1, y) && !transparentAt(x+1, y) &&
				!transparentAt(x, y-1) && !transparentAt(x, y+1) {
				continue
			}

			do := dst.PixOffset(x, y)
			dst.Pix[do+0] = uint8(float64(in.Pix[o+0]) * scale)
			dst.Pix[do+1] = uint8(float64(in.Pix[o+1]) * scale)
			dst.Pix[do+2] = uint8(float64(in.Pix[o+2]) * scale)
		}
	}

	return dst
}
