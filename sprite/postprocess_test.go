package sprite

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOrphansReplacesIsolatedPixel(t *testing.T) {
	src := solid(5, 5, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(2, 2, color.NRGBA{B: 255, A: 255})

	got := CleanupOrphans(src, 16)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(2, 2))
}

func TestCleanupOrphansStable(t *testing.T) {
	src := solid(5, 5, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(2, 2, color.NRGBA{B: 255, A: 255})

	once := CleanupOrphans(src, 16)
	twice := CleanupOrphans(once, 16)
	assert.Equal(t, once.Pix, twice.Pix)
}

func TestCleanupOrphansKeepsMatchingPixels(t *testing.T) {
	src := solid(5, 5, color.NRGBA{R: 200, A: 255})
	// Within 3*16 summed difference of its neighbors, so not an orphan.
	src.SetNRGBA(2, 2, color.NRGBA{R: 210, G: 10, A: 255})

	got := CleanupOrphans(src, 16)
	assert.Equal(t, color.NRGBA{R: 210, G: 10, A: 255}, got.NRGBAAt(2, 2))
}

func TestCleanupOrphansMostFrequentNeighborWins(t *testing.T) {
	src := solid(3, 3, color.NRGBA{R: 255, A: 255})
	// Three green neighbors against five red ones; red must win.
	src.SetNRGBA(0, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})

	got := CleanupOrphans(src, 16)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(1, 1))
}

func TestCleanupOrphansLeavesAlphaAndBorder(t *testing.T) {
	src := solid(5, 5, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(2, 2, color.NRGBA{B: 255, A: 200})
	src.SetNRGBA(0, 0, color.NRGBA{B: 255, A: 255}) // border orphan, skipped

	got := CleanupOrphans(src, 16)
	assert.EqualValues(t, 200, got.NRGBAAt(2, 2).A)
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, got.NRGBAAt(0, 0))
}

func TestCleanupOrphansTinyRaster(t *testing.T) {
	src := solid(2, 2, color.NRGBA{R: 255, A: 255})
	got := CleanupOrphans(src, 16)
	assert.Equal(t, src.Pix, got.Pix)
}

func TestGenerateOutlinesDarkensSilhouette(t *testing.T) {
	// 5x5 transparent canvas with an opaque 3x3 block in the middle.
	src := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	got := GenerateOutlines(src, 0.5)

	// Every block edge pixel touches transparency and darkens.
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 255}, got.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 255}, got.NRGBAAt(2, 1))
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 255}, got.NRGBAAt(3, 2))

	// The block center has four opaque neighbors and stays put.
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, got.NRGBAAt(2, 2))

	// Transparent pixels stay transparent.
	assert.Equal(t, color.NRGBA{}, got.NRGBAAt(0, 0))
}

func TestGenerateOutlinesMonotoneAndAlphaPreserving(t *testing.T) {
	src := gradientImage(6, 6)
	src.SetNRGBA(3, 3, color.NRGBA{R: 90, G: 90, B: 90, A: 130})

	got := GenerateOutlines(src, 0.3)

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			before := src.NRGBAAt(x, y)
			after := got.NRGBAAt(x, y)
			require.LessOrEqual(t, after.R, before.R, "(%d,%d)", x, y)
			require.LessOrEqual(t, after.G, before.G, "(%d,%d)", x, y)
			require.LessOrEqual(t, after.B, before.B, "(%d,%d)", x, y)
			require.Equal(t, before.A, after.A, "(%d,%d)", x, y)
		}
	}
}

func TestGenerateOutlinesRasterBoundaryCounts(t *testing.T) {
	src := solid(3, 3, color.NRGBA{R: 200, A: 255})

	got := GenerateOutlines(src, 0.5)

	// Fully opaque image: the outer ring borders the raster edge, the
	// center does not.
	assert.Equal(t, color.NRGBA{R: 100, A: 255}, got.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{R: 200, A: 255}, got.NRGBAAt(1, 1))
}

func TestPostProcessDoesNotMutateInput(t *testing.T) {
	src := solid(5, 5, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(2, 2, color.NRGBA{B: 255, A: 255})
	before := append([]uint8(nil), src.Pix...)

	CleanupOrphans(src, 16)
	GenerateOutlines(src, 0.5)
	assert.Equal(t, before, src.Pix)
}
