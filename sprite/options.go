// Package sprite turns an arbitrary raster into retro-console pixel art:
// downscale to a sprite grid, quantize onto a fixed palette in OKLAB,
// optionally dither, then clean up outlines and stray pixels. Every function
// is pure and returns a freshly allocated buffer; inputs are never mutated.
package sprite

import "errors"

var (
	ErrInvalidDimensions  = errors.New("sprite: invalid dimensions")
	ErrUnknownStrategy    = errors.New("sprite: unknown strategy")
	ErrUnknownPaletteMode = errors.New("sprite: unknown palette mode")
)

// Size is the target sprite grid.
type Size struct {
	W int
	H int
}

// PaletteMode selects how palette colors are defined.
type PaletteMode uint8

const (
	// PaletteFixed maps pixels onto an explicit color list.
	PaletteFixed PaletteMode = iota
	// PaletteBitDepth truncates each channel to the palette's bit depth,
	// for consoles whose hardware defines the palette implicitly.
	PaletteBitDepth
)

func (m PaletteMode) String() string {
	switch m {
	case PaletteFixed:
		return "fixed-palette"
	case PaletteBitDepth:
		return "bit-depth-reduce"
	}
	return "unknown"
}

// DownscaleStrategy selects how each output cell is reduced from its source
// region.
type DownscaleStrategy uint8

const (
	// DownscaleMode picks the most common binned color per cell. Keeps hard
	// edges that averaging smears; the default for pixel-art output.
	DownscaleMode DownscaleStrategy = iota
	// DownscaleAverage takes the per-channel mean, alpha included.
	DownscaleAverage
)

func (s DownscaleStrategy) String() string {
	switch s {
	case DownscaleMode:
		return "mode"
	case DownscaleAverage:
		return "average"
	}
	return "unknown"
}

// QuantizeStrategy selects how pixels are mapped onto the palette.
type QuantizeStrategy uint8

const (
	// QuantizeOKLabNearest maps each pixel to the perceptually nearest
	// palette entry.
	QuantizeOKLabNearest QuantizeStrategy = iota
	// QuantizeOKLabBayer is the nearest search with the pixel's lightness
	// perturbed by a tiled 4x4 Bayer threshold before comparison.
	QuantizeOKLabBayer
	// QuantizeHistogram is the classic sRGB error-diffusion reducer, kept
	// for users wanting traditional dithered output.
	QuantizeHistogram
)

func (s QuantizeStrategy) String() string {
	switch s {
	case QuantizeOKLabNearest:
		return "oklab-nearest"
	case QuantizeOKLabBayer:
		return "oklab-bayer-dither"
	case QuantizeHistogram:
		return "legacy-histogram"
	}
	return "unknown"
}

// DiffusionKernel selects the error-diffusion matrix for QuantizeHistogram.
type DiffusionKernel uint8

const (
	KernelFloydSteinberg DiffusionKernel = iota
	KernelAtkinson
	KernelStucki
	KernelSierra
	KernelSierraLite
	KernelNone
)

func (k DiffusionKernel) String() string {
	switch k {
	case KernelFloydSteinberg:
		return "floyd-steinberg"
	case KernelAtkinson:
		return "atkinson"
	case KernelStucki:
		return "stucki"
	case KernelSierra:
		return "sierra"
	case KernelSierraLite:
		return "sierra-lite"
	case KernelNone:
		return "none"
	}
	return "unknown"
}

// Options configures a pipeline invocation.
type Options struct {
	PaletteMode PaletteMode
	Downscale   DownscaleStrategy
	Quantize    QuantizeStrategy
	// DitherStrength scales the Bayer lightness perturbation. OKLAB L spans
	// roughly [0,1]; values around 0.05-0.12 give the classic cross-hatch
	// without washing out flat regions. 0 disables the perturbation.
	DitherStrength float64
	// Kernel and Serpentine apply to QuantizeHistogram only.
	Kernel     DiffusionKernel
	Serpentine bool
	// Cleanup removes isolated off-color pixels, typically anti-aliasing
	// fringe left over from the source. CleanupThreshold is the per-channel
	// difference under which two colors count as matching.
	Cleanup          bool
	CleanupThreshold int
	// Outline darkens the silhouette border by OutlineDarken, in (0,1).
	Outline       bool
	OutlineDarken float64
	// KeyBackground makes pixels near the dominant source color fully
	// transparent before downscaling, for generated art that arrives on a
	// solid backdrop. KeyThreshold is the summed RGB difference tolerance.
	KeyBackground bool
	KeyThreshold  int
}

// DefaultOptions returns the settings used when the caller has no opinion.
func DefaultOptions() Options {
	return Options{
		PaletteMode:      PaletteFixed,
		Downscale:        DownscaleMode,
		Quantize:         QuantizeOKLabNearest,
		DitherStrength:   0.08,
		Kernel:           KernelFloydSteinberg,
		Serpentine:       true,
		Cleanup:          true,
		CleanupThreshold: 16,
		Outline:          false,
		OutlineDarken:    0.5,
		KeyBackground:    false,
		KeyThreshold:     48,
	}
}
