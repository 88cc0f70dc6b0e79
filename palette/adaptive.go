package palette

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Adaptive palette derivation, for sources that have no fixed target
// console. Both strategies yield an ordinary explicit-color Palette so the
// rest of the pipeline is unaware the colors were learned from the image.

const maxSamples = 4096

// FromImageMedianCut derives an up-to-numColors palette with histogram
// median-cut.
func FromImageMedianCut(img image.Image, numColors int) (*Palette, error) {
	if numColors < 1 {
		return nil, fmt.Errorf("palette: invalid adaptive color count: %d", numColors)
	}

	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, numColors), img)
	if len(pal) == 0 {
		return nil, fmt.Errorf("palette: image yielded no colors")
	}

	cols := make([]color.NRGBA, len(pal))
	for i, c := range pal {
		cols[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return New(cols)
}

// FromImageKMeans derives a numColors palette by k-means clustering of a
// pixel sample in CIE Lab, so cluster centers land on perceptual rather than
// channel-wise means. Centers are clamped back into sRGB gamut.
func FromImageKMeans(img image.Image, numColors int) (*Palette, error) {
	if numColors < 1 {
		return nil, fmt.Errorf("palette: invalid adaptive color count: %d", numColors)
	}

	obs := sampleLab(img)
	if len(obs) < numColors {
		return nil, fmt.Errorf("palette: only %d usable pixels for %d clusters", len(obs), numColors)
	}

	km := kmeans.New()
	cs, err := km.Partition(obs, numColors)
	if err != nil {
		return nil, fmt.Errorf("palette: clustering failed: %w", err)
	}

	cols := make([]color.NRGBA, 0, len(cs))
	for _, c := range cs {
		center := colorful.Lab(c.Center[0], c.Center[1], c.Center[2]).Clamped()
		r, g, b := center.RGB255()
		cols = append(cols, color.NRGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return New(cols)
}

// sampleLab collects at most maxSamples opaque-ish pixels as Lab
// observations, striding evenly across the image.
func sampleLab(img image.Image) clusters.Observations {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 {
		return nil
	}
	step := total/maxSamples + 1

	obs := make(clusters.Observations, 0, total/step+1)
	for i := 0; i < total; i += step {
		x := bounds.Min.X + i%bounds.Dx()
		y := bounds.Min.Y + i/bounds.Dx()

		r, g, b, a := img.At(x, y).RGBA()
		if a>>8 < 10 {
			continue
		}
		c := colorful.Color{
			R: float64(r) / 65535,
			G: float64(g) / 65535,
			B: float64(b) / 65535,
		}
		l, la, lb := c.Lab()
		obs = append(obs, clusters.Coordinates{l, la, lb})
	}
	return obs
}
