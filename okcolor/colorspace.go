// based on:
// https://bottosson.github.io/posts/oklab/
// https://bottosson.github.io/posts/colorwrong/#what-can-we-do%3F

package okcolor

import (
	"image/color"
	"math"
)

// Lab is a color in the OKLAB color space. Euclidean distance between two
// Lab values approximates perceived color difference, which is what makes
// nearest-color search against small palettes behave; plain sRGB distance
// over-weights green. Alpha is carried separately by callers.
type Lab struct {
	L float64 // perceived lightness
	A float64 // how green/red the color is
	B float64 // how blue/yellow the color is
}

var Model = color.ModelFunc(labConvert)

func labConvert(c color.Color) color.Color {
	if lc, ok := c.(Lab); ok {
		return lc
	}

	r, g, b, _ := c.RGBA()
	return fromLinear(toLinear(float64(r)/65535), toLinear(float64(g)/65535), toLinear(float64(b)/65535))
}

// FromRGB8 converts sRGB-encoded 8-bit channels to OKLAB.
func FromRGB8(r, g, b uint8) Lab {
	return fromLinear(toLinear(float64(r)/255), toLinear(float64(g)/255), toLinear(float64(b)/255))
}

func fromLinear(r, g, b float64) Lab {
	l := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	m := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	s := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	return Lab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

// DistanceSquared returns the squared Euclidean distance to o. Squared
// because nearest-color search only needs relative ordering and the sqrt
// would sit in a hot loop.
func (lc Lab) DistanceSquared(o Lab) float64 {
	dL := lc.L - o.L
	dA := lc.A - o.A
	dB := lc.B - o.B
	return dL*dL + dA*dA + dB*dB
}

// NRGBA converts back to 8-bit sRGB, clamping each linear channel into
// [0,1]. Out-of-gamut inputs lose chroma to the clamp.
func (lc Lab) NRGBA() color.NRGBA {
	l := lc.L + 0.3963377774*lc.A + 0.2158037573*lc.B
	l = l * l * l
	m := lc.L - 0.1055613458*lc.A - 0.0638541728*lc.B
	m = m * m * m
	s := lc.L - 0.0894841775*lc.A - 1.2914855480*lc.B
	s = s * s * s

	r := +4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return color.NRGBA{
		R: uint8(math.Round(fromLinearChannel(clamp01(r)) * 255)),
		G: uint8(math.Round(fromLinearChannel(clamp01(g)) * 255)),
		B: uint8(math.Round(fromLinearChannel(clamp01(b)) * 255)),
		A: 0xFF,
	}
}

// RGBA implements color.Color.
func (lc Lab) RGBA() (uint32, uint32, uint32, uint32) {
	return lc.NRGBA().RGBA()
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
