package okcolor

import "math"

// Piecewise sRGB transfer function on 0-1 normalized channels.

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	} else {
		return x / 12.92
	}
}

const invGamma float64 = 1.0 / 2.4

func fromLinearChannel(x float64) float64 {
	if x >= 0.0031308 {
		return math.Pow(x, invGamma)*1.055 - 0.055
	} else {
		return x * 12.92
	}
}
