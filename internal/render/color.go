package render

import colorful "github.com/lucasb-eyer/go-colorful"

// HSL converts hue, saturation and lightness in [0,1] to 8-bit RGB.
func HSL(h, s, l float64) (r, g, b uint8) {
	return colorful.Hsl(clamp01(h)*360, clamp01(s), clamp01(l)).RGB255()
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
