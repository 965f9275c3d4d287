package schedule

import (
	"github.com/lucasb-eyer/go-colorful"
)

// NeutralColor is returned for absent values and degenerate ranges.
const NeutralColor = "#808080"

// Gradient stops, low to high.
var (
	gradientLow  = mustHex("#2ecc71")
	gradientMid  = mustHex("#f1c40f")
	gradientHigh = mustHex("#e74c3c")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ScaleColor maps value within [low, high] onto the green → yellow → red gradient.
//
// A nil value or a zero-width range returns [NeutralColor]. Values outside the range are
// clamped. The lower half of the range blends green to yellow and the upper half yellow
// to red, both linearly in sRGB. The result is a lower-case "#rrggbb" string.
func ScaleColor(value *float64, low, high float64) string {
	if value == nil || low == high {
		return NeutralColor
	}

	t := (*value - low) / (high - low)
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}

	if t <= 0.5 {
		return gradientLow.BlendRgb(gradientMid, t*2).Clamped().Hex()
	}
	return gradientMid.BlendRgb(gradientHigh, t*2-1).Clamped().Hex()
}
