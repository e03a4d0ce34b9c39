package render

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ActiveColor is the fill of the node marker on the active lane.
const ActiveColor = "#ff0000"

// LaneHSL returns the colour of lane tid as hue in degrees and saturation and
// lightness in percent.
func LaneHSL(tid int) (h, s, l float64) {
	if tid < 0 {
		tid = -tid
	}
	h = math.Mod(float64(tid)*137.508, 360)
	s = float64(70 + tid%30)
	l = float64(45 + tid%20)
	return h, s, l
}

// LaneColor returns the CSS colour of lane tid.
func LaneColor(tid int) string {
	h, s, l := LaneHSL(tid)
	return fmt.Sprintf("hsl(%.3f, %.0f%%, %.0f%%)", h, s, l)
}

// LaneHex returns the colour of lane tid as a #rrggbb string.
func LaneHex(tid int) string {
	h, s, l := LaneHSL(tid)
	return colorful.Hsl(h, s/100, l/100).Clamped().Hex()
}
