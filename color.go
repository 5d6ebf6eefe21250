package huectl

import (
	"math"

	"github.com/ngerakines/huectl/client"
)

// RGBToXY converts an 8-bit sRGB triple into the chromaticity pair the
// bridge expects. Values outside 0-255 are not rejected. Black maps to (0, 0).
func RGBToXY(r, g, b int) (x, y float64) {
	rf := gammaExpand(float64(r) / 255.0)
	gf := gammaExpand(float64(g) / 255.0)
	bf := gammaExpand(float64(b) / 255.0)

	X := rf*0.649926 + gf*0.103455 + bf*0.197109
	Y := rf*0.234327 + gf*0.743075 + bf*0.022598
	Z := rf*0.000000 + gf*0.053077 + bf*1.035763

	sum := X + Y + Z
	if sum == 0 {
		return 0, 0
	}
	return X / sum, Y / sum
}

// ToXY converts an RGB value into the wire representation.
func (c RGB) ToXY() client.XY {
	x, y := RGBToXY(c.R, c.G, c.B)
	return client.XY{x, y}
}

func gammaExpand(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}
