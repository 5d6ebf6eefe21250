package huectl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToXY_Black(t *testing.T) {
	x, y := RGBToXY(0, 0, 0)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
}

func TestRGBToXY_Golden(t *testing.T) {
	tests := []struct {
		rgb  RGB
		x, y float64
	}{
		{RGB{255, 0, 0}, 0.7350000509, 0.2649999491},
		{RGB{0, 255, 0}, 0.1150002168, 0.8259995754},
		{RGB{0, 0, 255}, 0.1570001673, 0.0179996336},
		{RGB{0, 128, 0}, 0.1150002168, 0.8259995754},
		{RGB{128, 0, 128}, 0.3958619877, 0.1200739535},
		{RGB{255, 255, 0}, 0.4223319095, 0.5479140740},
		{RGB{0, 255, 255}, 0.1394678705, 0.3552880013},
	}
	for _, tt := range tests {
		x, y := RGBToXY(tt.rgb.R, tt.rgb.G, tt.rgb.B)
		assert.InDelta(t, tt.x, x, 1e-9, "x for %s", tt.rgb)
		assert.InDelta(t, tt.y, y, 1e-9, "y for %s", tt.rgb)
	}
}

func TestRGBToXY_PureChannelsMatchMatrix(t *testing.T) {
	// A single saturated channel linearizes to exactly 1, leaving one matrix column.
	columns := []struct {
		rgb     RGB
		X, Y, Z float64
	}{
		{RGB{255, 0, 0}, 0.649926, 0.234327, 0},
		{RGB{0, 255, 0}, 0.103455, 0.743075, 0.053077},
		{RGB{0, 0, 255}, 0.197109, 0.022598, 1.035763},
	}
	for _, c := range columns {
		sum := c.X + c.Y + c.Z
		x, y := RGBToXY(c.rgb.R, c.rgb.G, c.rgb.B)
		assert.InDelta(t, c.X/sum, x, 1e-12)
		assert.InDelta(t, c.Y/sum, y, 1e-12)
	}
}

func TestRGBToXY_Gray(t *testing.T) {
	// Every gray projects to the same point, which is not (1/3, 1/3).
	for v := 1; v <= 255; v++ {
		x, y := RGBToXY(v, v, v)
		assert.InDelta(t, 0.3127301083, x, 1e-9, "gray %d", v)
		assert.InDelta(t, 0.3290198827, y, 1e-9, "gray %d", v)
		assert.True(t, x >= 0 && x <= 1)
		assert.True(t, y >= 0 && y <= 1)
	}
}

func TestRGB_ToXY(t *testing.T) {
	xy := RGB{255, 0, 0}.ToXY()
	assert.InDelta(t, 0.7350000509, xy[0], 1e-9)
	assert.InDelta(t, 0.2649999491, xy[1], 1e-9)
}
