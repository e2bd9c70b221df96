package tui

import (
	"math"

	"github.com/dora-ryukyu/word2vec3d/projection"
)

const (
	// cellAspect is how many columns one row spans on screen.
	cellAspect = 2.0

	rotationStep = math.Pi / 36
	zoomStep     = 1.1
	minZoom      = 0.25
	maxZoom      = 8
	maxPitch     = math.Pi / 2
)

// camera is an orthographic view orbiting the origin of the normalized cube
// mapped to [-1, 1]³.
type camera struct {
	yaw   float64
	pitch float64
	zoom  float64
}

func newCamera() camera {
	return camera{yaw: math.Pi / 6, pitch: -math.Pi / 9, zoom: 1}
}

func (c camera) rotate(deltaYaw, deltaPitch float64) camera {
	c.yaw = math.Mod(c.yaw+deltaYaw, 2*math.Pi)
	c.pitch = math.Max(-maxPitch, math.Min(maxPitch, c.pitch+deltaPitch))
	return c
}

func (c camera) zoomBy(factor float64) camera {
	c.zoom = math.Max(minZoom, math.Min(maxZoom, c.zoom*factor))
	return c
}

// worldPosition centres a normalized point on the origin: (n-0.5)*2.
func worldPosition(normalized projection.Point3D) projection.Point3D {
	var world projection.Point3D
	for axis := range normalized {
		world[axis] = (normalized[axis] - 0.5) * 2
	}
	return world
}

// view rotates a world point about the vertical axis by yaw, then about the
// horizontal axis by pitch. The returned depth grows away from the viewer.
func (c camera) view(world projection.Point3D) (x, y, depth float64) {
	sinYaw, cosYaw := math.Sincos(c.yaw)
	sinPitch, cosPitch := math.Sincos(c.pitch)

	x = world[0]*cosYaw - world[2]*sinYaw
	z := world[0]*sinYaw + world[2]*cosYaw

	y = world[1]*cosPitch - z*sinPitch
	depth = world[1]*sinPitch + z*cosPitch
	return x, y, depth
}

// screenCell maps a world point onto a width×height character grid. The
// cube fills the smaller of the two extents at zoom 1. ok is false when the
// point falls outside the grid.
func (c camera) screenCell(world projection.Point3D, width, height int) (column, row int, depth float64, ok bool) {
	x, y, depth := c.view(world)

	halfRows := float64(height-1) / 2
	halfColumns := float64(width-1) / 2
	unit := math.Min(halfRows, halfColumns/cellAspect) * c.zoom / math.Sqrt(3)

	column = int(math.Round(halfColumns + x*unit*cellAspect))
	row = int(math.Round(halfRows - y*unit))
	ok = column >= 0 && column < width && row >= 0 && row < height
	return column, row, depth, ok
}
