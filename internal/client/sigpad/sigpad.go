// Package sigpad captures freehand signatures on a fixed-size raster
// surface and serializes them to PNG. Each of an entry's four signature
// slots is backed by its own pad.
package sigpad

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Point is one raster coordinate of a stroke.
type Point struct {
	X int
	Y int
}

// Pad is a single signature surface. The background is opaque white; strokes
// are drawn in black. A pad is empty until the first stroke lands inside its
// bounds.
type Pad struct {
	img   *image.RGBA
	empty bool
}

func New(width, height int) *Pad {
	p := &Pad{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	p.Clear()
	return p
}

// IsEmpty reports whether no stroke has been drawn since the last Clear.
func (p *Pad) IsEmpty() bool {
	return p.empty
}

// Stroke draws a connected polyline through the given points. Points outside
// the surface are clipped; a stroke that lands entirely outside leaves the
// pad empty.
func (p *Pad) Stroke(points []Point) {
	if len(points) == 0 {
		return
	}
	if len(points) == 1 {
		p.plot(points[0].X, points[0].Y)
		return
	}
	for i := 1; i < len(points); i++ {
		p.line(points[i-1], points[i])
	}
}

// Commit serializes the current surface as PNG. An empty pad commits to nil,
// so omitted slots never overwrite a stored signature.
func (p *Pad) Commit() ([]byte, error) {
	if p.empty {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Clear resets the surface to the blank background state.
func (p *Pad) Clear() {
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	p.empty = true
}

func (p *Pad) plot(x, y int) {
	if !(image.Point{X: x, Y: y}).In(p.img.Bounds()) {
		return
	}
	p.img.Set(x, y, color.Black)
	p.empty = false
}

// line draws a segment with Bresenham stepping.
func (p *Pad) line(a, b Point) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	x, y := a.X, a.Y
	for {
		p.plot(x, y)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
