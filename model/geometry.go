package model

import "math"

// Point represents a 2D point in image pixel coordinates (Y grows downward)
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Quad is the 4-vertex polygon an OCR engine reports around a text unit.
// Vertices are usually clockwise from the top-left corner, but nothing here
// depends on the winding.
type Quad [4]Point

// NewQuadFromRect builds an axis-aligned quad from a rectangle.
func NewQuadFromRect(x0, y0, x1, y1 float64) Quad {
	return Quad{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}
}

// Centroid returns the arithmetic mean of the four vertices
func (q Quad) Centroid() Point {
	var sx, sy float64
	for _, v := range q {
		sx += v.X
		sy += v.Y
	}
	return Point{X: sx / 4, Y: sy / 4}
}

// Height returns the vertical extent of the polygon
func (q Quad) Height() float64 {
	minY, maxY := q[0].Y, q[0].Y
	for _, v := range q[1:] {
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}
	return maxY - minY
}

// Width returns the horizontal extent of the polygon
func (q Quad) Width() float64 {
	minX, maxX := q[0].X, q[0].X
	for _, v := range q[1:] {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
	}
	return maxX - minX
}

// Bounds returns the axis-aligned bounding box of the polygon
func (q Quad) Bounds() BBox {
	minX, minY := q[0].X, q[0].Y
	for _, v := range q[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
	}
	return BBox{X: minX, Y: minY, Width: q.Width(), Height: q.Height()}
}

// BBox represents an axis-aligned bounding box (rectangle)
type BBox struct {
	X      float64 // Left
	Y      float64 // Top (image coordinate system)
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Contains checks if a point is inside the bounding box (edges included)
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Top() && p.Y <= b.Bottom()
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Top(), other.Top())
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}
