package model

// Symbol is a single recognized glyph reduced to the geometry the table
// reconstruction needs: the centroid of its bounding polygon and its
// vertical extent. Symbols are values and never change after creation.
type Symbol struct {
	Text   string
	X, Y   float64
	Height float64
}

// NewSymbol derives a Symbol from recognized text and its bounding polygon.
func NewSymbol(text string, q Quad) Symbol {
	c := q.Centroid()
	return Symbol{
		Text:   text,
		X:      c.X,
		Y:      c.Y,
		Height: q.Height(),
	}
}

// Position returns the symbol centroid as a Point
func (s Symbol) Position() Point {
	return Point{X: s.X, Y: s.Y}
}
