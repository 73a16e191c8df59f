package tile

import (
	"fmt"
	"image"
)

// Geometry describes how a tile sheet maps onto a padded atlas.
//
// Rows counts tiles along the width of the sheet and Cols counts them along
// the height. Row selects the horizontal position of a tile, col the vertical.
type Geometry struct {
	Size       int
	Rows, Cols int

	// Padding is Size/8 and HalfPad is Padding/2, both truncated. When
	// Padding is odd the trailing band of each cell is one pixel wider than
	// the extruded band and stays transparent.
	Padding int
	HalfPad int

	CellWidth, CellHeight     int
	CanvasWidth, CanvasHeight int
}

// NewGeometry validates a width x height sheet against size and derives the
// atlas layout. It fails with ErrInvalidTileSize or ErrInvalidGeometry.
func NewGeometry(width, height, size int) (Geometry, error) {
	if size <= 0 {
		return Geometry{}, fmt.Errorf("%w: got %d", ErrInvalidTileSize, size)
	}
	if width < 0 || width%size != 0 {
		return Geometry{}, fmt.Errorf("%w: width %d, tile size %d", ErrInvalidGeometry, width, size)
	}
	if height < 0 || height%size != 0 {
		return Geometry{}, fmt.Errorf("%w: height %d, tile size %d", ErrInvalidGeometry, height, size)
	}

	padding := size / 8
	g := Geometry{
		Size:       size,
		Rows:       width / size,
		Cols:       height / size,
		Padding:    padding,
		HalfPad:    padding / 2,
		CellWidth:  size + padding,
		CellHeight: size + padding,
	}
	g.CanvasWidth = g.CellWidth * g.Rows
	g.CanvasHeight = g.CellHeight * g.Cols
	return g, nil
}

// Tiles returns the number of tiles in the grid
func (g Geometry) Tiles() int {
	return g.Rows * g.Cols
}

// SourceRect returns the rectangle of the tile at (row, col) in the sheet
func (g Geometry) SourceRect(row, col int) image.Rectangle {
	return image.Rect(row*g.Size, col*g.Size, (row+1)*g.Size, (col+1)*g.Size)
}

// Anchor returns the canvas position of the top-left body pixel of the tile
// at (row, col): every preceding cell, plus this cell's leading half padding.
func (g Geometry) Anchor(row, col int) image.Point {
	return image.Pt(row*g.CellWidth+g.HalfPad, col*g.CellHeight+g.HalfPad)
}

// Body returns the canvas rectangle holding the unmodified tile pixels
func (g Geometry) Body(row, col int) image.Rectangle {
	a := g.Anchor(row, col)
	return image.Rect(a.X, a.Y, a.X+g.Size, a.Y+g.Size)
}

// Cell returns the canvas rectangle reserved for the tile at (row, col).
// Cells of distinct tiles never intersect.
func (g Geometry) Cell(row, col int) image.Rectangle {
	return image.Rect(row*g.CellWidth, col*g.CellHeight, (row+1)*g.CellWidth, (col+1)*g.CellHeight)
}

// Extruded returns the rectangle Paint writes for the tile at (row, col):
// the body grown by HalfPad on every side.
func (g Geometry) Extruded(row, col int) image.Rectangle {
	return g.Body(row, col).Inset(-g.HalfPad)
}
