package tile

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeometry(t *testing.T) {
	testCases := []struct {
		name          string
		width, height int
		size          int
		want          Geometry
	}{
		{
			name: "two by two 32 pixel tiles",
			width: 64, height: 64, size: 32,
			want: Geometry{
				Size: 32, Rows: 2, Cols: 2, Padding: 4, HalfPad: 2,
				CellWidth: 36, CellHeight: 36, CanvasWidth: 72, CanvasHeight: 72,
			},
		},
		{
			name: "rows count along the width",
			width: 96, height: 32, size: 32,
			want: Geometry{
				Size: 32, Rows: 3, Cols: 1, Padding: 4, HalfPad: 2,
				CellWidth: 36, CellHeight: 36, CanvasWidth: 108, CanvasHeight: 36,
			},
		},
		{
			name: "eight pixel tiles have no extruded band",
			width: 16, height: 24, size: 8,
			want: Geometry{
				Size: 8, Rows: 2, Cols: 3, Padding: 1, HalfPad: 0,
				CellWidth: 9, CellHeight: 9, CanvasWidth: 18, CanvasHeight: 27,
			},
		},
		{
			name: "odd padding truncates the half band",
			width: 48, height: 24, size: 24,
			want: Geometry{
				Size: 24, Rows: 2, Cols: 1, Padding: 3, HalfPad: 1,
				CellWidth: 27, CellHeight: 27, CanvasWidth: 54, CanvasHeight: 27,
			},
		},
		{
			name: "tiles smaller than eight pixels",
			width: 12, height: 4, size: 4,
			want: Geometry{
				Size: 4, Rows: 3, Cols: 1, Padding: 0, HalfPad: 0,
				CellWidth: 4, CellHeight: 4, CanvasWidth: 12, CanvasHeight: 4,
			},
		},
		{
			name: "empty sheet",
			width: 0, height: 0, size: 16,
			want: Geometry{
				Size: 16, Padding: 2, HalfPad: 1, CellWidth: 18, CellHeight: 18,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGeometry(tc.width, tc.height, tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g)
		})
	}
}

func TestNewGeometryErrors(t *testing.T) {
	testCases := []struct {
		name          string
		width, height int
		size          int
		want          error
	}{
		{"width not a multiple", 65, 64, 32, ErrInvalidGeometry},
		{"height not a multiple", 64, 65, 32, ErrInvalidGeometry},
		{"tile larger than sheet", 16, 16, 32, ErrInvalidGeometry},
		{"zero tile size", 64, 64, 0, ErrInvalidTileSize},
		{"negative tile size", 64, 64, -8, ErrInvalidTileSize},
		{"tile size checked first", 65, 64, 0, ErrInvalidTileSize},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGeometry(tc.width, tc.height, tc.size)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, Geometry{}, g)
		})
	}
}

func TestGeometryRects(t *testing.T) {
	g, err := NewGeometry(64, 64, 32)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(2, 2), g.Anchor(0, 0))
	assert.Equal(t, image.Pt(38, 2), g.Anchor(1, 0))
	assert.Equal(t, image.Pt(2, 38), g.Anchor(0, 1))

	assert.Equal(t, image.Rect(2, 2, 34, 34), g.Body(0, 0))
	assert.Equal(t, image.Rect(38, 38, 70, 70), g.Body(1, 1))
	assert.Equal(t, image.Rect(36, 0, 72, 36), g.Cell(1, 0))
	assert.Equal(t, image.Rect(36, 36, 72, 72), g.Extruded(1, 1))
	assert.Equal(t, image.Rect(32, 0, 64, 32), g.SourceRect(1, 0))
	assert.Equal(t, 4, g.Tiles())
}

func TestGeometryCellsAreDisjoint(t *testing.T) {
	for _, size := range []int{1, 4, 8, 12, 16, 24, 32, 40, 64} {
		g, err := NewGeometry(size*3, size*2, size)
		require.NoError(t, err)

		canvas := image.Rect(0, 0, g.CanvasWidth, g.CanvasHeight)
		var cells []image.Rectangle
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				cell := g.Cell(row, col)
				assert.True(t, g.Extruded(row, col).In(cell), "size %d tile (%d,%d) leaves its cell", size, row, col)
				assert.True(t, cell.In(canvas), "size %d cell (%d,%d) leaves the canvas", size, row, col)
				cells = append(cells, cell)
			}
		}
		for i := range cells {
			for j := i + 1; j < len(cells); j++ {
				assert.False(t, cells[i].Overlaps(cells[j]), "size %d cells %v and %v overlap", size, cells[i], cells[j])
			}
		}
	}
}
