package tile

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSheet returns a w x h image in which every pixel has a distinct color
func testSheet(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x*7 + y*13), 255})
		}
	}
	return m
}

// sourceOnly hides the concrete image type from Extract
type sourceOnly struct {
	Source
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func TestPlotClips(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	red := color.NRGBA{255, 0, 0, 255}

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {-100, 100}, {4, 4}} {
		assert.NotPanics(t, func() { Plot(dst, p.X, p.Y, red) })
	}
	assert.Equal(t, make([]uint8, len(dst.Pix)), dst.Pix)

	Plot(dst, 3, 3, red)
	assert.Equal(t, red, dst.NRGBAAt(3, 3))
}

func TestCopyClipsPartially(t *testing.T) {
	src := testSheet(4, 4)
	dst := image.NewNRGBA(image.Rect(0, 0, 3, 3))

	Copy(src, 0, 0, 4, 4, dst, 1, 1)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x == 0 || y == 0 {
				assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(x, y))
				continue
			}
			assert.Equal(t, src.NRGBAAt(x-1, y-1), dst.NRGBAAt(x, y))
		}
	}
}

func TestPaintExtrudesEdgesAndCorners(t *testing.T) {
	const size, halfPad = 4, 2
	tl := testSheet(size, size)
	dst := image.NewNRGBA(image.Rect(0, 0, size+2*halfPad+2, size+2*halfPad+2))
	at := image.Pt(halfPad+1, halfPad+1)

	Paint(dst, tl, at, halfPad, halfPad)

	painted := image.Rect(at.X, at.Y, at.X+size, at.Y+size).Inset(-halfPad)
	for y := 0; y < dst.Rect.Dy(); y++ {
		for x := 0; x < dst.Rect.Dx(); x++ {
			got := dst.NRGBAAt(x, y)
			if !image.Pt(x, y).In(painted) {
				assert.Equal(t, color.NRGBA{}, got, "pixel (%d,%d) outside the band", x, y)
				continue
			}
			sx := clamp(x-at.X, 0, size-1)
			sy := clamp(y-at.Y, 0, size-1)
			assert.Equal(t, tl.NRGBAAt(sx, sy), got, "pixel (%d,%d)", x, y)
		}
	}

	// Corner blocks are a single color
	for i := 1; i <= halfPad; i++ {
		for j := 1; j <= halfPad; j++ {
			assert.Equal(t, tl.NRGBAAt(0, 0), dst.NRGBAAt(at.X-i, at.Y-j))
			assert.Equal(t, tl.NRGBAAt(size-1, 0), dst.NRGBAAt(at.X+size-1+i, at.Y-j))
			assert.Equal(t, tl.NRGBAAt(0, size-1), dst.NRGBAAt(at.X-i, at.Y+size-1+j))
			assert.Equal(t, tl.NRGBAAt(size-1, size-1), dst.NRGBAAt(at.X+size-1+i, at.Y+size-1+j))
		}
	}
}

func TestPaintAsymmetricBand(t *testing.T) {
	const size = 3
	tl := testSheet(size, size)
	dst := image.NewNRGBA(image.Rect(0, 0, 9, 9))
	at := image.Pt(3, 2)

	Paint(dst, tl, at, 2, 1)

	painted := image.Rect(at.X-2, at.Y-1, at.X+size+2, at.Y+size+1)
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			if !image.Pt(x, y).In(painted) {
				assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
				continue
			}
			want := tl.NRGBAAt(clamp(x-at.X, 0, size-1), clamp(y-at.Y, 0, size-1))
			assert.Equal(t, want, dst.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestPaintWithoutBandCopiesBodyOnly(t *testing.T) {
	tl := testSheet(8, 8)
	dst := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	Paint(dst, tl, image.Pt(1, 1), 0, 0)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x >= 1 && x < 9 && y >= 1 && y < 9 {
				assert.Equal(t, tl.NRGBAAt(x-1, y-1), dst.NRGBAAt(x, y))
			} else {
				assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(x, y))
			}
		}
	}
}

func TestPaintClipsAtCanvasEdge(t *testing.T) {
	tl := testSheet(4, 4)
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	assert.NotPanics(t, func() { Paint(dst, tl, image.Pt(0, 0), 3, 3) })
	assert.Equal(t, tl.Pix, dst.Pix)
}

func TestPaintHonoursTileOrigin(t *testing.T) {
	sheet := testSheet(8, 8)
	sub := sheet.SubImage(image.Rect(4, 4, 8, 8)).(*image.NRGBA)
	copied, err := Extract(sheet, 1, 1, 4)
	require.NoError(t, err)

	a := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	b := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	Paint(a, sub, image.Pt(1, 1), 1, 1)
	Paint(b, copied, image.Pt(1, 1), 1, 1)

	assert.Equal(t, b.Pix, a.Pix)
}

func TestExtract(t *testing.T) {
	sheet := testSheet(64, 32)

	for _, src := range []Source{sheet, sourceOnly{sheet}} {
		tl, err := Extract(src, 1, 0, 32)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 32, 32), tl.Rect)
		for y := 0; y < 32; y++ {
			for x := 0; x < 32; x++ {
				require.Equal(t, sheet.NRGBAAt(32+x, y), tl.NRGBAAt(x, y))
			}
		}
	}
}

func TestExtractCopies(t *testing.T) {
	sheet := testSheet(16, 16)
	before := sheet.NRGBAAt(8, 8)

	tl, err := Extract(sheet, 1, 1, 8)
	require.NoError(t, err)
	tl.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 4})

	assert.Equal(t, before, sheet.NRGBAAt(8, 8))
}

func TestExtractFromOffsetSheet(t *testing.T) {
	sheet := testSheet(24, 24)
	sub := sheet.SubImage(image.Rect(8, 8, 24, 24))

	tl, err := Extract(sub.(*image.NRGBA), 1, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, sheet.NRGBAAt(16, 8), tl.NRGBAAt(0, 0))
	assert.Equal(t, sheet.NRGBAAt(23, 15), tl.NRGBAAt(7, 7))
}

func TestExtractOutOfBounds(t *testing.T) {
	sheet := testSheet(64, 64)

	testCases := []struct {
		name           string
		row, col, size int
	}{
		{"row past width", 2, 0, 32},
		{"col past height", 0, 2, 32},
		{"negative row", -1, 0, 32},
		{"tile larger than sheet", 0, 0, 65},
		{"zero size", 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tl, err := Extract(sheet, tc.row, tc.col, tc.size)
			assert.ErrorIs(t, err, ErrOutOfBounds)
			assert.Nil(t, tl)
		})
	}
}
