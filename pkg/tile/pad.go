package tile

import (
	"fmt"
	"image"
	"image/color"
)

// Plot writes c at (x, y). Writes outside dst are dropped.
func Plot(dst Canvas, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(dst.Bounds()) {
		dst.SetNRGBA(x, y, c)
	}
}

// Copy plots the w x h block of src at (sx, sy) onto dst at (dx, dy)
func Copy(src Source, sx, sy, w, h int, dst Canvas, dx, dy int) {
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			Plot(dst, dx+i, dy+j, src.NRGBAAt(sx+i, sy+j))
		}
	}
}

// Extract returns a copy of the size x size tile at (row, col) of src.
// The copy is anchored at the origin and shares no pixels with src.
func Extract(src Source, row, col, size int) (*image.NRGBA, error) {
	sb := src.Bounds()
	r := image.Rect(row*size, col*size, (row+1)*size, (col+1)*size).Add(sb.Min)
	if size <= 0 || row < 0 || col < 0 || !r.In(sb) {
		return nil, fmt.Errorf("%w: %v not within %v", ErrOutOfBounds, r, sb)
	}

	t := image.NewNRGBA(image.Rect(0, 0, size, size))
	if m, ok := src.(*image.NRGBA); ok {
		for y := 0; y < size; y++ {
			i := m.PixOffset(r.Min.X, r.Min.Y+y)
			copy(t.Pix[y*t.Stride:y*t.Stride+size*4], m.Pix[i:i+size*4])
		}
		return t, nil
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t.SetNRGBA(x, y, src.NRGBAAt(r.Min.X+x, r.Min.Y+y))
		}
	}
	return t, nil
}

// Paint writes tile t onto dst with its body at `at`, then extrudes its
// edges halfPadX pixels left and right and halfPadY pixels up and down.
// The diagonal corner blocks take the tile's nearest corner pixel.
func Paint(dst Canvas, t Source, at image.Point, halfPadX, halfPadY int) {
	b := t.Bounds()
	if b.Empty() {
		return
	}
	iw, ih := b.Dx(), b.Dy()
	left, top := b.Min.X, b.Min.Y
	right, bottom := b.Max.X-1, b.Max.Y-1
	ax, ay := at.X, at.Y

	tl := t.NRGBAAt(left, top)
	bl := t.NRGBAAt(left, bottom)
	tr := t.NRGBAAt(right, top)
	br := t.NRGBAAt(right, bottom)
	for i := 1; i <= halfPadX; i++ {
		for j := 1; j <= halfPadY; j++ {
			Plot(dst, ax-i, ay-j, tl)
			Plot(dst, ax-i, ay+ih-1+j, bl)
			Plot(dst, ax+iw-1+i, ay-j, tr)
			Plot(dst, ax+iw-1+i, ay+ih-1+j, br)
		}
	}

	for i := 1; i <= halfPadY; i++ {
		Copy(t, left, top, iw, 1, dst, ax, ay-i)
		Copy(t, left, bottom, iw, 1, dst, ax, ay+ih-1+i)
	}
	for i := 1; i <= halfPadX; i++ {
		Copy(t, left, top, 1, ih, dst, ax-i, ay)
		Copy(t, right, top, 1, ih, dst, ax+iw-1+i, ay)
	}

	Copy(t, left, top, iw, ih, dst, ax, ay)
}
