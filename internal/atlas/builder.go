// Package atlas turns a tile sheet into a padded atlas whose tiles are
// surrounded by copies of their own edge pixels.
package atlas

import (
	"context"
	"image"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/kiesman99/tilepad/pkg/tile"
)

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger used for build diagnostics. A nil logger
// disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithWorkers paints up to n grid rows concurrently. Values below 2 paint
// sequentially.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// Builder builds padded atlases
type Builder struct {
	logger  *slog.Logger
	workers int
}

// Result contains the built atlas and the layout used to build it
type Result struct {
	Canvas   *image.NRGBA
	Geometry tile.Geometry
}

// New creates a new builder instance
func New(opts ...Option) *Builder {
	b := &Builder{
		logger:  slog.New(slog.DiscardHandler),
		workers: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build pads every size x size tile of src into a freshly allocated canvas.
// It fails before allocating anything if size is not positive or does not
// divide both dimensions of src. The canvas is only returned once every
// cell has been painted.
func (b *Builder) Build(ctx context.Context, src image.Image, size int) (*Result, error) {
	bounds := src.Bounds()
	g, err := tile.NewGeometry(bounds.Dx(), bounds.Dy(), size)
	if err != nil {
		return nil, err
	}

	b.logger.Info("building atlas",
		"source_width", bounds.Dx(), "source_height", bounds.Dy(),
		"tile_size", g.Size, "rows", g.Rows, "cols", g.Cols,
		"padding", g.Padding, "width", g.CanvasWidth, "height", g.CanvasHeight)

	sheet := tile.ToNRGBA(src)
	canvas := image.NewNRGBA(image.Rect(0, 0, g.CanvasWidth, g.CanvasHeight))

	if b.workers > 1 && g.Rows > 1 {
		err = b.paintParallel(ctx, canvas, sheet, g)
	} else {
		for row := 0; row < g.Rows && err == nil; row++ {
			err = b.paintRow(ctx, canvas, sheet, g, row)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Result{Canvas: canvas, Geometry: g}, nil
}

// paintParallel hands each grid row to the pool. Rows write to disjoint
// cells of canvas so no locking is needed.
func (b *Builder) paintParallel(ctx context.Context, canvas *image.NRGBA, sheet *image.NRGBA, g tile.Geometry) error {
	p := pool.New().WithMaxGoroutines(b.workers).WithErrors().WithFirstError()
	for row := 0; row < g.Rows; row++ {
		p.Go(func() error {
			return b.paintRow(ctx, canvas, sheet, g, row)
		})
	}
	return p.Wait()
}

func (b *Builder) paintRow(ctx context.Context, canvas *image.NRGBA, sheet *image.NRGBA, g tile.Geometry, row int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for col := 0; col < g.Cols; col++ {
		t, err := tile.Extract(sheet, row, col, g.Size)
		if err != nil {
			return err
		}
		at := g.Anchor(row, col)
		b.logger.Debug("painting tile", "row", row, "col", col, "x", at.X, "y", at.Y)
		tile.Paint(canvas, t, at, g.HalfPad, g.HalfPad)
	}
	return nil
}
