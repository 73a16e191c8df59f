package tile

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Output format constants
const (
	FormatPNG = iota
	FormatTIFF
)

// DefaultSize is the tile size used when none is given
const DefaultSize = 32

var (
	ErrInvalidTileSize = errors.New("tile: tile size must be positive")
	ErrInvalidGeometry = errors.New("tile: image size is not a multiple of the tile size")
	ErrOutOfBounds     = errors.New("tile: rectangle outside source bounds")
	ErrUnknownFormat   = errors.New("tile: unknown output format")
	ErrImageTooLarge   = errors.New("tile: image has too many pixels")
)

// IOError reports a failure to read or write an image or manifest
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Source is a readable pixel buffer. *image.NRGBA satisfies it.
type Source interface {
	Bounds() image.Rectangle
	NRGBAAt(x, y int) color.NRGBA
}

// Canvas is a pixel buffer that can also be written. *image.NRGBA satisfies it.
type Canvas interface {
	Source
	SetNRGBA(x, y int, c color.NRGBA)
}

// Options contains all configuration for a single atlas run
type Options struct {
	Input        string
	Output       string
	Manifest     string
	TileSize     int
	Format       int
	Workers      int
	LegacyOutput bool
}

// ParseFormat maps a format name to one of the Format constants
func ParseFormat(name string) (int, error) {
	switch strings.ToLower(name) {
	case "png", "":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// FormatName returns the short name of an output format
func FormatName(format int) string {
	if format == FormatTIFF {
		return "tiff"
	}
	return "png"
}

// ContentType returns the MIME type of an output format
func ContentType(format int) string {
	if format == FormatTIFF {
		return "image/tiff"
	}
	return "image/png"
}
