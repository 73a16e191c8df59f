package tile

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"
)

// DecodeImage detects the image format and decodes data into an
// origin-anchored NRGBA image
func DecodeImage(data []byte) (*image.NRGBA, string, error) {
	return DecodeImageLimit(data, 0)
}

// DecodeImageLimit is DecodeImage for untrusted input. The header is
// checked first and images with more than maxPixels pixels are rejected
// with ErrImageTooLarge before any pixel memory is allocated. A maxPixels
// of zero or less disables the check.
func DecodeImageLimit(data []byte, maxPixels int64) (*image.NRGBA, string, error) {
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", &IOError{Op: "decode", Err: err}
		}
		if n := int64(cfg.Width) * int64(cfg.Height); n > maxPixels {
			return nil, "", &IOError{Op: "decode", Err: fmt.Errorf("%w: %dx%d exceeds %d pixels",
				ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)}
		}
	}
	img, format, err := decode(data)
	if err != nil {
		return nil, "", &IOError{Op: "decode", Err: err}
	}
	return img, format, nil
}

func decode(data []byte) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return ToNRGBA(img), format, nil
}

// ReadImage reads and decodes the image stored at filename
func ReadImage(filename string) (*image.NRGBA, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &IOError{Op: "read", Path: filename, Err: err}
	}
	img, _, err := decode(data)
	if err != nil {
		return nil, &IOError{Op: "decode", Path: filename, Err: err}
	}
	return img, nil
}

// ToNRGBA returns m as an NRGBA image whose bounds start at the origin.
// An NRGBA image already anchored at the origin is returned as is.
func ToNRGBA(m image.Image) *image.NRGBA {
	b := m.Bounds()
	if n, ok := m.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, m, b, xdraw.Src, nil)
	return dst
}

// Encode writes m to w in the given output format
func Encode(w io.Writer, m image.Image, format int) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, m)
	case FormatTIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}

// WriteImage encodes m into filename. Nothing is left at filename if
// encoding fails.
func WriteImage(filename string, m image.Image, format int) error {
	return writeFile(filename, func(w io.Writer) error {
		return Encode(w, m, format)
	})
}

// Manifest describes a written atlas so consumers can locate each tile body
type Manifest struct {
	Image    string         `yaml:"image"`
	TileSize int            `yaml:"tile_size"`
	Padding  int            `yaml:"padding"`
	Rows     int            `yaml:"rows"`
	Cols     int            `yaml:"cols"`
	Width    int            `yaml:"width"`
	Height   int            `yaml:"height"`
	Tiles    []ManifestTile `yaml:"tiles"`
}

// ManifestTile locates one tile body in the atlas
type ManifestTile struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
	X   int `yaml:"x"`
	Y   int `yaml:"y"`
	W   int `yaml:"w"`
	H   int `yaml:"h"`
}

// NewManifest lists every tile of g in row-major order
func NewManifest(imageName string, g Geometry) *Manifest {
	m := &Manifest{
		Image:    imageName,
		TileSize: g.Size,
		Padding:  g.Padding,
		Rows:     g.Rows,
		Cols:     g.Cols,
		Width:    g.CanvasWidth,
		Height:   g.CanvasHeight,
		Tiles:    make([]ManifestTile, 0, g.Tiles()),
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			b := g.Body(row, col)
			m.Tiles = append(m.Tiles, ManifestTile{
				Row: row,
				Col: col,
				X:   b.Min.X,
				Y:   b.Min.Y,
				W:   b.Dx(),
				H:   b.Dy(),
			})
		}
	}
	return m
}

// WriteManifest writes m to filename as YAML
func WriteManifest(filename string, m *Manifest) error {
	return writeFile(filename, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	})
}

// writeFile writes to a temporary file next to filename and renames it into
// place once write and close both succeed
func writeFile(filename string, write func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	f, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return &IOError{Op: "create", Path: filename, Err: err}
	}
	tmp := f.Name()

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Op: "chmod", Path: filename, Err: err}
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Op: "encode", Path: filename, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "write", Path: filename, Err: err}
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "rename", Path: filename, Err: err}
	}
	return nil
}
