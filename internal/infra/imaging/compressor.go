// Package imaging shrinks uploaded images before they reach object storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder
	"image/jpeg"
	_ "image/png" // PNG decoder
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Options bound the output of Compress.
type Options struct {
	MaxWidth       int
	MaxHeight      int
	MaxBytes       int
	MaxPixels      int // declared source width*height, checked before decoding
	InitialQuality int
	MinQuality     int
	QualityStep    int
}

// DefaultOptions fit uploads within 1280x1280 and 0.8 MB.
func DefaultOptions() Options {
	return Options{
		MaxWidth:       1280,
		MaxHeight:      1280,
		MaxBytes:       800 * 1024,
		MaxPixels:      40_000_000,
		InitialQuality: 85,
		MinQuality:     40,
		QualityStep:    10,
	}
}

// ErrUnsupportedImage is returned for data no registered decoder understands.
var ErrUnsupportedImage = errors.New("unsupported image format")

// ErrImageTooLarge is returned when the declared dimensions exceed MaxPixels.
var ErrImageTooLarge = errors.New("image dimensions too large")

// Result is a compressed JPEG.
type Result struct {
	Data    []byte
	Width   int
	Height  int
	Quality int
}

// ContentType of every Result.
const ContentType = "image/jpeg"

// Compressor re-encodes images as JPEG.
type Compressor struct {
	opts Options
}

// NewCompressor returns a Compressor with opts.
func NewCompressor(opts Options) *Compressor {
	return &Compressor{opts: opts}
}

// Compress decodes r, applies the EXIF orientation, fits the image within the
// configured box and lowers quality until the size budget is met or the floor
// is reached. At the floor the result is returned even if still too large.
func (c *Compressor) Compress(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if c.opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(c.opts.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > c.opts.MaxWidth || b.Dy() > c.opts.MaxHeight {
		img = imaging.Fit(img, c.opts.MaxWidth, c.opts.MaxHeight, imaging.Lanczos)
	}

	step := c.opts.QualityStep
	if step <= 0 {
		step = 10
	}

	var buf bytes.Buffer
	quality := c.opts.InitialQuality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= c.opts.MaxBytes || quality <= c.opts.MinQuality {
			break
		}
		quality -= step
		if quality < c.opts.MinQuality {
			quality = c.opts.MinQuality
		}
	}

	out := img.Bounds()
	return &Result{
		Data:    append([]byte(nil), buf.Bytes()...),
		Width:   out.Dx(),
		Height:  out.Dy(),
		Quality: quality,
	}, nil
}

// readExifOrientation returns 1 when the data has no usable orientation tag.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// applyOrientation undoes the camera rotation recorded in EXIF.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
