package rawpipe

import (
	"errors"
	"fmt"
	"image"
)

// Precondition errors. Every public operation validates its arguments before
// touching the buffer and wraps one of these with the offending values.
var (
	ErrInvalidDimensions    = errors.New("invalid image dimensions")
	ErrOddDimensions        = errors.New("mosaic dimensions must be even")
	ErrShortBuffer          = errors.New("buffer shorter than image")
	ErrUnsupportedDepth     = errors.New("unsupported sample depth")
	ErrUnsupportedPixelSize = errors.New("unsupported pixel size")
	ErrInvalidFactor        = errors.New("invalid downscale factor")
	ErrInvalidKernel        = errors.New("invalid kernel size")
	ErrKernelTooLarge       = errors.New("kernel size exceeds capacity")
	ErrInvalidSigma         = errors.New("sigma must be positive")
	ErrInvalidStrength      = errors.New("invalid sharpen strength")
	ErrInvalidCurve         = errors.New("invalid curve control points")
)

// Depth is the bit width of one mosaic sample.
type Depth int

const (
	Depth8  Depth = 8
	Depth16 Depth = 16
)

// Bytes returns the storage size of one sample.
func (d Depth) Bytes() int {
	if d == Depth16 {
		return 2
	}
	return 1
}

// MaxValue returns the largest representable sample.
func (d Depth) MaxValue() uint32 {
	if d == Depth16 {
		return 0xFFFF
	}
	return 0xFF
}

func (d Depth) String() string {
	return fmt.Sprintf("%d-bit", int(d))
}

func (d Depth) validate() error {
	if d != Depth8 && d != Depth16 {
		return fmt.Errorf("%w: %d", ErrUnsupportedDepth, int(d))
	}
	return nil
}

// Channel slots inside one 2x2 RGGB tile.
const (
	IndexR  = 0
	IndexG1 = 1
	IndexG2 = 2
	IndexB  = 3
)

// tileOffsets maps a channel slot to its (x, y) position inside a tile.
var tileOffsets = [4]image.Point{
	IndexR:  {0, 0},
	IndexG1: {1, 0},
	IndexG2: {0, 1},
	IndexB:  {1, 1},
}

// ChannelAt reports which channel slot the mosaic sample at (x, y) belongs to.
// Only the parity of the coordinates matters.
func ChannelAt(x, y int) int {
	switch {
	case x%2 == 0 && y%2 == 0:
		return IndexR
	case y%2 == 0:
		return IndexG1
	case x%2 == 0:
		return IndexG2
	default:
		return IndexB
	}
}

// TileOrigin returns the top-left sample of the tile containing (x, y).
func TileOrigin(x, y int) image.Point {
	return image.Pt(x-x%2, y-y%2)
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

// checkPlane validates a single-channel buffer of any dimensions.
func checkPlane(pix []byte, width, height int, depth Depth) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}
	if err := depth.validate(); err != nil {
		return err
	}
	return checkLength(pix, width*height*depth.Bytes())
}

// checkMosaic additionally requires whole 2x2 tiles.
func checkMosaic(pix []byte, width, height int, depth Depth) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}
	if width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrOddDimensions, width, height)
	}
	return checkPlane(pix, width, height, depth)
}

func checkLength(pix []byte, need int) error {
	if len(pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pix), need)
	}
	return nil
}
