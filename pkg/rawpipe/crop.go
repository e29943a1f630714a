package rawpipe

import (
	"fmt"
	"image"
)

func fullRect(width, height int) image.Rectangle {
	return image.Rect(0, 0, width, height)
}

// Crop extracts r from a tightly packed buffer of width x height pixels of
// pixelSize bytes each. r is intersected with the image bounds first; a
// rectangle entirely outside yields an empty result with zero dimensions.
// The returned buffer is tightly packed.
func Crop(pix []byte, width, height, pixelSize int, r image.Rectangle) ([]byte, int, int, error) {
	return CropStride(pix, width, height, width*pixelSize, pixelSize, r)
}

// CropStride is Crop for buffers whose rows are stride bytes apart.
// Padding bytes past width*pixelSize in each row are never copied.
func CropStride(pix []byte, width, height, stride, pixelSize int, r image.Rectangle) ([]byte, int, int, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, 0, 0, err
	}
	if pixelSize <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedPixelSize, pixelSize)
	}
	if stride < width*pixelSize {
		return nil, 0, 0, fmt.Errorf("%w: stride %d < row of %d bytes", ErrInvalidDimensions, stride, width*pixelSize)
	}
	// The last row only needs its pixel bytes, not its padding.
	if err := checkLength(pix, stride*(height-1)+width*pixelSize); err != nil {
		return nil, 0, 0, err
	}

	r = r.Canon().Intersect(fullRect(width, height))
	if r.Empty() {
		return []byte{}, 0, 0, nil
	}

	outW, outH := r.Dx(), r.Dy()
	rowBytes := outW * pixelSize
	out := make([]byte, rowBytes*outH)
	forEachRow(outH, func(y int) {
		src := (r.Min.Y+y)*stride + r.Min.X*pixelSize
		copy(out[y*rowBytes:(y+1)*rowBytes], pix[src:src+rowBytes])
	})
	return out, outW, outH, nil
}

// CropToGray crops an RGB24 (Depth8) or RGB48 (Depth16) buffer and converts
// the region to 8-bit luminance.
func CropToGray(pix []byte, width, height int, depth Depth, r image.Rectangle) ([]byte, int, int, error) {
	if err := depth.validate(); err != nil {
		return nil, 0, 0, err
	}
	region, w, h, err := Crop(pix, width, height, 3*depth.Bytes(), r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("crop: %w", err)
	}
	if w == 0 || h == 0 {
		return region, w, h, nil
	}
	gray, err := rgbToGray(region, w, h, depth)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("gray conversion: %w", err)
	}
	return gray, w, h, nil
}
