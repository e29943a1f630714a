//go:build !gocv

package main

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"

	rp "rawpipe/pkg/rawpipe"
)

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func loadNonFitsImage(path string) (*rp.RawImage, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch g := img.(type) {
	case *image.Gray:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], g.Pix[y*g.Stride:])
		}
		return &rp.RawImage{Pix: pix, Width: w, Height: h, Depth: rp.Depth8}, nil
	case *image.Gray16:
		pix := make([]byte, 2*w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := binary.BigEndian.Uint16(g.Pix[y*g.Stride+2*x:])
				binary.NativeEndian.PutUint16(pix[2*(y*w+x):], v)
			}
		}
		return &rp.RawImage{Pix: pix, Width: w, Height: h, Depth: rp.Depth16}, nil
	}

	// Color sources are reduced to 16-bit luminance.
	pix := make([]byte, 2*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray := uint16((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
			binary.NativeEndian.PutUint16(pix[2*(y*w+x):], gray)
		}
	}
	return &rp.RawImage{Pix: pix, Width: w, Height: h, Depth: rp.Depth16}, nil
}

func loadRGBImage(path string) ([]byte, int, int, rp.Depth, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgb := make([]byte, 3*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			o := rgb[3*(y*w+x):]
			o[0], o[1], o[2] = uint8(r>>8), uint8(g>>8), uint8(b>>8)
		}
	}
	return rgb, w, h, rp.Depth8, nil
}
