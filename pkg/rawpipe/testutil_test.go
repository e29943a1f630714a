package rawpipe

import "encoding/binary"

// newMosaic16 builds a tightly packed 16-bit mosaic from fn(x, y).
func newMosaic16(width, height int, fn func(x, y int) uint16) []byte {
	pix := make([]byte, 2*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			binary.NativeEndian.PutUint16(pix[2*(y*width+x):], fn(x, y))
		}
	}
	return pix
}

// newMosaic8 builds a tightly packed 8-bit mosaic from fn(x, y).
func newMosaic8(width, height int, fn func(x, y int) uint8) []byte {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = fn(x, y)
		}
	}
	return pix
}

func uniform16(width, height int, v uint16) []byte {
	return newMosaic16(width, height, func(x, y int) uint16 { return v })
}

// noise16 fills a mosaic with a deterministic pseudo-random pattern.
func noise16(width, height int, seed uint32) []byte {
	state := seed
	return newMosaic16(width, height, func(x, y int) uint16 {
		state = state*1664525 + 1013904223
		return uint16(state >> 16)
	})
}

func sample16(pix []byte, width, x, y int) uint16 {
	return binary.NativeEndian.Uint16(pix[2*(y*width+x):])
}

// onBorder reports whether sample (x, y) lies in the outer ring of tiles.
func onBorder(width, height, x, y int) bool {
	return x < 2 || y < 2 || x >= width-2 || y >= height-2
}
