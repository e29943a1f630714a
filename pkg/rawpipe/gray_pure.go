//go:build !gocv

package rawpipe

import "encoding/binary"

// rgbToGray converts tightly packed RGB24/RGB48 pixels to L8 using BT.601
// weights in integer arithmetic. Pure Go backend.
func rgbToGray(src []byte, width, height int, depth Depth) ([]byte, error) {
	n := width * height
	out := make([]byte, n)
	pixelSize := 3 * depth.Bytes()
	forEachRow(height, func(y int) {
		for x := 0; x < width; x++ {
			i := y*width + x
			p := src[i*pixelSize:]
			var r, g, b uint32
			if depth == Depth16 {
				r = uint32(binary.NativeEndian.Uint16(p[0:]))
				g = uint32(binary.NativeEndian.Uint16(p[2:]))
				b = uint32(binary.NativeEndian.Uint16(p[4:]))
			} else {
				r, g, b = uint32(p[0]), uint32(p[1]), uint32(p[2])
			}
			lum := (299*r + 587*g + 114*b + 500) / 1000
			if depth == Depth16 {
				lum >>= 8
			}
			if lum > 255 {
				lum = 255
			}
			out[i] = uint8(lum)
		}
	})
	return out, nil
}
