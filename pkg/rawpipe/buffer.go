package rawpipe

import "encoding/binary"

// RowStrideBytes returns the DWORD-aligned row size in bytes for a row of
// width pixels at the given bits per pixel.
func RowStrideBytes(bitsPerPixel, width int) int {
	return ((bitsPerPixel*width + 31) / 32) * 4
}

// plane is a tightly packed single-channel mosaic viewed as samples.
// 16-bit samples keep the native byte order of the host.
type plane struct {
	pix    []byte
	width  int
	height int
	depth  Depth
}

func newPlane(pix []byte, width, height int, depth Depth) plane {
	return plane{pix: pix, width: width, height: height, depth: depth}
}

func (p plane) at(x, y int) uint32 {
	i := y*p.width + x
	if p.depth == Depth16 {
		return uint32(binary.NativeEndian.Uint16(p.pix[2*i:]))
	}
	return uint32(p.pix[i])
}

func (p plane) set(x, y int, v uint32) {
	i := y*p.width + x
	if p.depth == Depth16 {
		binary.NativeEndian.PutUint16(p.pix[2*i:], uint16(v))
		return
	}
	p.pix[i] = uint8(v)
}

// tile returns the sample of channel c inside tile (tx, ty).
func (p plane) tile(tx, ty, c int) uint32 {
	o := tileOffsets[c]
	return p.at(2*tx+o.X, 2*ty+o.Y)
}

func (p plane) setTile(tx, ty, c int, v uint32) {
	o := tileOffsets[c]
	p.set(2*tx+o.X, 2*ty+o.Y, v)
}

// clone returns a tightly packed copy of the image bytes, dropping anything
// past width*height samples.
func (p plane) clone() plane {
	n := p.width * p.height * p.depth.Bytes()
	out := make([]byte, n)
	copy(out, p.pix[:n])
	return plane{pix: out, width: p.width, height: p.height, depth: p.depth}
}

// Repack removes row padding from a strided buffer and returns a tightly
// packed copy.
func Repack(pix []byte, width, height, stride, pixelSize int) ([]byte, error) {
	out, _, _, err := CropStride(pix, width, height, stride, pixelSize, fullRect(width, height))
	return out, err
}
