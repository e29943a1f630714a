package rawpipe

// SuperPixelRGB collapses every 2x2 RGGB tile into one RGB24 pixel:
// (R, (G1+G2)/2, B), with 16-bit samples reduced to their high byte.
// Same-channel samples are merged, nothing is interpolated, so the result
// has half the width and height of the mosaic.
//
// RGGB layout (row-major, 0-indexed):
//
//	(even row, even col) = R
//	(even row, odd  col) = G1
//	(odd  row, even col) = G2
//	(odd  row, odd  col) = B
func SuperPixelRGB(pix []byte, width, height int, depth Depth) ([]byte, int, int, error) {
	if err := checkMosaic(pix, width, height, depth); err != nil {
		return nil, 0, 0, err
	}
	src := newPlane(pix, width, height, depth)
	outW, outH := width/2, height/2
	shift := uint(depth) - 8
	out := make([]byte, 3*outW*outH)

	forEachRow(outH, func(ty int) {
		for tx := 0; tx < outW; tx++ {
			r := src.tile(tx, ty, IndexR)
			g := (src.tile(tx, ty, IndexG1) + src.tile(tx, ty, IndexG2)) / 2
			b := src.tile(tx, ty, IndexB)
			o := out[3*(ty*outW+tx):]
			o[0] = uint8(r >> shift)
			o[1] = uint8(g >> shift)
			o[2] = uint8(b >> shift)
		}
	})
	return out, outW, outH, nil
}
