package rawpipe

import "fmt"

// Per-channel weights for a 2x2 tile window. Each matrix leans toward the
// tiles nearest its channel's position in the output tile; all share the
// divisor coeff2Sum.
var coeff2 = [4][2][2]uint32{
	IndexR:  {{9, 3}, {3, 1}},
	IndexG1: {{3, 9}, {1, 3}},
	IndexG2: {{3, 1}, {9, 3}},
	IndexB:  {{1, 3}, {3, 9}},
}

const coeff2Sum = 16

// Per-channel weights for a 4x4 tile window, outer products of
// [3 3 1 1] and [1 1 3 3]. All share the divisor coeff4Sum.
var coeff4 = [4][4][4]uint32{
	IndexR: {
		{9, 9, 3, 3},
		{9, 9, 3, 3},
		{3, 3, 1, 1},
		{3, 3, 1, 1},
	},
	IndexG1: {
		{3, 3, 9, 9},
		{3, 3, 9, 9},
		{1, 1, 3, 3},
		{1, 1, 3, 3},
	},
	IndexG2: {
		{3, 3, 1, 1},
		{3, 3, 1, 1},
		{9, 9, 3, 3},
		{9, 9, 3, 3},
	},
	IndexB: {
		{1, 1, 3, 3},
		{1, 1, 3, 3},
		{3, 3, 9, 9},
		{3, 3, 9, 9},
	},
}

const coeff4Sum = 64

// downscaleWeight returns the coefficient of tile (h, w) in the window for channel c.
func downscaleWeight(factor, c, h, w int) uint32 {
	if factor == 2 {
		return coeff2[c][h][w]
	}
	return coeff4[c][h][w]
}

// DownscaleBayer reduces an RGGB mosaic by factor 2 or 4. Every output tile
// is the per-channel weighted average of a factor x factor window of input
// tiles; division truncates. Input tiles that do not fill a whole window at
// the right or bottom edge are dropped.
func DownscaleBayer(pix []byte, width, height int, depth Depth, factor int) ([]byte, int, int, error) {
	if factor != 2 && factor != 4 {
		return nil, 0, 0, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}
	if err := checkMosaic(pix, width, height, depth); err != nil {
		return nil, 0, 0, err
	}

	tilesX := width / 2 / factor
	tilesY := height / 2 / factor
	outW, outH := 2*tilesX, 2*tilesY
	if tilesX == 0 || tilesY == 0 {
		return []byte{}, 0, 0, nil
	}

	sum := uint32(coeff2Sum)
	if factor == 4 {
		sum = coeff4Sum
	}
	src := newPlane(pix, width, height, depth)
	dst := newPlane(make([]byte, outW*outH*depth.Bytes()), outW, outH, depth)

	forEachRow(tilesY, func(j int) {
		for i := 0; i < tilesX; i++ {
			for c := 0; c < 4; c++ {
				var acc uint32
				for h := 0; h < factor; h++ {
					for w := 0; w < factor; w++ {
						acc += downscaleWeight(factor, c, h, w) * src.tile(i*factor+w, j*factor+h, c)
					}
				}
				dst.setTile(i, j, c, acc/sum)
			}
		}
	})
	return dst.pix, outW, outH, nil
}

// DownscaleBayerBy8 is DownscaleBayer by 4 followed by 2.
func DownscaleBayerBy8(pix []byte, width, height int, depth Depth) ([]byte, int, int, error) {
	quarter, w, h, err := DownscaleBayer(pix, width, height, depth, 4)
	if err != nil {
		return nil, 0, 0, err
	}
	if w == 0 || h == 0 {
		return quarter, w, h, nil
	}
	return DownscaleBayer(quarter, w, h, depth, 2)
}
