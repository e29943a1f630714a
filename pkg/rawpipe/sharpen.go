package rawpipe

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// AdaptiveMinBytes is the smallest input AdaptiveSharpenBayer16 processes;
// anything shorter comes back unchanged.
const AdaptiveMinBytes = 100_000

// adaptiveBlockTiles is the edge of the square block of tiles that shares
// one kernel in AdaptiveSharpenBayer16.
const adaptiveBlockTiles = 8

const sharpenLevels = 101

// sharpenTable holds one 3x3 kernel per strength step of 0.01. Each is the
// base kernel (center 1, ring -1/8) scaled by the strength, with 1 added to
// the center, so every kernel sums to 1 and level 0 is the identity.
var sharpenTable = sync.OnceValue(func() *[sharpenLevels][9]float32 {
	var t [sharpenLevels][9]float32
	for k := range t {
		s := float32(k) / 100
		for i := range t[k] {
			t[k][i] = -0.125 * s
		}
		t[k][4] = 1*s + 1
	}
	return &t
})

// sharpenLevel maps a strength to its table index, clamped to [0, 100].
func sharpenLevel(strength float64) int {
	k := int(math.Round(strength * 100))
	if k < 0 {
		return 0
	}
	if k > sharpenLevels-1 {
		return sharpenLevels - 1
	}
	return k
}

// SharpenKernel returns the row-major 3x3 kernel used for strength.
func SharpenKernel(strength float64) [9]float32 {
	return sharpenTable()[sharpenLevel(strength)]
}

// clampSample saturates a convolution result to the sample range before
// narrowing. The fraction is truncated.
func clampSample(v float32, maxValue uint32) uint32 {
	if v < 0 {
		return 0
	}
	if v > float32(maxValue) {
		return maxValue
	}
	return uint32(v)
}

// sharpenTile convolves all four channels of interior tile (tx, ty) with k.
// The 3x3 window is in tile units: each channel only sees its own samples.
func sharpenTile(src, dst plane, tx, ty int, k *[9]float32) {
	maxValue := src.depth.MaxValue()
	for c := 0; c < 4; c++ {
		var acc float32
		for dy := 0; dy < 3; dy++ {
			for dx := 0; dx < 3; dx++ {
				acc += k[dy*3+dx] * float32(src.tile(tx+dx-1, ty+dy-1, c))
			}
		}
		dst.setTile(tx, ty, c, clampSample(acc, maxValue))
	}
}

// SharpenBayer applies a uniform unsharp-mask kernel to an RGGB mosaic.
// Tiles on the outer ring have no full 3x3 neighborhood and are copied
// unchanged.
func SharpenBayer(pix []byte, width, height int, depth Depth, strength float64) ([]byte, error) {
	if err := checkMosaic(pix, width, height, depth); err != nil {
		return nil, err
	}
	if math.IsNaN(strength) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStrength, strength)
	}
	src := newPlane(pix, width, height, depth)
	dst := src.clone()
	k := SharpenKernel(strength)

	tilesX, tilesY := width/2, height/2
	if tilesX < 3 || tilesY < 3 {
		return dst.pix, nil
	}
	forEachRow(tilesY-2, func(row int) {
		ty := row + 1
		for tx := 1; tx < tilesX-1; tx++ {
			sharpenTile(src, dst, tx, ty, &k)
		}
	})
	return dst.pix, nil
}

// SharpenBayer16 is SharpenBayer for 16-bit mosaics.
func SharpenBayer16(pix []byte, width, height int, strength float64) ([]byte, error) {
	return SharpenBayer(pix, width, height, Depth16, strength)
}

// AdaptiveSharpenBayer16 sharpens a 16-bit mosaic with a strength that grows
// with distance from the image center. The strength is chosen once per block
// of 8x8 tiles from the block's offset, using RadialCurve. Inputs shorter
// than AdaptiveMinBytes are returned as an unmodified copy.
func AdaptiveSharpenBayer16(pix []byte, width, height int) ([]byte, error) {
	if err := checkMosaic(pix, width, height, Depth16); err != nil {
		return nil, err
	}
	src := newPlane(pix, width, height, Depth16)
	dst := src.clone()
	if len(pix) < AdaptiveMinBytes {
		slog.Debug("adaptive sharpen skipped, input too small", "bytes", len(pix), "min", AdaptiveMinBytes)
		return dst.pix, nil
	}

	table := sharpenTable()
	tilesX, tilesY := width/2, height/2
	blocksX, blocksY := adaptiveBlocks(width, height)

	forEachRow(blocksY, func(by int) {
		ty0 := by * adaptiveBlockTiles
		ty1 := min(ty0+adaptiveBlockTiles, tilesY-1)
		for bx := 0; bx < blocksX; bx++ {
			tx0 := bx * adaptiveBlockTiles
			tx1 := min(tx0+adaptiveBlockTiles, tilesX-1)
			k := &table[sharpenLevel(AdaptiveStrength(width, height, bx, by))]

			for ty := max(ty0, 1); ty < ty1; ty++ {
				for tx := max(tx0, 1); tx < tx1; tx++ {
					sharpenTile(src, dst, tx, ty, k)
				}
			}
		}
	})
	return dst.pix, nil
}

// adaptiveBlocks returns the number of adaptive blocks across and down.
func adaptiveBlocks(width, height int) (int, int) {
	tilesX, tilesY := width/2, height/2
	return (tilesX + adaptiveBlockTiles - 1) / adaptiveBlockTiles,
		(tilesY + adaptiveBlockTiles - 1) / adaptiveBlockTiles
}

// AdaptiveStrength returns the sharpening strength AdaptiveSharpenBayer16
// uses for block (bx, by) of a width x height mosaic. The distance is taken
// from the block's top-left sample to the image center and normalized by the
// center-to-corner distance.
func AdaptiveStrength(width, height, bx, by int) float64 {
	cx, cy := float64(width)/2, float64(height)/2
	x0 := float64(2 * bx * adaptiveBlockTiles)
	y0 := float64(2 * by * adaptiveBlockTiles)
	d := math.Hypot(x0-cx, y0-cy) / math.Hypot(cx, cy)
	return RadialCurve()(min(d, 1))
}
