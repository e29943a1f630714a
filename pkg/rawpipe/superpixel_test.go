package rawpipe

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSuperPixelRGB(t *testing.T) {
	t.Run("16-bit", func(t *testing.T) {
		tile := map[int]uint16{IndexR: 0x1234, IndexG1: 0x2000, IndexG2: 0x4000, IndexB: 0xFF00}
		pix := newMosaic16(4, 2, func(x, y int) uint16 {
			if x >= 2 {
				return 0
			}
			return tile[ChannelAt(x, y)]
		})
		rgb, w, h, err := SuperPixelRGB(pix, 4, 2, Depth16)
		if err != nil {
			t.Fatal(err)
		}
		if w != 2 || h != 1 {
			t.Fatalf("SuperPixelRGB() size = %dx%d, want 2x1", w, h)
		}
		want := []byte{0x12, 0x30, 0xFF, 0, 0, 0}
		if diff := cmp.Diff(want, rgb); diff != "" {
			t.Errorf("SuperPixelRGB() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("8-bit", func(t *testing.T) {
		pix := []byte{
			10, 20, 30, 40,
			50, 60, 70, 80,
		}
		rgb, w, h, err := SuperPixelRGB(pix, 4, 2, Depth8)
		if err != nil {
			t.Fatal(err)
		}
		if w != 2 || h != 1 {
			t.Fatalf("SuperPixelRGB() size = %dx%d, want 2x1", w, h)
		}
		want := []byte{10, 35, 60, 30, 55, 80}
		if diff := cmp.Diff(want, rgb); diff != "" {
			t.Errorf("SuperPixelRGB() mismatch (-want +got):\n%s", diff)
		}
	})

	if _, _, _, err := SuperPixelRGB(make([]byte, 9), 3, 3, Depth8); !errors.Is(err, ErrOddDimensions) {
		t.Errorf("SuperPixelRGB(3x3) error = %v, want %v", err, ErrOddDimensions)
	}
}

func TestChannelAtAndTileOrigin(t *testing.T) {
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			o := TileOrigin(x, y)
			if o.X%2 != 0 || o.Y%2 != 0 || x-o.X > 1 || y-o.Y > 1 || x < o.X || y < o.Y {
				t.Fatalf("TileOrigin(%d, %d) = %v, want the even corner of its tile", x, y, o)
			}
			c := ChannelAt(x, y)
			if off := tileOffsets[c]; o.Add(off) != image.Pt(x, y) {
				t.Errorf("TileOrigin(%d, %d) + offset of channel %d = %v, want (%d, %d)", x, y, c, o.Add(off), x, y)
			}
		}
	}
	if got, want := TileOrigin(5, 2), image.Pt(4, 2); got != want {
		t.Errorf("TileOrigin(5, 2) = %v, want %v", got, want)
	}
}
