package rawpipe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
)

// captionHeight is the strip reserved below previews for text.
const captionHeight = 40

// RenderPreview draws an RGB24 image with caption lines underneath.
func RenderPreview(rgb []byte, width, height int, caption ...string) (*image.RGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := checkLength(rgb, 3*width*height); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height+captionHeight))
	fillRect(img, img.Bounds(), color.RGBA{0, 0, 0, 255})
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := rgb[3*(y*width+x):]
			img.SetRGBA(x, y, color.RGBA{p[0], p[1], p[2], 255})
		}
	}
	drawCaption(img, height, caption)
	return img, nil
}

// RenderStrengthMap visualizes the per-block strength AdaptiveSharpenBayer16
// picks for a width x height mosaic, one cell per block, at tile resolution.
func RenderStrengthMap(width, height int) (*image.RGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	tilesX, tilesY := width/2, height/2
	blocksX, blocksY := adaptiveBlocks(width, height)

	img := image.NewRGBA(image.Rect(0, 0, tilesX, tilesY+captionHeight))
	fillRect(img, img.Bounds(), color.RGBA{0, 0, 0, 255})

	lo, hi := 1.0, 0.0
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			s := AdaptiveStrength(width, height, bx, by)
			lo, hi = min(lo, s), max(hi, s)
			cell := image.Rect(bx*adaptiveBlockTiles, by*adaptiveBlockTiles,
				(bx+1)*adaptiveBlockTiles, (by+1)*adaptiveBlockTiles).Intersect(image.Rect(0, 0, tilesX, tilesY))
			fillRect(img, cell, strengthColor(s))
		}
	}

	// Iso-distance rings at a quarter, half and three quarters of the
	// center-to-corner distance.
	ringColor := color.RGBA{255, 255, 255, 200}
	cx, cy := tilesX/2, tilesY/2
	corner := math.Hypot(float64(cx), float64(cy))
	for _, f := range []float64{0.25, 0.5, 0.75} {
		drawCircle(img, cx, cy, int(f*corner), ringColor)
	}

	drawCaption(img, tilesY, []string{
		fmt.Sprintf("%dx%d blocks of %d tiles", blocksX, blocksY, adaptiveBlockTiles),
		fmt.Sprintf("strength %.2f..%.2f", lo, hi),
	})
	return img, nil
}

// strengthColor maps a strength in [0, 1] from green through yellow to red.
func strengthColor(s float64) color.RGBA {
	var r, g, b uint8
	switch {
	case s <= 0.4:
		t := s / 0.4
		g = uint8(60 + t*40)
		r = uint8(t * 30)
		b = 20
	case s <= 0.7:
		t := (s - 0.4) / 0.3
		r = uint8(30 + t*170)
		g = uint8(100 - t*20)
		b = 20
	default:
		t := min((s-0.7)/0.3, 1.0)
		r = uint8(200 + t*55)
		g = uint8(80 - t*60)
		b = uint8(20 - t*10)
	}
	return color.RGBA{r, g, b, 255}
}

// EncodeJPEG encodes img as a quality 90 JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJPEG writes img to path as a JPEG.
func WriteJPEG(img image.Image, path string) error {
	data, err := EncodeJPEG(img)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}

// EncodeMosaicTIFF encodes a raw mosaic as a single-channel Gray or Gray16
// TIFF, one sample per pixel.
func EncodeMosaicTIFF(pix []byte, width, height int, depth Depth) ([]byte, error) {
	if err := checkPlane(pix, width, height, depth); err != nil {
		return nil, err
	}
	var img image.Image
	if depth == Depth16 {
		g := image.NewGray16(image.Rect(0, 0, width, height))
		// image.Gray16 stores samples big-endian.
		for i := 0; i < width*height; i++ {
			binary.BigEndian.PutUint16(g.Pix[2*i:], binary.NativeEndian.Uint16(pix[2*i:]))
		}
		img = g
	} else {
		g := image.NewGray(image.Rect(0, 0, width, height))
		copy(g.Pix, pix[:width*height])
		img = g
	}

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, fmt.Errorf("encode tiff: %w", err)
	}
	return buf.Bytes(), nil
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawCaption writes one line per entry into the strip starting at row top.
func drawCaption(img *image.RGBA, top int, lines []string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{220, 220, 220, 255}),
		Face: basicfont.Face7x13,
	}
	for i, s := range lines {
		d.Dot = fixed.P(4, top+15+i*16)
		d.DrawString(s)
	}
}

// drawCircle outlines a circle of the given radius around (cx, cy), one
// octant at a time mirrored eight ways. Points outside img are dropped.
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	plot := func(dx, dy int) {
		for _, p := range [8]image.Point{
			{dx, dy}, {dy, dx}, {-dy, dx}, {-dx, dy},
			{-dx, -dy}, {-dy, -dx}, {dy, -dx}, {dx, -dy},
		} {
			if q := image.Pt(cx+p.X, cy+p.Y); q.In(img.Rect) {
				img.SetRGBA(q.X, q.Y, c)
			}
		}
	}
	dx, dy := radius, 0
	decision := 1 - radius
	for dx >= dy {
		plot(dx, dy)
		dy++
		if decision < 0 {
			decision += 2*dy + 1
		} else {
			dx--
			decision += 2*(dy-dx) + 1
		}
	}
}
