//go:build gocv

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	rp "rawpipe/pkg/rawpipe"
)

func loadNonFitsImage(path string) (*rp.RawImage, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return nil, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	gray := src
	if src.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		code := gocv.ColorBGRToGray
		if src.Channels() == 4 {
			code = gocv.ColorBGRAToGray
		}
		gocv.CvtColor(src, &gray, code)
	}

	img := &rp.RawImage{Width: gray.Cols(), Height: gray.Rows(), Depth: rp.Depth8}
	switch gray.Type() {
	case gocv.MatTypeCV8UC1:
	case gocv.MatTypeCV16UC1:
		img.Depth = rp.Depth16
	default:
		return nil, fmt.Errorf("unsupported image type %v: %s", gray.Type(), path)
	}
	// Mat data is host order, matching the packed sample layout.
	img.Pix = gray.ToBytes()
	return img, nil
}

func loadRGBImage(path string) ([]byte, int, int, rp.Depth, error) {
	src := gocv.IMRead(path, gocv.IMReadAnyDepth|gocv.IMReadColor)
	if src.Empty() {
		return nil, 0, 0, 0, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(src, &rgb, gocv.ColorBGRToRGB)

	depth := rp.Depth8
	if rgb.Type() == gocv.MatTypeCV16UC3 {
		depth = rp.Depth16
	}
	return rgb.ToBytes(), rgb.Cols(), rgb.Rows(), depth, nil
}
