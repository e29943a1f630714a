//go:build gocv

package rawpipe

import (
	"fmt"

	"gocv.io/x/gocv"
)

// rgbToGray converts tightly packed RGB24/RGB48 pixels to L8 with OpenCV.
func rgbToGray(src []byte, width, height int, depth Depth) ([]byte, error) {
	matType := gocv.MatTypeCV8UC3
	if depth == Depth16 {
		matType = gocv.MatTypeCV16UC3
	}
	rgb, err := gocv.NewMatFromBytes(height, width, matType, src)
	if err != nil {
		return nil, fmt.Errorf("wrap rgb: %w", err)
	}
	defer rgb.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(rgb, &gray, gocv.ColorRGBToGray)

	if depth == Depth16 {
		gray8 := gocv.NewMat()
		defer gray8.Close()
		gray.ConvertToWithParams(&gray8, gocv.MatTypeCV8U, 1.0/256, 0)
		return gray8.ToBytes(), nil
	}
	return gray.ToBytes(), nil
}
