package rawpipe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxGaussianKernelSize is the widest kernel BlurGaussian can hold.
const MaxGaussianKernelSize = 11

// GaussianKernel returns the (2*radius+1)^2 row-major 2D Gaussian kernel for
// sigma, normalized to sum to 1.
func GaussianKernel(sigma float64, radius int) ([]float64, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSigma, sigma)
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius %d", ErrInvalidKernel, radius)
	}
	if size := 2*radius + 1; size > MaxGaussianKernelSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrKernelTooLarge, size, MaxGaussianKernelSize)
	}

	size := 2*radius + 1
	kernel := make([]float64, size*size)
	twoSigma2 := 2 * sigma * sigma
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			d := float64(x*x + y*y)
			kernel[(y+radius)*size+x+radius] = math.Exp(-d/twoSigma2) / (math.Pi * twoSigma2)
		}
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel, nil
}

// BlurGaussian convolves an RGB24 image with a normalized Gaussian of the
// given sigma. kernelSize/2 is the kernel radius; sources outside the image
// replicate the nearest edge pixel.
func BlurGaussian(pix []byte, width, height int, sigma float64, kernelSize int) ([]byte, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if kernelSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKernel, kernelSize)
	}
	if err := checkLength(pix, 3*width*height); err != nil {
		return nil, err
	}
	radius := kernelSize / 2
	kernel, err := GaussianKernel(sigma, radius)
	if err != nil {
		return nil, err
	}

	size := 2*radius + 1
	out := make([]byte, 3*width*height)
	forEachRow(height, func(y int) {
		for x := 0; x < width; x++ {
			var sumR, sumG, sumB float64
			for ky := 0; ky < size; ky++ {
				sy := clampInt(y+ky-radius, 0, height-1)
				row := sy * width
				for kx := 0; kx < size; kx++ {
					sx := clampInt(x+kx-radius, 0, width-1)
					k := kernel[ky*size+kx]
					p := pix[3*(row+sx):]
					sumR += float64(p[0]) * k
					sumG += float64(p[1]) * k
					sumB += float64(p[2]) * k
				}
			}
			o := out[3*(y*width+x):]
			o[0] = clampUint8(sumR)
			o[1] = clampUint8(sumG)
			o[2] = clampUint8(sumB)
		}
	})
	return out, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampUint8 saturates v to [0, 255] and rounds to the nearest integer.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
