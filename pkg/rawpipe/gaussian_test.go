package rawpipe

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGaussianKernelNormalized(t *testing.T) {
	for _, sigma := range []float64{0.3, 1, 2.5, 10} {
		for radius := 0; radius <= 5; radius++ {
			k, err := GaussianKernel(sigma, radius)
			if err != nil {
				t.Fatalf("GaussianKernel(%v, %d): %v", sigma, radius, err)
			}
			size := 2*radius + 1
			if len(k) != size*size {
				t.Fatalf("GaussianKernel(%v, %d) has %d entries, want %d", sigma, radius, len(k), size*size)
			}
			sum := 0.0
			for _, v := range k {
				sum += v
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Errorf("GaussianKernel(%v, %d) sums to %v, want 1", sigma, radius, sum)
			}
		}
	}
}

func TestGaussianKernelSymmetric(t *testing.T) {
	const radius = 3
	const size = 2*radius + 1
	k, err := GaussianKernel(1.2, radius)
	if err != nil {
		t.Fatal(err)
	}
	center := k[radius*size+radius]
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := k[y*size+x]
			if v != k[x*size+y] || v != k[(size-1-y)*size+x] || v != k[y*size+size-1-x] {
				t.Errorf("kernel not symmetric at (%d, %d)", x, y)
			}
			if v > center {
				t.Errorf("kernel[%d][%d] = %v exceeds center %v", y, x, v, center)
			}
		}
	}
}

func TestGaussianErrors(t *testing.T) {
	rgb := make([]byte, 3*8*8)
	tests := []struct {
		name       string
		sigma      float64
		kernelSize int
		want       error
	}{
		{"size 12", 1, 12, ErrKernelTooLarge},
		{"size 13", 1, 13, ErrKernelTooLarge},
		{"zero size", 1, 0, ErrInvalidKernel},
		{"negative size", 1, -3, ErrInvalidKernel},
		{"zero sigma", 0, 3, ErrInvalidSigma},
		{"negative sigma", -1, 3, ErrInvalidSigma},
		{"NaN sigma", math.NaN(), 3, ErrInvalidSigma},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BlurGaussian(rgb, 8, 8, tt.sigma, tt.kernelSize)
			if !errors.Is(err, tt.want) {
				t.Errorf("BlurGaussian(sigma=%v, size=%d) error = %v, want %v", tt.sigma, tt.kernelSize, err, tt.want)
			}
		})
	}

	if _, err := BlurGaussian(rgb, 8, 8, 1, MaxGaussianKernelSize); err != nil {
		t.Errorf("BlurGaussian(size=%d) = %v, want success", MaxGaussianKernelSize, err)
	}
	if _, err := BlurGaussian(rgb[:10], 8, 8, 1, 3); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("BlurGaussian(short) error = %v, want %v", err, ErrShortBuffer)
	}
}

func TestBlurGaussianUniform(t *testing.T) {
	const width, height = 9, 7
	rgb := make([]byte, 3*width*height)
	for i := 0; i < width*height; i++ {
		rgb[3*i], rgb[3*i+1], rgb[3*i+2] = 37, 128, 250
	}
	for _, size := range []int{1, 3, 5, 11} {
		out, err := BlurGaussian(rgb, width, height, 1.5, size)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(rgb, out); diff != "" {
			t.Errorf("BlurGaussian(size=%d) changed a uniform image (-want +got):\n%s", size, diff)
		}
	}
}

func TestBlurGaussianImpulse(t *testing.T) {
	const width, height = 9, 9
	rgb := make([]byte, 3*width*height)
	center := 3 * (4*width + 4)
	rgb[center], rgb[center+1], rgb[center+2] = 255, 255, 255

	out, err := BlurGaussian(rgb, width, height, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	at := func(x, y int) byte { return out[3*(y*width+x)] }
	if at(4, 4) == 255 || at(4, 4) == 0 {
		t.Errorf("center = %d, want a spread value", at(4, 4))
	}
	if at(3, 4) != at(5, 4) || at(4, 3) != at(4, 5) || at(3, 4) != at(4, 3) {
		t.Errorf("neighbors %d %d %d %d not symmetric", at(3, 4), at(5, 4), at(4, 3), at(4, 5))
	}
	if at(3, 4) <= at(3, 3) {
		t.Errorf("edge neighbor %d should exceed diagonal %d", at(3, 4), at(3, 3))
	}
	if at(0, 0) != 0 || at(8, 8) != 0 {
		t.Errorf("far pixels = %d %d, want 0", at(0, 0), at(8, 8))
	}
}

func TestBlurGaussianEdgeReplicate(t *testing.T) {
	// A single row: with replicated edges, a left-to-right step keeps its
	// end values.
	const width = 8
	rgb := make([]byte, 3*width)
	for x := width / 2; x < width; x++ {
		rgb[3*x], rgb[3*x+1], rgb[3*x+2] = 200, 200, 200
	}
	out, err := BlurGaussian(rgb, width, 1, 0.8, 3)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 0 || out[3*(width-1)] != 200 {
		t.Errorf("edges = %d, %d, want 0, 200", out[0], out[3*(width-1)])
	}
}
