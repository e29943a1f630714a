package rawpipe

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFitsRoundTrip16(t *testing.T) {
	const width, height = 6, 4
	pix := newMosaic16(width, height, func(x, y int) uint16 {
		switch {
		case x == 0 && y == 0:
			return 0
		case x == 1 && y == 0:
			return 32768
		case x == 2 && y == 0:
			return 0xFFFF
		}
		return uint16(1000*x + 7*y)
	})
	meta := NewFitsMetadata()
	meta.Headers["BAYERPAT"] = "RGGB"
	meta.Headers["EXPTIME"] = "1.5"
	meta.Headers["INSTRUME"] = "ZWO ASI294MC"
	meta.Headers["TELESCOP"] = "Newton's 200P"
	meta.Headers["FILTER"] = "L-eXtreme"

	data, err := EncodeFits(&RawImage{Pix: pix, Width: width, Height: height, Depth: Depth16, Metadata: meta})
	if err != nil {
		t.Fatal(err)
	}
	if len(data)%fitsBlockSize != 0 {
		t.Errorf("encoded length %d is not a multiple of %d", len(data), fitsBlockSize)
	}
	if !bytes.HasPrefix(data, []byte("SIMPLE  =                    T")) {
		t.Errorf("header starts with %q", data[:30])
	}

	img, err := ReadFitsFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != width || img.Height != height || img.Depth != Depth16 {
		t.Fatalf("decoded %dx%d %s, want %dx%d 16-bit", img.Width, img.Height, img.Depth, width, height)
	}
	if diff := cmp.Diff(pix, img.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	if got := img.Metadata.BayerPattern(); got != "RGGB" {
		t.Errorf("BayerPattern() = %q, want RGGB", got)
	}
	if got := img.Metadata.CameraName(); got != "ZWO ASI294MC" {
		t.Errorf("CameraName() = %q, want ZWO ASI294MC", got)
	}
	if got := img.Metadata.TelescopeName(); got != "Newton's 200P" {
		t.Errorf("TelescopeName() = %q, want %q", got, "Newton's 200P")
	}
	if got := img.Metadata.Filter(); got != "L-eXtreme" {
		t.Errorf("Filter() = %q, want L-eXtreme", got)
	}
	if got, ok := img.Metadata.ExposureTime(); !ok || got != 1.5 {
		t.Errorf("ExposureTime() = %v, %v, want 1.5, true", got, ok)
	}
	if got, ok := img.Metadata.GetDouble("BZERO"); !ok || got != 32768 {
		t.Errorf("BZERO = %v, %v, want 32768", got, ok)
	}
}

func TestFitsRoundTrip8File(t *testing.T) {
	const width, height = 5, 3
	pix := newMosaic8(width, height, func(x, y int) uint8 { return uint8(50*x + y) })
	path := filepath.Join(t.TempDir(), "gray.fits")
	if err := WriteFits(&RawImage{Pix: pix, Width: width, Height: height, Depth: Depth8}, path); err != nil {
		t.Fatal(err)
	}

	img, err := ReadFits(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != width || img.Height != height || img.Depth != Depth8 {
		t.Fatalf("decoded %dx%d %s, want %dx%d 8-bit", img.Width, img.Height, img.Depth, width, height)
	}
	if diff := cmp.Diff(pix, img.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
}

// fitsHeader builds a header block from raw card images.
func fitsHeader(cards ...string) []byte {
	var buf bytes.Buffer
	for _, c := range cards {
		fmt.Fprintf(&buf, "%-80s", c)
	}
	fmt.Fprintf(&buf, "%-80s", "END")
	padTo(&buf, fitsBlockSize, ' ')
	return buf.Bytes()
}

func TestReadFitsFloat(t *testing.T) {
	hdr := fitsHeader(
		"SIMPLE  =                    T",
		"BITPIX  =                  -32 / IEEE float",
		"NAXIS   =                    2",
		"NAXIS1  =                    2",
		"NAXIS2  =                    1",
		"BSCALE  =                65535",
		"OBJECT  = 'M 31    '           / target",
	)
	// 0.5 and 2.0 as big-endian float32.
	data := append(hdr, 0x3F, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00)

	img, err := ReadFitsFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Depth != Depth16 {
		t.Errorf("Depth = %s, want 16-bit", img.Depth)
	}
	// 0.5 * 65535 truncates to 32767; 2.0 * 65535 saturates.
	if a, b := sample16(img.Pix, 2, 0, 0), sample16(img.Pix, 2, 1, 0); a != 32767 || b != 0xFFFF {
		t.Errorf("samples = %d, %d, want 32767, 65535", a, b)
	}
	if got := img.Metadata.ObjectName(); got != "M 31" {
		t.Errorf("ObjectName() = %q, want %q", got, "M 31")
	}
}

func TestReadFitsErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no axes", fitsHeader("SIMPLE  =                    T", "BITPIX  =                   16", "NAXIS   =                    0")},
		{"bad bitpix", append(fitsHeader(
			"SIMPLE  =                    T",
			"BITPIX  =                   64",
			"NAXIS   =                    2",
			"NAXIS1  =                    1",
			"NAXIS2  =                    1",
		), make([]byte, 8)...)},
		{"truncated data", fitsHeader(
			"SIMPLE  =                    T",
			"BITPIX  =                   16",
			"NAXIS   =                    2",
			"NAXIS1  =                  100",
			"NAXIS2  =                  100",
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadFitsFromBytes(tt.data); err == nil {
				t.Error("ReadFitsFromBytes() succeeded, want error")
			}
		})
	}

	if _, err := EncodeFits(&RawImage{Pix: make([]byte, 3), Width: 2, Height: 2, Depth: Depth8}); err == nil {
		t.Error("EncodeFits(short) succeeded, want error")
	}
}
