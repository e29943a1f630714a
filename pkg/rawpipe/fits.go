package rawpipe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	fitsCardSize  = 80
	fitsBlockSize = 2880
)

// FitsMetadata holds parsed FITS header key-value pairs.
type FitsMetadata struct {
	Headers map[string]string
}

// NewFitsMetadata creates an empty FitsMetadata.
func NewFitsMetadata() *FitsMetadata {
	return &FitsMetadata{Headers: make(map[string]string)}
}

func (m *FitsMetadata) GetString(key string) string {
	return m.Headers[strings.ToUpper(key)]
}

func (m *FitsMetadata) GetDouble(key string) (float64, bool) {
	v, ok := m.Headers[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (m *FitsMetadata) ObjectName() string    { return m.GetString("OBJECT") }
func (m *FitsMetadata) CameraName() string    { return m.GetString("INSTRUME") }
func (m *FitsMetadata) TelescopeName() string { return m.GetString("TELESCOP") }
func (m *FitsMetadata) Filter() string        { return m.GetString("FILTER") }
func (m *FitsMetadata) BayerPattern() string  { return strings.ToUpper(m.GetString("BAYERPAT")) }

func (m *FitsMetadata) ExposureTime() (float64, bool) {
	if v, ok := m.GetDouble("EXPTIME"); ok {
		return v, true
	}
	return m.GetDouble("EXPOSURE")
}

// RawImage is a tightly packed single-channel mosaic with native-endian
// samples, as read from or written to a FITS primary HDU.
type RawImage struct {
	Pix      []byte
	Width    int
	Height   int
	Depth    Depth
	Metadata *FitsMetadata
}

// ReadFits reads a FITS file into a RawImage.
func ReadFits(filePath string) (*RawImage, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return readFits(f)
}

// ReadFitsFromBytes parses an in-memory FITS file.
func ReadFitsFromBytes(data []byte) (*RawImage, error) {
	return readFits(bytes.NewReader(data))
}

func readFits(r io.Reader) (*RawImage, error) {
	var bitpix, naxis, width, height int
	bzero := 0.0
	bscale := 1.0
	metadata := NewFitsMetadata()

	block := make([]byte, fitsBlockSize)
	for headerDone := false; !headerDone; {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("reading FITS header block: %w", err)
		}
		for off := 0; off < fitsBlockSize; off += fitsCardSize {
			record := string(block[off : off+fitsCardSize])
			keyword := strings.TrimSpace(record[:8])
			if keyword == "END" {
				headerDone = true
				break
			}
			if record[8] != '=' || record[9] != ' ' {
				continue
			}

			rawValue := strings.TrimSpace(strings.SplitN(record[10:], "/", 2)[0])
			if v := parseFitsValue(rawValue); keyword != "" && v != "" {
				metadata.Headers[strings.ToUpper(keyword)] = v
			}
			switch keyword {
			case "BITPIX":
				bitpix, _ = strconv.Atoi(rawValue)
			case "NAXIS":
				naxis, _ = strconv.Atoi(rawValue)
			case "NAXIS1":
				width, _ = strconv.Atoi(rawValue)
			case "NAXIS2":
				height, _ = strconv.Atoi(rawValue)
			case "BZERO":
				bzero, _ = strconv.ParseFloat(rawValue, 64)
			case "BSCALE":
				bscale, _ = strconv.ParseFloat(rawValue, 64)
			}
		}
	}

	if naxis < 2 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid FITS: NAXIS=%d, NAXIS1=%d, NAXIS2=%d", naxis, width, height)
	}

	n := width * height
	img := &RawImage{Width: width, Height: height, Depth: Depth16, Metadata: metadata}
	physical := func(v float64) float64 { return v*bscale + bzero }

	switch bitpix {
	case 8:
		raw := make([]byte, n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("reading 8-bit pixel data: %w", err)
		}
		img.Depth = Depth8
		img.Pix = make([]byte, n)
		for i, v := range raw {
			img.Pix[i] = uint8(saturate(physical(float64(v)), Depth8))
		}
	case 16:
		raw := make([]byte, 2*n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("reading 16-bit pixel data: %w", err)
		}
		img.Pix = make([]byte, 2*n)
		for i := 0; i < n; i++ {
			v := float64(int16(binary.BigEndian.Uint16(raw[2*i:])))
			binary.NativeEndian.PutUint16(img.Pix[2*i:], uint16(saturate(physical(v), Depth16)))
		}
	case 32, -32:
		raw := make([]byte, 4*n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("reading %d-bit pixel data: %w", bitpix, err)
		}
		img.Pix = make([]byte, 2*n)
		for i := 0; i < n; i++ {
			bits := binary.BigEndian.Uint32(raw[4*i:])
			v := float64(int32(bits))
			if bitpix < 0 {
				v = float64(math.Float32frombits(bits))
			}
			binary.NativeEndian.PutUint16(img.Pix[2*i:], uint16(saturate(physical(v), Depth16)))
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX: %d", bitpix)
	}
	return img, nil
}

// structuralKeys are written by EncodeFits itself and never copied from
// metadata.
var structuralKeys = map[string]bool{
	"SIMPLE": true, "BITPIX": true, "NAXIS": true, "NAXIS1": true, "NAXIS2": true,
	"BZERO": true, "BSCALE": true, "EXTEND": true, "END": true,
}

// EncodeFits serializes img as a single primary HDU. 16-bit samples are
// stored as signed values with BZERO = 32768.
func EncodeFits(img *RawImage) ([]byte, error) {
	if err := checkPlane(img.Pix, img.Width, img.Height, img.Depth); err != nil {
		return nil, err
	}

	var hdr bytes.Buffer
	card := func(key, value string) {
		fmt.Fprintf(&hdr, "%-80s", fmt.Sprintf("%-8s= %20s", key, value))
	}
	card("SIMPLE", "T")
	card("BITPIX", strconv.Itoa(int(img.Depth)))
	card("NAXIS", "2")
	card("NAXIS1", strconv.Itoa(img.Width))
	card("NAXIS2", strconv.Itoa(img.Height))
	if img.Depth == Depth16 {
		card("BZERO", "32768")
		card("BSCALE", "1")
	}
	if img.Metadata != nil {
		keys := make([]string, 0, len(img.Metadata.Headers))
		for k := range img.Metadata.Headers {
			if !structuralKeys[k] && len(k) <= 8 {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&hdr, "%-80.80s", fmt.Sprintf("%-8s= '%-8s'", k, strings.ReplaceAll(img.Metadata.Headers[k], "'", "''")))
		}
	}
	fmt.Fprintf(&hdr, "%-80s", "END")
	padTo(&hdr, fitsBlockSize, ' ')

	n := img.Width * img.Height
	data := bytes.NewBuffer(hdr.Bytes())
	if img.Depth == Depth16 {
		var sample [2]byte
		for i := 0; i < n; i++ {
			v := binary.NativeEndian.Uint16(img.Pix[2*i:])
			binary.BigEndian.PutUint16(sample[:], uint16(int16(int32(v)-32768)))
			data.Write(sample[:])
		}
	} else {
		data.Write(img.Pix[:n])
	}
	padTo(data, fitsBlockSize, 0)
	return data.Bytes(), nil
}

// WriteFits writes img to path.
func WriteFits(img *RawImage, path string) error {
	data, err := EncodeFits(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing FITS file: %w", err)
	}
	return nil
}

func padTo(buf *bytes.Buffer, block int, fill byte) {
	if rem := buf.Len() % block; rem != 0 {
		buf.Write(bytes.Repeat([]byte{fill}, block-rem))
	}
}

// saturate maps a physical FITS value onto the sample range of d. The
// fraction is truncated.
func saturate(v float64, d Depth) uint32 {
	if !(v > 0) {
		return 0
	}
	return uint32(min(v, float64(d.MaxValue())))
}

// parseFitsValue normalizes a card value: logicals become True/False and
// quoted strings lose their quotes, trailing blanks and doubled quotes.
func parseFitsValue(rawValue string) string {
	switch {
	case rawValue == "T":
		return "True"
	case rawValue == "F":
		return "False"
	case !strings.HasPrefix(rawValue, "'"):
		return rawValue
	}
	body := rawValue[1:]
	if end := strings.LastIndex(body, "'"); end >= 0 {
		body = body[:end]
	}
	return strings.ReplaceAll(strings.TrimRight(body, " "), "''", "'")
}
