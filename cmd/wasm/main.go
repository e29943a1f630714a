//go:build js && wasm

package main

import (
	"fmt"
	"image"
	"syscall/js"

	rp "rawpipe/pkg/rawpipe"
)

func main() {
	js.Global().Set("processRaw", js.FuncOf(processRaw))
	js.Global().Set("renderPreview", js.FuncOf(renderPreview))
	select {} // block forever
}

// processRaw(fileBytes, op, options) runs one pipeline operation on a FITS
// mosaic and returns the result as FITS bytes.
func processRaw(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("usage: processRaw(fileBytes, op, options)")
	}
	img, err := readInput(args[0])
	if err != nil {
		return errorResult("FITS parse error: " + err.Error())
	}
	var opts js.Value
	if len(args) >= 3 {
		opts = args[2]
	}

	out, err := apply(img, args[1].String(), opts)
	if err != nil {
		return errorResult(err.Error())
	}
	data, err := rp.EncodeFits(out)
	if err != nil {
		return errorResult("FITS encode error: " + err.Error())
	}
	return toUint8Array(data)
}

func apply(img *rp.RawImage, op string, opts js.Value) (*rp.RawImage, error) {
	out := &rp.RawImage{Width: img.Width, Height: img.Height, Depth: img.Depth, Metadata: img.Metadata}
	var err error
	switch op {
	case "crop":
		x, y := intOption(opts, "x", 0), intOption(opts, "y", 0)
		r := image.Rect(x, y, x+intOption(opts, "width", img.Width-x), y+intOption(opts, "height", img.Height-y))
		out.Pix, out.Width, out.Height, err = rp.Crop(img.Pix, img.Width, img.Height, img.Depth.Bytes(), r)
		if err == nil && (out.Width == 0 || out.Height == 0) {
			err = fmt.Errorf("region %v does not intersect the image", r)
		}
	case "downscale":
		factor := intOption(opts, "factor", 2)
		if factor == 8 {
			out.Pix, out.Width, out.Height, err = rp.DownscaleBayerBy8(img.Pix, img.Width, img.Height, img.Depth)
		} else {
			out.Pix, out.Width, out.Height, err = rp.DownscaleBayer(img.Pix, img.Width, img.Height, img.Depth, factor)
		}
	case "sharpen":
		out.Pix, err = rp.SharpenBayer(img.Pix, img.Width, img.Height, img.Depth, floatOption(opts, "strength", 0.5))
	case "adaptiveSharpen":
		if img.Depth != rp.Depth16 {
			return nil, fmt.Errorf("adaptive sharpen needs a 16-bit mosaic")
		}
		out.Pix, err = rp.AdaptiveSharpenBayer16(img.Pix, img.Width, img.Height)
	case "median":
		if img.Depth != rp.Depth16 {
			return nil, fmt.Errorf("median merge needs a 16-bit mosaic")
		}
		out.Pix, err = rp.MedianMergeGreen16(img.Pix, img.Width, img.Height)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// renderPreview(fileBytes, options) returns a superpixel JPEG of a FITS
// mosaic, optionally blurred.
func renderPreview(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.Null()
	}
	img, err := readInput(args[0])
	if err != nil {
		return js.Null()
	}
	var opts js.Value
	if len(args) >= 2 {
		opts = args[1]
	}

	rgb, w, h, err := rp.SuperPixelRGB(img.Pix, img.Width, img.Height, img.Depth)
	if err != nil {
		return js.Null()
	}
	if sigma := floatOption(opts, "blurSigma", 0); sigma > 0 {
		rgb, err = rp.BlurGaussian(rgb, w, h, sigma, intOption(opts, "blurSize", 5))
		if err != nil {
			return js.Null()
		}
	}
	preview, err := rp.RenderPreview(rgb, w, h, fmt.Sprintf("%dx%d %s", img.Width, img.Height, img.Depth))
	if err != nil {
		return js.Null()
	}
	jpegBytes, err := rp.EncodeJPEG(preview)
	if err != nil {
		return js.Null()
	}
	return toUint8Array(jpegBytes)
}

func readInput(jsBytes js.Value) (*rp.RawImage, error) {
	length := jsBytes.Get("length").Int()
	fileBytes := make([]byte, length)
	js.CopyBytesToGo(fileBytes, jsBytes)
	return rp.ReadFitsFromBytes(fileBytes)
}

func intOption(opts js.Value, key string, def int) int {
	if opts.Type() != js.TypeObject {
		return def
	}
	if v := opts.Get(key); v.Type() == js.TypeNumber {
		return v.Int()
	}
	return def
}

func floatOption(opts js.Value, key string, def float64) float64 {
	if opts.Type() != js.TypeObject {
		return def
	}
	if v := opts.Get(key); v.Type() == js.TypeNumber {
		return v.Float()
	}
	return def
}

func toUint8Array(data []byte) js.Value {
	uint8Array := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(uint8Array, data)
	return uint8Array
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
