package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	rp "rawpipe/pkg/rawpipe"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Print mosaic dimensions and header fields",
		Args:  cobra.ExactArgs(1),
		RunE:  infoHandler,
	}
}

func infoHandler(cmd *cobra.Command, args []string) error {
	img, err := loadMosaic(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", filepath.Base(args[0]))
	fmt.Printf("  Image size:      %d x %d\n", img.Width, img.Height)
	fmt.Printf("  Sample depth:    %s\n", img.Depth)
	fmt.Printf("  Tiles:           %d x %d\n", img.Width/2, img.Height/2)
	fmt.Printf("  Padded stride:   %d bytes\n", rp.RowStrideBytes(int(img.Depth), img.Width))
	if m := img.Metadata; m != nil {
		if p := m.BayerPattern(); p != "" {
			fmt.Printf("  Bayer pattern:   %s\n", p)
		}
		if c := m.CameraName(); c != "" {
			fmt.Printf("  Camera:          %s\n", c)
		}
		if s := m.TelescopeName(); s != "" {
			fmt.Printf("  Telescope:       %s\n", s)
		}
		if o := m.ObjectName(); o != "" {
			fmt.Printf("  Object:          %s\n", o)
		}
		if f := m.Filter(); f != "" {
			fmt.Printf("  Filter:          %s\n", f)
		}
		if e, ok := m.ExposureTime(); ok {
			fmt.Printf("  Exposure:        %.3fs\n", e)
		}
	}
	return nil
}

func newCropCmd() *cobra.Command {
	cropCmd := &cobra.Command{
		Use:   "crop FILE OUTPUT",
		Short: "Cut a rectangle out of a mosaic",
		Args:  cobra.ExactArgs(2),
		RunE:  cropHandler,
	}
	addRectFlags(cropCmd)
	return cropCmd
}

func addRectFlags(cmd *cobra.Command) {
	cmd.Flags().Int("x", 0, "Left edge of the region")
	cmd.Flags().Int("y", 0, "Top edge of the region")
	cmd.Flags().Int("width", 0, "Region width (0 = to the right edge)")
	cmd.Flags().Int("height", 0, "Region height (0 = to the bottom edge)")
}

func rectFromFlags(cmd *cobra.Command, width, height int) image.Rectangle {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	w, _ := cmd.Flags().GetInt("width")
	h, _ := cmd.Flags().GetInt("height")
	if w <= 0 {
		w = width - x
	}
	if h <= 0 {
		h = height - y
	}
	return image.Rect(x, y, x+w, y+h)
}

func cropHandler(cmd *cobra.Command, args []string) error {
	img, err := loadMosaic(args[0])
	if err != nil {
		return err
	}
	r := rectFromFlags(cmd, img.Width, img.Height)
	if r.Min.X%2 != 0 || r.Min.Y%2 != 0 {
		slog.Warn("odd crop origin shifts the Bayer phase", "x", r.Min.X, "y", r.Min.Y, "aligned", rp.TileOrigin(r.Min.X, r.Min.Y))
	}

	pix, w, h, err := rp.Crop(img.Pix, img.Width, img.Height, img.Depth.Bytes(), r)
	if err != nil {
		return fmt.Errorf("cropping: %w", err)
	}
	if w == 0 || h == 0 {
		return fmt.Errorf("region %v does not intersect the %dx%d image", r, img.Width, img.Height)
	}
	fmt.Printf("Cropped %v -> %d x %d\n", r, w, h)
	return saveMosaic(derive(img, pix, w, h), args[1])
}

func newDownscaleCmd() *cobra.Command {
	downscaleCmd := &cobra.Command{
		Use:   "downscale FILE OUTPUT",
		Short: "Shrink a mosaic by 2, 4 or 8 keeping the RGGB layout",
		Args:  cobra.ExactArgs(2),
		RunE:  downscaleHandler,
	}
	downscaleCmd.Flags().Int("factor", 2, "Downscale factor (2, 4 or 8)")
	return downscaleCmd
}

func downscaleHandler(cmd *cobra.Command, args []string) error {
	factor, _ := cmd.Flags().GetInt("factor")
	img, err := loadMosaic(args[0])
	if err != nil {
		return err
	}

	startTime := time.Now()
	var pix []byte
	var w, h int
	if factor == 8 {
		pix, w, h, err = rp.DownscaleBayerBy8(img.Pix, img.Width, img.Height, img.Depth)
	} else {
		pix, w, h, err = rp.DownscaleBayer(img.Pix, img.Width, img.Height, img.Depth, factor)
	}
	if err != nil {
		return fmt.Errorf("downscaling: %w", err)
	}
	if w == 0 || h == 0 {
		return fmt.Errorf("%dx%d is too small to downscale by %d", img.Width, img.Height, factor)
	}
	fmt.Printf("Downscaled %d x %d -> %d x %d (%.2fs)\n", img.Width, img.Height, w, h, time.Since(startTime).Seconds())
	return saveMosaic(derive(img, pix, w, h), args[1])
}

func newSharpenCmd() *cobra.Command {
	sharpenCmd := &cobra.Command{
		Use:   "sharpen FILE OUTPUT",
		Short: "Unsharp-mask a mosaic per channel",
		Args:  cobra.ExactArgs(2),
		RunE:  sharpenHandler,
	}
	sharpenCmd.Flags().Float64("strength", 0.5, "Sharpen strength in [0, 1]")
	sharpenCmd.Flags().Bool("adaptive", false, "Scale strength with distance from the center (16-bit only)")
	return sharpenCmd
}

func sharpenHandler(cmd *cobra.Command, args []string) error {
	strength, _ := cmd.Flags().GetFloat64("strength")
	adaptive, _ := cmd.Flags().GetBool("adaptive")
	img, err := loadMosaic(args[0])
	if err != nil {
		return err
	}

	startTime := time.Now()
	var pix []byte
	if adaptive {
		if img.Depth != rp.Depth16 {
			return fmt.Errorf("adaptive sharpen needs a 16-bit mosaic, got %s", img.Depth)
		}
		if cmd.Flags().Changed("strength") {
			slog.Warn("--strength is ignored with --adaptive")
		}
		pix, err = rp.AdaptiveSharpenBayer16(img.Pix, img.Width, img.Height)
	} else {
		pix, err = rp.SharpenBayer(img.Pix, img.Width, img.Height, img.Depth, strength)
	}
	if err != nil {
		return fmt.Errorf("sharpening: %w", err)
	}
	fmt.Printf("Sharpened %d x %d (%.2fs)\n", img.Width, img.Height, time.Since(startTime).Seconds())
	return saveMosaic(derive(img, pix, img.Width, img.Height), args[1])
}

func newMedianCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "median FILE OUTPUT",
		Short: "Replace both greens with the 3x3 median of the merged green",
		Args:  cobra.ExactArgs(2),
		RunE:  medianHandler,
	}
}

func medianHandler(cmd *cobra.Command, args []string) error {
	img, err := loadMosaic(args[0])
	if err != nil {
		return err
	}
	if img.Depth != rp.Depth16 {
		return fmt.Errorf("median merge needs a 16-bit mosaic, got %s", img.Depth)
	}

	startTime := time.Now()
	pix, err := rp.MedianMergeGreen16(img.Pix, img.Width, img.Height)
	if err != nil {
		return fmt.Errorf("median merge: %w", err)
	}
	fmt.Printf("Median-merged greens of %d x %d (%.2fs)\n", img.Width, img.Height, time.Since(startTime).Seconds())
	return saveMosaic(derive(img, pix, img.Width, img.Height), args[1])
}

func newPreviewCmd() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview FILE OUTPUT.jpg",
		Short: "Render a half-size superpixel JPEG of a mosaic",
		Args:  cobra.ExactArgs(2),
		RunE:  previewHandler,
	}
	previewCmd.Flags().Float64("blur-sigma", 0, "Gaussian blur sigma (0 = no blur)")
	previewCmd.Flags().Int("blur-size", 5, "Gaussian kernel size, at most 11")
	previewCmd.Flags().String("strength-map", "", "Also write the adaptive sharpen strength map to this JPEG")
	return previewCmd
}

func previewHandler(cmd *cobra.Command, args []string) error {
	sigma, _ := cmd.Flags().GetFloat64("blur-sigma")
	kernelSize, _ := cmd.Flags().GetInt("blur-size")
	strengthMap, _ := cmd.Flags().GetString("strength-map")

	img, err := loadMosaic(args[0])
	if err != nil {
		return err
	}
	rgb, w, h, err := rp.SuperPixelRGB(img.Pix, img.Width, img.Height, img.Depth)
	if err != nil {
		return fmt.Errorf("superpixel: %w", err)
	}

	caption := []string{fmt.Sprintf("%s  %dx%d %s", filepath.Base(args[0]), img.Width, img.Height, img.Depth)}
	if sigma > 0 {
		rgb, err = rp.BlurGaussian(rgb, w, h, sigma, kernelSize)
		if err != nil {
			return fmt.Errorf("blur: %w", err)
		}
		caption = append(caption, fmt.Sprintf("gaussian sigma=%.2f size=%d", sigma, kernelSize))
	}

	preview, err := rp.RenderPreview(rgb, w, h, caption...)
	if err != nil {
		return err
	}
	if err := rp.WriteJPEG(preview, args[1]); err != nil {
		return err
	}
	fmt.Printf("Preview written: %s (%d x %d)\n", args[1], w, h)

	if strengthMap != "" {
		m, err := rp.RenderStrengthMap(img.Width, img.Height)
		if err != nil {
			return err
		}
		if err := rp.WriteJPEG(m, strengthMap); err != nil {
			return err
		}
		fmt.Printf("Strength map written: %s\n", strengthMap)
	}
	return nil
}

func newGrayCmd() *cobra.Command {
	grayCmd := &cobra.Command{
		Use:   "gray IMAGE OUTPUT",
		Short: "Crop a color image region to 8-bit luminance",
		Args:  cobra.ExactArgs(2),
		RunE:  grayHandler,
	}
	addRectFlags(grayCmd)
	return grayCmd
}

func grayHandler(cmd *cobra.Command, args []string) error {
	if isFits(args[0]) {
		return errors.New("gray needs a color image, not a FITS mosaic")
	}
	rgb, width, height, depth, err := loadRGBImage(args[0])
	if err != nil {
		return err
	}
	r := rectFromFlags(cmd, width, height)

	pix, w, h, err := rp.CropToGray(rgb, width, height, depth, r)
	if err != nil {
		return fmt.Errorf("gray conversion: %w", err)
	}
	if w == 0 || h == 0 {
		return fmt.Errorf("region %v does not intersect the %dx%d image", r, width, height)
	}
	fmt.Printf("Gray %v -> %d x %d\n", r, w, h)
	return saveMosaic(&rp.RawImage{Pix: pix, Width: w, Height: h, Depth: rp.Depth8}, args[1])
}

func newTiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiff FILE OUTPUT.tiff",
		Short: "Export a mosaic as a single-channel TIFF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadMosaic(args[0])
			if err != nil {
				return err
			}
			data, err := rp.EncodeMosaicTIFF(img.Pix, img.Width, img.Height, img.Depth)
			if err != nil {
				return err
			}
			return writeFile(args[1], data)
		},
	}
}
