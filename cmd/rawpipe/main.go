package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rawpipe/pkg/envconfig"
	rp "rawpipe/pkg/rawpipe"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: envconfig.LogLevel()})))

	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "rawpipe",
		Short:         "Bayer RAW processing pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["RAWPIPE_NUM_THREADS"], envVars["RAWPIPE_DEBUG"]}
	for _, cmd := range []*cobra.Command{
		newInfoCmd(),
		newCropCmd(),
		newDownscaleCmd(),
		newSharpenCmd(),
		newMedianCmd(),
		newPreviewCmd(),
		newGrayCmd(),
		newTiffCmd(),
	} {
		appendEnvDocs(cmd, envs)
		rootCmd.AddCommand(cmd)
	}
	return rootCmd
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	envUsage := "\nEnvironment Variables:\n"
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}
	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func isFits(path string) bool {
	lowerPath := strings.ToLower(path)
	return strings.HasSuffix(lowerPath, ".fits") || strings.HasSuffix(lowerPath, ".fit") || strings.HasSuffix(lowerPath, ".fts")
}

// loadMosaic reads a single-channel mosaic from FITS or, through the build's
// image loader, from any other single-channel image file.
func loadMosaic(path string) (*rp.RawImage, error) {
	var img *rp.RawImage
	var err error
	if isFits(path) {
		img, err = rp.ReadFits(path)
		if err != nil {
			return nil, fmt.Errorf("reading FITS: %w", err)
		}
	} else {
		img, err = loadNonFitsImage(path)
		if err != nil {
			return nil, err
		}
	}

	if img.Metadata != nil {
		if p := img.Metadata.BayerPattern(); p != "" && p != "RGGB" {
			slog.Warn("mosaic is not RGGB, channel slots will be mislabeled", "path", path, "bayerpat", p)
		}
	}
	slog.Debug("mosaic loaded", "path", path, "width", img.Width, "height", img.Height, "depth", img.Depth)
	return img, nil
}

// saveMosaic writes img as TIFF when path says so, FITS otherwise.
func saveMosaic(img *rp.RawImage, path string) error {
	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tif") || strings.HasSuffix(lowerPath, ".tiff") {
		data, err := rp.EncodeMosaicTIFF(img.Pix, img.Width, img.Height, img.Depth)
		if err != nil {
			return err
		}
		return writeFile(path, data)
	}
	return rp.WriteFits(img, path)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// derive returns a RawImage carrying src's metadata around new samples.
func derive(src *rp.RawImage, pix []byte, width, height int) *rp.RawImage {
	return &rp.RawImage{Pix: pix, Width: width, Height: height, Depth: src.Depth, Metadata: src.Metadata}
}
