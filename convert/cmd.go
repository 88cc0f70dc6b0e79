// Package convert implements the pixegen convert command: scan a folder of
// images, run each through the sprite pipeline and save the results.
package convert

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	"github.com/DonAyers/pixegen/palette"
	"github.com/DonAyers/pixegen/parallel"
	"github.com/DonAyers/pixegen/sprite"
)

type CLICmd struct {
	Scan           string  `help:"Source folder to scan" default:"."`
	Dest           string  `help:"Destination folder for generated sprites. Relative to scan dir if not absolute." default:"sprites"`
	Width          int     `help:"Sprite grid width" default:"32"`
	Height         int     `help:"Sprite grid height" default:"32"`
	Frames         int     `help:"Treat each image as a sheet of this many equal-width frames" default:"1"`
	Palette        string  `help:"Palette name (gameboy, pico8, sweetie16, cga, gray4, rgb333, rgb555) or PAL file in RIFF format" default:"gameboy" group:"palette"`
	Adaptive       int     `help:"Derive an n-color palette from each image instead of using a fixed profile" default:"0" group:"palette"`
	AdaptiveMethod string  `help:"Adaptive palette derivation method" enum:"mediancut,kmeans" default:"mediancut" group:"palette"`
	Downscale      string  `help:"Downscale strategy" enum:"mode,average" default:"mode"`
	Quantize       string  `help:"Quantize strategy" enum:"nearest,bayer,legacy" default:"nearest" group:"dither"`
	Strength       float64 `help:"Bayer dither strength" default:"0.08" group:"dither"`
	Kernel         string  `help:"Error-diffusion kernel for legacy quantization" enum:"floyd-steinberg,atkinson,stucki,sierra,sierra-lite,none" default:"floyd-steinberg" group:"dither"`
	Serpentine     bool    `help:"Serpentine scan for legacy quantization" default:"true" negatable:""`
	Cleanup        bool    `help:"Remove isolated off-color pixels" default:"true" negatable:""`
	CleanupThresh  int     `name:"cleanup-threshold" help:"Per-channel difference under which colors match during cleanup" default:"16"`
	Outline        bool    `help:"Darken the sprite silhouette border" default:"false"`
	OutlineDarken  float64 `help:"Outline darkening factor, in (0,1)" default:"0.5"`
	KeyBackground  bool    `help:"Make pixels near the dominant source color transparent" default:"false"`
	KeyThreshold   int     `help:"Summed RGB tolerance for background keying" default:"48"`
	Zoom           int     `help:"Integer upscale of the output sprite for viewing" default:"1"`
	Format         string  `help:"Output format" enum:"png,gif,bmp" default:"png"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	switch {
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("invalid sprite size: %dx%d", c.Width, c.Height)
	case c.Frames < 1:
		return fmt.Errorf("invalid frame count: %d", c.Frames)
	case c.Zoom < 1:
		return fmt.Errorf("invalid zoom: %d", c.Zoom)
	case c.Adaptive < 0:
		return fmt.Errorf("invalid adaptive color count: %d", c.Adaptive)
	case c.Strength < 0:
		return fmt.Errorf("invalid dither strength: %g", c.Strength)
	}

	if c.Outline && (c.OutlineDarken <= 0 || c.OutlineDarken >= 1) {
		return fmt.Errorf("outline darken factor must be in (0,1): %g", c.OutlineDarken)
	}

	if c.Adaptive == 0 {
		if _, err := palette.Load(c.Palette); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) options() (sprite.Options, error) {
	opts := sprite.DefaultOptions()

	switch c.Downscale {
	case "mode":
		opts.Downscale = sprite.DownscaleMode
	case "average":
		opts.Downscale = sprite.DownscaleAverage
	}

	switch c.Quantize {
	case "nearest":
		opts.Quantize = sprite.QuantizeOKLabNearest
	case "bayer":
		opts.Quantize = sprite.QuantizeOKLabBayer
	case "legacy":
		opts.Quantize = sprite.QuantizeHistogram
	}

	kernels := map[string]sprite.DiffusionKernel{
		"floyd-steinberg": sprite.KernelFloydSteinberg,
		"atkinson":        sprite.KernelAtkinson,
		"stucki":          sprite.KernelStucki,
		"sierra":          sprite.KernelSierra,
		"sierra-lite":     sprite.KernelSierraLite,
		"none":            sprite.KernelNone,
	}
	kernel, ok := kernels[c.Kernel]
	if !ok {
		return opts, fmt.Errorf("unsupported kernel: %s", c.Kernel)
	}
	opts.Kernel = kernel

	opts.DitherStrength = c.Strength
	opts.Serpentine = c.Serpentine
	opts.Cleanup = c.Cleanup
	opts.CleanupThreshold = c.CleanupThresh
	opts.Outline = c.Outline
	opts.OutlineDarken = c.OutlineDarken
	opts.KeyBackground = c.KeyBackground
	opts.KeyThreshold = c.KeyThreshold
	return opts, nil
}

func (c *CLICmd) loadPalette() (*palette.Palette, sprite.PaletteMode, error) {
	pal, err := palette.Load(c.Palette)
	if err != nil {
		return nil, sprite.PaletteFixed, err
	}
	if pal.Depth() > 0 {
		return pal, sprite.PaletteBitDepth, nil
	}
	return pal, sprite.PaletteFixed, nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	size := sprite.Size{W: c.Width, H: c.Height}

	// One palette value for the whole run unless deriving per image; the
	// shared OKLAB cache keeps color mapping identical across files.
	var fixed *palette.Palette
	if c.Adaptive == 0 {
		var mode sprite.PaletteMode
		if fixed, mode, err = c.loadPalette(); err != nil {
			return err
		}
		opts.PaletteMode = mode
	}

	if err := os.MkdirAll(c.Dest, os.ModeDir|0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func(fileName string) func() {
			return func() {
				if err := c.convertFile(fileName, fixed, size, opts); err != nil {
					errCount.Add(1)
					slog.Error("could not convert image", "file", fileName, "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors, "total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func (c *CLICmd) convertFile(fileName string, fixed *palette.Palette, size sprite.Size, opts sprite.Options) error {
	filePath := filepath.Join(c.Scan, fileName)
	logger := slog.Default().With("file", filePath)

	imgFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	defer imgFile.Close()

	decoded, _, err := image.Decode(imgFile)
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}
	src := toNRGBA(decoded)

	pal := fixed
	if pal == nil {
		if pal, err = c.derivePalette(src); err != nil {
			return err
		}
		logger.Info("derived palette", "method", c.AdaptiveMethod, "colors", pal.Len())
	}

	base := fileName[:len(fileName)-len(filepath.Ext(fileName))]

	if c.Frames > 1 {
		frames, err := sprite.ProcessSheet(src, c.Frames, size, pal, opts)
		if err != nil {
			return err
		}
		for i, frame := range frames {
			name := fmt.Sprintf("%s_%03d", base, i)
			if err := c.save(zoomed(frame, c.Zoom), name); err != nil {
				return err
			}
		}
		logger.Info("converted sheet", "frames", len(frames), "sprite", fmt.Sprintf("%dx%d", size.W, size.H))
		return nil
	}

	out, err := sprite.ProcessSingle(src, size, pal, opts)
	if err != nil {
		return err
	}
	if err := c.save(zoomed(out, c.Zoom), base); err != nil {
		return err
	}
	logger.Info("converted", "sprite", fmt.Sprintf("%dx%d", size.W, size.H))
	return nil
}

func (c *CLICmd) derivePalette(src *image.NRGBA) (*palette.Palette, error) {
	switch c.AdaptiveMethod {
	case "kmeans":
		return palette.FromImageKMeans(src, c.Adaptive)
	default:
		return palette.FromImageMedianCut(src, c.Adaptive)
	}
}
