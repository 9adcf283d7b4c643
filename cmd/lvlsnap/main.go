// Command lvlsnap renders a map to a PNG without opening a window, using
// the CPU shading path.
package main

import (
	"flag"
	"image/color"
	"image/png"
	"log/slog"
	"os"

	"lvlviewer/internal/camera"
	"lvlviewer/internal/lvl"
	"lvlviewer/internal/software"
	"lvlviewer/pkg/shading"
)

func main() {
	mapPath := flag.String("map", "", "map file to render")
	outPath := flag.String("out", "map.png", "output PNG path")
	width := flag.Int("width", 1024, "image width in pixels")
	height := flag.Int("height", 1024, "image height in pixels")
	centerX := flag.Float64("x", 512, "world X at the image center")
	centerY := flag.Float64("y", 512, "world Y at the image center")
	scale := flag.Float64("scale", 1.0, "world units per pixel")
	bilinear := flag.Bool("bilinear", false, "use bilinear filtering")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *mapPath == "" && flag.NArg() > 0 {
		*mapPath = flag.Arg(0)
	}
	if *mapPath == "" {
		slog.Error("no map file given")
		os.Exit(1)
	}

	m, err := lvl.Load(*mapPath)
	if err != nil {
		slog.Error("failed to load map", "map", *mapPath, "error", err)
		os.Exit(1)
	}

	atlas, err := m.Atlas()
	if err != nil {
		slog.Error("failed to build tile atlas", "error", err)
		os.Exit(1)
	}

	cam := camera.New(
		shading.Vec2{X: float32(*centerX), Y: float32(*centerY)},
		float32(*scale),
		*width, *height,
	)

	filter := shading.FilterNearest
	if *bilinear {
		filter = shading.FilterLinear
	}

	img := software.Render(m.Tiles, atlas, cam, software.Options{
		Width:      *width,
		Height:     *height,
		Filter:     filter,
		Background: color.NRGBA{A: 255},
	})

	out, err := os.Create(*outPath)
	if err != nil {
		slog.Error("failed to create output file", "path", *outPath, "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		slog.Error("failed to encode PNG", "error", err)
		os.Exit(1)
	}

	slog.Info("snapshot written", "path", *outPath, "size", img.Rect.Max)
}
