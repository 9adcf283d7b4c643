// Package software renders a map view on the CPU, pixel by pixel, using the
// same shading logic the GPU pipeline runs. It backs the headless snapshot
// tool and gives the shading stages an end-to-end harness.
package software

import (
	"image"
	"image/color"
	"sync"

	"lvlviewer/internal/camera"
	"lvlviewer/pkg/shading"
)

// Options controls a software render.
type Options struct {
	Width  int
	Height int
	Filter shading.FilterMode

	// Background fills discarded pixels. The GPU path gets this from the
	// render pass clear color.
	Background color.NRGBA

	// Workers caps the number of row-rendering goroutines; 0 means one
	// per row is allowed to be scheduled freely.
	Workers int
}

// Render draws the map seen by cam into a new image. Every pixel is an
// independent invocation of the shading stages; rows are rendered
// concurrently since no invocation shares state with another.
func Render(grid *shading.TileGrid, atlas *shading.TileAtlas, cam *camera.Camera, opts Options) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	cfg := shading.SamplerConfig{Filter: opts.Filter}

	rows := make(chan int)
	var wg sync.WaitGroup

	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				renderRow(img, grid, atlas, cam, cfg, opts.Background, y)
			}
		}()
	}

	for y := 0; y < opts.Height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return img
}

func renderRow(img *image.NRGBA, grid *shading.TileGrid, atlas *shading.TileAtlas, cam *camera.Camera, cfg shading.SamplerConfig, bg color.NRGBA, y int) {
	for x := 0; x < img.Rect.Dx(); x++ {
		// Sample at the pixel center.
		world := cam.Unproject(float64(x)+0.5, float64(y)+0.5)

		c, ok := shading.ShadePixel(grid, atlas, cfg, world.X, world.Y)
		if !ok {
			img.SetNRGBA(x, y, bg)
			continue
		}
		img.SetNRGBA(x, y, color.NRGBA{
			R: floatByte(c.R),
			G: floatByte(c.G),
			B: floatByte(c.B),
			A: floatByte(c.A),
		})
	}
}

func floatByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
