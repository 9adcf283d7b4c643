package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lvlviewer/internal/app"
	"lvlviewer/internal/config"
	"lvlviewer/internal/lvl"
	"lvlviewer/internal/mapfetch"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	mapArg := flag.String("map", "", "map file or URL (overrides the config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := config.Load(*configPath); err != nil {
		slog.Warn("using default config", "path", *configPath, "error", err)
	}
	cfg := config.Get()

	mapRef := cfg.Map
	if *mapArg != "" {
		mapRef = *mapArg
	}
	if flag.NArg() > 0 {
		mapRef = flag.Arg(0)
	}

	m, err := loadMap(cfg, mapRef)
	if err != nil {
		slog.Error("failed to load map", "map", mapRef, "error", err)
		os.Exit(1)
	}

	for _, attr := range m.Attributes() {
		slog.Info("map attribute", "key", attr.Key, "value", attr.Value)
	}
	for _, region := range m.Regions() {
		slog.Info("map region", "name", region.Name, "tiles", region.TileCount())
	}

	fmt.Println("Controls:")
	fmt.Println("  Drag / WASD / arrows - pan")
	fmt.Println("  Scroll               - zoom at cursor")
	fmt.Println("  Shift / Space        - zoom in / out")
	fmt.Println("  Escape               - quit")

	viewer, err := app.New(cfg, m)
	if err != nil {
		slog.Error("failed to start viewer", "error", err)
		os.Exit(1)
	}
	defer viewer.Cleanup()

	viewer.Run()
}

// loadMap resolves a map reference: a plain path is read from disk, an
// http(s) URL goes through the download cache.
func loadMap(cfg *config.Config, ref string) (*lvl.Map, error) {
	if ref == "" {
		return nil, fmt.Errorf("no map configured")
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		cache, err := mapfetch.New(cfg.Fetch.CacheDir, cfg.Fetch.Workers)
		if err != nil {
			return nil, err
		}
		defer cache.Close()

		data, err := cache.Get(ref)
		if err != nil {
			return nil, err
		}
		m, err := lvl.Parse(data)
		if err != nil {
			return nil, err
		}
		m.Filename = ref
		return m, nil
	}

	return lvl.Load(ref)
}
