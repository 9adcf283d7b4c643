// Package config holds application configuration loaded from config.json.
package config

import (
	"encoding/json"
	"os"
	"sync"
)

// Config holds application configuration and feature flags.
type Config struct {
	// Map is the path or URL of the .lvl file to view.
	Map string `json:"map"`

	Window    Window    `json:"window"`
	Rendering Rendering `json:"rendering"`
	Fetch     Fetch     `json:"fetch"`
}

// Window contains window parameters.
type Window struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rendering contains rendering parameters.
type Rendering struct {
	// Bilinear selects linear tile filtering; false uses nearest.
	Bilinear bool `json:"bilinear"`

	// StartX and StartY are the initial camera position in tile units.
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`

	// StartScale is the initial zoom, in tiles per screen pixel.
	StartScale float64 `json:"start_scale"`
}

// Fetch contains map download parameters used when Map is a URL.
type Fetch struct {
	// CacheDir is where downloaded maps are stored.
	CacheDir string `json:"cache_dir"`

	// Workers is the number of background download workers.
	Workers int `json:"workers"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Map: "test.lvl",
		Window: Window{
			Width:  1280,
			Height: 720,
		},
		Rendering: Rendering{
			Bilinear:   true,
			StartX:     512, // map center
			StartY:     512,
			StartScale: 1.0 / 16.0,
		},
		Fetch: Fetch{
			CacheDir: ".map_cache",
			Workers:  2,
		},
	}
}

// Get returns the global configuration instance. Unless Load has already
// populated it, the first call reads config.json from the working
// directory, falling back to defaults.
func Get() *Config {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if instance != nil {
			return
		}
		instance = DefaultConfig()
		if data, err := os.ReadFile("config.json"); err == nil {
			json.Unmarshal(data, instance)
		}
	})
	return instance
}

// Load loads configuration from a file into the global instance.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		instance = DefaultConfig()
	}

	return json.Unmarshal(data, instance)
}

// Save saves the current configuration to a file.
func Save(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		instance = DefaultConfig()
	}

	data, err := json.MarshalIndent(instance, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
