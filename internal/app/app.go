// Package app owns the window, the WebGPU device and the event loop for
// the interactive viewer.
package app

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"lvlviewer/internal/camera"
	"lvlviewer/internal/config"
	"lvlviewer/internal/lvl"
	"lvlviewer/internal/renderer"
	"lvlviewer/pkg/shading"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// App ties the window, the GPU renderer and the camera together.
type App struct {
	window   *glfw.Window
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	renderer *renderer.Renderer
	camera   *camera.Camera

	mapName string

	keysMu sync.RWMutex
	keys   map[glfw.Key]bool

	width, height int
}

// New creates the window, initializes WebGPU and uploads the map to the GPU.
func New(cfg *config.Config, m *lvl.Map) (*App, error) {
	a := &App{
		mapName: m.Filename,
		keys:    make(map[glfw.Key]bool),
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(a.width, a.height, "lvlviewer - "+m.Filename, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.window = window

	if err := a.initWebGPU(); err != nil {
		a.Cleanup()
		return nil, err
	}

	start := shading.Vec2{
		X: float32(cfg.Rendering.StartX),
		Y: float32(cfg.Rendering.StartY),
	}
	a.camera = camera.New(start, float32(cfg.Rendering.StartScale), a.width, a.height)

	a.renderer, err = renderer.New(a.adapter, a.device, a.queue, a.surface, uint32(a.width), uint32(a.height), cfg.Rendering.Bilinear)
	if err != nil {
		a.Cleanup()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	atlas, err := m.Atlas()
	if err != nil {
		a.Cleanup()
		return nil, fmt.Errorf("failed to build tile atlas: %w", err)
	}
	if err := a.renderer.UploadMap(m.Tiles, atlas); err != nil {
		a.Cleanup()
		return nil, fmt.Errorf("failed to upload map: %w", err)
	}

	a.setupCallbacks()

	slog.Info("viewer ready", "map", m.Filename, "regions", len(m.Regions()))
	return a, nil
}

func (a *App) initWebGPU() error {
	a.instance = wgpu.CreateInstance(nil)
	if a.instance == nil {
		return fmt.Errorf("failed to create WebGPU instance")
	}

	a.surface = CreateSurface(a.instance, a.window)
	if a.surface == nil {
		return fmt.Errorf("failed to create surface")
	}

	adapter, err := a.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.surface,
		PowerPreference:   wgpu.PowerPreference_HighPerformance,
	})
	if err != nil {
		return fmt.Errorf("failed to request adapter: %w", err)
	}
	a.adapter = adapter

	props := adapter.GetProperties()
	slog.Info("adapter selected", "gpu", props.Name, "driver", props.DriverDescription)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "MainDevice",
	})
	if err != nil {
		return fmt.Errorf("failed to request device: %w", err)
	}
	a.device = device
	a.queue = device.GetQueue()

	return nil
}

func (a *App) setupCallbacks() {
	a.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			return
		}
		a.width = width
		a.height = height
		a.camera.SetSurfaceSize(width, height)
		a.renderer.Resize(uint32(width), uint32(height))
	})

	a.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			x, y := w.GetCursorPos()
			a.camera.StartDrag(x, y)
		case glfw.Release:
			a.camera.EndDrag()
		}
	})

	a.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if a.camera.IsDragging() {
			a.camera.Drag(x, y)
		}
	})

	a.window.SetScrollCallback(func(w *glfw.Window, _, yoff float64) {
		x, y := w.GetCursorPos()
		a.camera.ZoomAt(yoff, x, y)
	})

	a.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			a.keysMu.Lock()
			a.keys[key] = true
			a.keysMu.Unlock()
			switch key {
			case glfw.KeyEscape:
				w.SetShouldClose(true)
			case glfw.KeyLeftShift, glfw.KeyRightShift:
				a.camera.ZoomIn()
			case glfw.KeySpace:
				a.camera.ZoomOut()
			}
		case glfw.Release:
			a.keysMu.Lock()
			delete(a.keys, key)
			a.keysMu.Unlock()
		}
	})
}

func (a *App) keyDown(key glfw.Key) bool {
	a.keysMu.RLock()
	defer a.keysMu.RUnlock()
	return a.keys[key]
}

// processInput applies held-key panning once per frame. Pan works in
// screen pixels (drag convention: content follows the delta), so moving
// the camera up means panning the content down.
func (a *App) processInput(dt float64) {
	speed := dt * 500 // screen pixels per second

	var dx, dy float64
	if a.keyDown(glfw.KeyW) || a.keyDown(glfw.KeyUp) {
		dy += speed
	}
	if a.keyDown(glfw.KeyS) || a.keyDown(glfw.KeyDown) {
		dy -= speed
	}
	if a.keyDown(glfw.KeyA) || a.keyDown(glfw.KeyLeft) {
		dx += speed
	}
	if a.keyDown(glfw.KeyD) || a.keyDown(glfw.KeyRight) {
		dx -= speed
	}
	if dx != 0 || dy != 0 {
		a.camera.Pan(dx, dy)
	}
}

// Run drives the event loop until the window is closed.
func (a *App) Run() {
	lastFrame := time.Now()
	lastTitle := lastFrame
	frames := 0

	for !a.window.ShouldClose() {
		glfw.PollEvents()

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		a.processInput(dt)

		if err := a.renderer.Render(a.camera); err != nil {
			slog.Error("render failed", "error", err)
		}

		frames++
		if now.Sub(lastTitle) >= time.Second {
			fps := float64(frames) / now.Sub(lastTitle).Seconds()
			a.window.SetTitle(fmt.Sprintf("lvlviewer - %s - %.0f FPS", a.mapName, fps))
			frames = 0
			lastTitle = now
		}
	}
}

// Cleanup releases GPU resources and tears down the window.
func (a *App) Cleanup() {
	if a.renderer != nil {
		a.renderer.Release()
		a.renderer = nil
	}
	if a.queue != nil {
		a.queue.Release()
		a.queue = nil
	}
	if a.device != nil {
		a.device.Release()
		a.device = nil
	}
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
	if a.surface != nil {
		a.surface.Release()
		a.surface = nil
	}
	if a.instance != nil {
		a.instance.Release()
		a.instance = nil
	}
	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}
	glfw.Terminate()
}
