// Package renderer drives the WebGPU pipeline that draws the tile map.
package renderer

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/rajveermalviya/go-webgpu/wgpu"

	"lvlviewer/internal/camera"
	"lvlviewer/pkg/shading"
)

// Vertex is one corner of the map quad. The position doubles as the
// world-space coordinate the fragment stage receives.
type Vertex struct {
	Position [2]float32
}

// Renderer owns the WebGPU resources for tile map rendering: the pipeline,
// the uniform with the current MVP, the tile atlas array texture, the
// integer tile-grid texture, and the shared sampler.
type Renderer struct {
	device          *wgpu.Device
	queue           *wgpu.Queue
	surface         *wgpu.Surface
	adapter         *wgpu.Adapter
	swapChain       *wgpu.SwapChain
	swapChainFormat wgpu.TextureFormat
	pipeline        *wgpu.RenderPipeline
	sampler         *wgpu.Sampler
	bindGroupLayout *wgpu.BindGroupLayout

	uniformBuffer *wgpu.Buffer

	// Map-dependent resources, created by UploadMap.
	bindGroup    *wgpu.BindGroup
	vertexBuffer *wgpu.Buffer
	vertexCount  uint32
	atlasTexture *wgpu.Texture
	atlasView    *wgpu.TextureView
	gridTexture  *wgpu.Texture
	gridView     *wgpu.TextureView

	width  uint32
	height uint32
}

// New creates a renderer on an initialized device and surface. bilinear
// selects the atlas filter mode.
func New(adapter *wgpu.Adapter, device *wgpu.Device, queue *wgpu.Queue, surface *wgpu.Surface, width, height uint32, bilinear bool) (*Renderer, error) {
	r := &Renderer{
		adapter: adapter,
		device:  device,
		queue:   queue,
		surface: surface,
		width:   width,
		height:  height,
	}
	if err := r.init(bilinear); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init(bilinear bool) error {
	r.swapChainFormat = r.surface.GetPreferredFormat(r.adapter)

	var err error
	r.swapChain, err = r.device.CreateSwapChain(r.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      r.swapChainFormat,
		Width:       r.width,
		Height:      r.height,
		PresentMode: wgpu.PresentMode_Fifo,
	})
	if err != nil {
		return fmt.Errorf("swap chain creation failed: %w", err)
	}

	shader, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "tile_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: TileShader},
	})
	if err != nil {
		return fmt.Errorf("shader creation failed: %w", err)
	}
	defer shader.Release()

	filter := wgpu.FilterMode_Nearest
	if bilinear {
		filter = wgpu.FilterMode_Linear
	}
	r.sampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:   wgpu.AddressMode_ClampToEdge,
		AddressModeV:   wgpu.AddressMode_ClampToEdge,
		AddressModeW:   wgpu.AddressMode_ClampToEdge,
		MagFilter:      filter,
		MinFilter:      filter,
		MipmapFilter:   wgpu.MipmapFilterMode_Nearest,
		MaxAnisotrophy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler creation failed: %w", err)
	}

	r.uniformBuffer, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "mvp_uniform",
		Size:  uint64(unsafe.Sizeof(shading.Mat4{})),
		Usage: wgpu.BufferUsage_Uniform | wgpu.BufferUsage_CopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer creation failed: %w", err)
	}

	r.bindGroupLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "tile_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStage_Vertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Uniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStage_Fragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleType_Float,
					ViewDimension: wgpu.TextureViewDimension_2DArray,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStage_Fragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingType_Filtering},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStage_Fragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleType_Uint,
					ViewDimension: wgpu.TextureViewDimension_2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group layout creation failed: %w", err)
	}

	pipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "tile_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline layout creation failed: %w", err)
	}
	defer pipelineLayout.Release()

	r.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "tile_pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
				StepMode:    wgpu.VertexStepMode_Vertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormat_Float32x2, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.swapChainFormat,
				Blend:     &wgpu.BlendState_Replace,
				WriteMask: wgpu.ColorWriteMask_All,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopology_TriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline creation failed: %w", err)
	}

	return nil
}

// UploadMap pushes a map's tile grid and atlas to the GPU, replacing any
// previously uploaded map. The atlas must carry one layer per renderable
// tile id; shape mismatches are rejected here, before any drawing.
func (r *Renderer) UploadMap(grid *shading.TileGrid, atlas *shading.TileAtlas) error {
	if atlas.Layers() != int(shading.TileIDMaxRenderable) {
		return fmt.Errorf("atlas has %d layers, want %d", atlas.Layers(), shading.TileIDMaxRenderable)
	}
	r.releaseMapResources()

	size := uint32(atlas.LayerSize())
	layers := uint32(atlas.Layers())

	var err error
	r.atlasTexture, err = r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "tile_atlas",
		Size: wgpu.Extent3D{
			Width:              size,
			Height:             size,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        wgpu.TextureFormat_RGBA8UnormSrgb,
		Usage:         wgpu.TextureUsage_TextureBinding | wgpu.TextureUsage_CopyDst,
	})
	if err != nil {
		return fmt.Errorf("atlas texture creation failed: %w", err)
	}

	for k := 0; k < atlas.Layers(); k++ {
		layer := atlas.Layer(k)
		r.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  r.atlasTexture,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{Z: uint32(k)},
				Aspect:   wgpu.TextureAspect_All,
			},
			layer.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(layer.Stride),
				RowsPerImage: size,
			},
			&wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		)
	}

	r.atlasView, err = r.atlasTexture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormat_RGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimension_2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		return fmt.Errorf("atlas view creation failed: %w", err)
	}

	gridW := uint32(grid.Width())
	gridH := uint32(grid.Height())
	r.gridTexture, err = r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "tile_grid",
		Size: wgpu.Extent3D{
			Width:              gridW,
			Height:             gridH,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        wgpu.TextureFormat_R32Uint,
		Usage:         wgpu.TextureUsage_TextureBinding | wgpu.TextureUsage_CopyDst,
	})
	if err != nil {
		return fmt.Errorf("grid texture creation failed: %w", err)
	}

	r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  r.gridTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspect_All,
		},
		wgpu.ToBytes(grid.IDs()),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  gridW * 4,
			RowsPerImage: gridH,
		},
		&wgpu.Extent3D{Width: gridW, Height: gridH, DepthOrArrayLayers: 1},
	)

	r.gridView, err = r.gridTexture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormat_R32Uint,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		return fmt.Errorf("grid view creation failed: %w", err)
	}

	// One quad covering the map plus a one-tile border apron on every
	// side, where the fragment stage draws the border tile.
	w := float32(grid.Width())
	h := float32(grid.Height())
	vertices := []Vertex{
		{Position: [2]float32{-1, -1}},
		{Position: [2]float32{-1, h + 1}},
		{Position: [2]float32{w + 1, -1}},
		{Position: [2]float32{w + 1, -1}},
		{Position: [2]float32{-1, h + 1}},
		{Position: [2]float32{w + 1, h + 1}},
	}
	r.vertexBuffer, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "map_quad",
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsage_Vertex,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer creation failed: %w", err)
	}
	r.vertexCount = uint32(len(vertices))

	r.bindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "tile_bind_group",
		Layout: r.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniformBuffer, Size: uint64(unsafe.Sizeof(shading.Mat4{}))},
			{Binding: 1, TextureView: r.atlasView},
			{Binding: 2, Sampler: r.sampler},
			{Binding: 3, TextureView: r.gridView},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group creation failed: %w", err)
	}

	return nil
}

// Render draws one frame from the camera's point of view.
func (r *Renderer) Render(cam *camera.Camera) error {
	mvp := cam.MVP()
	r.queue.WriteBuffer(r.uniformBuffer, 0, wgpu.ToBytes(mvp[:]))

	view, err := r.swapChain.GetCurrentTextureView()
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{})
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOp_Clear,
			StoreOp:    wgpu.StoreOp_Store,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})

	if r.bindGroup != nil {
		pass.SetPipeline(r.pipeline)
		pass.SetBindGroup(0, r.bindGroup, nil)
		pass.SetVertexBuffer(0, r.vertexBuffer, 0, wgpu.WholeSize)
		pass.Draw(r.vertexCount, 1, 0, 0)
	}
	pass.End()

	cmdBuffer, err := encoder.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return err
	}
	defer cmdBuffer.Release()

	r.queue.Submit(cmdBuffer)
	r.swapChain.Present()

	return nil
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	r.width = width
	r.height = height

	if r.swapChain != nil {
		r.swapChain.Release()
	}

	var err error
	r.swapChain, err = r.device.CreateSwapChain(r.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      r.swapChainFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentMode_Fifo,
	})
	if err != nil {
		slog.Error("failed to recreate swap chain", "error", err)
	}
}

func (r *Renderer) releaseMapResources() {
	if r.bindGroup != nil {
		r.bindGroup.Release()
		r.bindGroup = nil
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
		r.vertexBuffer = nil
	}
	if r.gridView != nil {
		r.gridView.Release()
		r.gridView = nil
	}
	if r.gridTexture != nil {
		r.gridTexture.Release()
		r.gridTexture = nil
	}
	if r.atlasView != nil {
		r.atlasView.Release()
		r.atlasView = nil
	}
	if r.atlasTexture != nil {
		r.atlasTexture.Release()
		r.atlasTexture = nil
	}
}

// Release frees all GPU resources.
func (r *Renderer) Release() {
	r.releaseMapResources()

	if r.bindGroupLayout != nil {
		r.bindGroupLayout.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.uniformBuffer != nil {
		r.uniformBuffer.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.swapChain != nil {
		r.swapChain.Release()
	}
}
