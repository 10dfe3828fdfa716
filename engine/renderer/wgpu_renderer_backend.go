package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/batch"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/renderer/pipeline"
	"github.com/flint2d/flint/engine/renderer/shader"
	"github.com/flint2d/flint/engine/texture"
)

// maxTextureDim is the largest texture edge accepted by CreateTexture.
// Matches the WebGPU guaranteed minimum for maxTextureDimension2D.
const maxTextureDim = 8192

// quadVertexStride is the byte stride of one quad vertex: position vec2 + uv vec2.
const quadVertexStride = 16

// textureResource holds the GPU objects backing one texture handle.
type textureResource struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass
	clearColor  common.Color

	// One render pipeline per primitive kind, created once the surface
	// format is known.
	pipelines [queue.KindCount]pipeline.Pipeline

	// Static bind group layouts shared by all pipelines. The slot contract
	// is fixed: 0 = texture + sampler, 1 = camera uniform, 2 = per-kind
	// params uniform, 3 = read-only storage instance buffer.
	textureLayout  *wgpu.BindGroupLayout
	cameraLayout   *wgpu.BindGroupLayout
	paramsLayout   *wgpu.BindGroupLayout
	instanceLayout *wgpu.BindGroupLayout

	sampler       *wgpu.Sampler
	samplerConfig common.SamplerStagingData

	// Texture registry. Handle 0 (texture.None) is a built-in 1x1 white
	// texture so untextured primitives share the sprite draw path.
	textures   map[texture.Handle]*textureResource
	nextHandle texture.Handle

	cameraBuffer    *wgpu.Buffer
	cameraBindGroup *wgpu.BindGroup

	paramsBuffers    [queue.KindCount]*wgpu.Buffer
	paramsBindGroups [queue.KindCount]*wgpu.BindGroup

	// Per-kind instance buffers grow geometrically and never shrink. The
	// bind group is recreated whenever its buffer is replaced.
	instanceBuffers    [queue.KindCount]*wgpu.Buffer
	instanceBufferCaps [queue.KindCount]uint64
	instanceBindGroups [queue.KindCount]*wgpu.BindGroup

	// Shared quad geometry. Sprites and glyphs use the unit quad with a
	// top-left origin; rects use the centered quad so the SDF evaluates in
	// symmetric pixel space.
	unitQuadVertexBuffer     *wgpu.Buffer
	centeredQuadVertexBuffer *wgpu.Buffer
	quadIndexBuffer          *wgpu.Buffer

	// Frame state for batched rendering across multiple Submit calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// defaultSamplerConfig is the shared sampler used when no WithSampler option
// is given: clamp-to-edge so atlas tiles never bleed at their borders.
func defaultSamplerConfig() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	}
}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, samplerConfig *common.SamplerStagingData) RendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		sampleCount:   sampleCount,
		clearColor:    common.Color{R: 0, G: 0, B: 0, A: 1},
		samplerConfig: defaultSamplerConfig(),
		textures:      make(map[texture.Handle]*textureResource),
	}
	if samplerConfig != nil {
		w.samplerConfig = *samplerConfig
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.initStaticResources()

	return w
}

// initStaticResources creates every GPU resource that does not depend on the
// surface format: bind group layouts, the shared sampler, the camera and
// per-kind params uniforms, quad geometry, and the built-in white texture.
func (b *wgpuRendererBackendImpl) initStaticResources() {
	var err error

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}

	b.cameraLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 64,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}

	b.paramsLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Kind Params Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 16,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}

	b.instanceLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Instance Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}

	b.sampler, err = b.device.CreateSampler(b.samplerConfig.Descriptor("Shared Sampler"))
	if err != nil {
		panic(err)
	}

	b.cameraBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Buffer",
		Size:  64,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	b.cameraBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: b.cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}

	white := []float32{1, 1, 1, 1}
	for kind := range queue.KindCount {
		buf, bufErr := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Params Buffer", queue.PrimitiveKind(kind)),
			Size:  16,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if bufErr != nil {
			panic(bufErr)
		}
		b.queue.WriteBuffer(buf, 0, common.SliceToBytes(white))
		bg, bgErr := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("%s Params Bind Group", queue.PrimitiveKind(kind)),
			Layout: b.paramsLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
			},
		})
		if bgErr != nil {
			panic(bgErr)
		}
		b.paramsBuffers[kind] = buf
		b.paramsBindGroups[kind] = bg
	}

	b.unitQuadVertexBuffer = b.createQuadVertexBuffer("Unit Quad Vertex Buffer", []float32{
		// x, y, u, v
		0, 0, 0, 0,
		1, 0, 1, 0,
		1, 1, 1, 1,
		0, 1, 0, 1,
	})
	b.centeredQuadVertexBuffer = b.createQuadVertexBuffer("Centered Quad Vertex Buffer", []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	})

	indices := []uint16{0, 1, 2, 0, 2, 3}
	b.quadIndexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Quad Index Buffer",
		Size:  uint64(len(indices) * 2),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	b.queue.WriteBuffer(b.quadIndexBuffer, 0, common.SliceToBytes(indices))

	// Handle 0 is the built-in white texture; user handles start at 1.
	res, resErr := b.createTextureResource(texture.Solid(common.White))
	if resErr != nil {
		panic(resErr)
	}
	b.textures[texture.None] = res
	b.nextHandle = 1
}

func (b *wgpuRendererBackendImpl) createQuadVertexBuffer(label string, vertices []float32) *wgpu.Buffer {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(vertices) * 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	b.queue.WriteBuffer(buf, 0, common.SliceToBytes(vertices))
	return buf
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// Create the MSAA texture that the render pass draws into; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	} else {
		// No MSAA — the render pass draws directly to the swapchain view.
		b.msaaTextureView = nil
	}

	// Build the cached render pass descriptor for the main render target.
	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is
	// set per-frame to the swapchain view. When disabled, View is set
	// per-frame to the swapchain view and ResolveTarget remains nil.
	// Draw order is painter order from the sorted queue, so there is no
	// depth attachment.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard // Don't store MSAA data, just resolve
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: float64(b.clearColor.R),
					G: float64(b.clearColor.G),
					B: float64(b.clearColor.B),
					A: float64(b.clearColor.A),
				},
			},
		},
	}

	// Pipelines depend on the surface format, which is first known here.
	if b.pipelines[queue.KindSprite] == nil {
		b.createPipelines()
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = wgpu.Color{
			R: float64(c.R),
			G: float64(c.G),
			B: float64(c.B),
			A: float64(c.A),
		}
	}
}

// createPipelines builds the three primitive pipelines against the current
// surface format. All share the same bind group layouts and quad vertex
// layout; only the shader pair differs.
func (b *wgpuRendererBackendImpl) createPipelines() {
	sources := [queue.KindCount]string{
		queue.KindSprite: shader.SpriteWGSL,
		queue.KindRect:   shader.RectWGSL,
		queue.KindGlyph:  shader.GlyphWGSL,
	}

	for kind := range queue.KindCount {
		key := queue.PrimitiveKind(kind).String()
		p := pipeline.NewPipeline(key,
			pipeline.WithVertexShader(shader.NewShader(key+"_vs", shader.ShaderTypeVertex, sources[kind], shader.VertexEntryPoint)),
			pipeline.WithFragmentShader(shader.NewShader(key+"_fs", shader.ShaderTypeFragment, sources[kind], shader.FragmentEntryPoint)),
		)
		if err := b.registerRenderPipeline(p); err != nil {
			panic(err)
		}
		b.pipelines[kind] = p
	}
}

// registerRenderPipeline creates the GPU render pipeline for p using the
// backend's fixed bind group layouts and quad vertex layout, then stores it
// on the pipeline via SetRenderPipeline.
func (b *wgpuRendererBackendImpl) registerRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return fmt.Errorf("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return err
	}
	fs := vs
	if fragmentShader.Source() != vertexShader.Source() {
		fs, err = b.device.CreateShaderModule(fragmentShader.Module())
		if err != nil {
			return err
		}
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			b.textureLayout,
			b.cameraLayout,
			b.paramsLayout,
			b.instanceLayout,
		},
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: quadVertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    *b.surfaceFormat,
						WriteMask: p.WriteMask(),
					}
					if p.BlendEnabled() {
						state.Blend = p.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)

	return nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(stagingData common.TextureStagingData) (texture.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if stagingData.Width == 0 || stagingData.Height == 0 {
		return texture.None, &ResourceCreationError{
			Resource: "texture",
			Err:      fmt.Errorf("dimensions must be non-zero, got %dx%d", stagingData.Width, stagingData.Height),
		}
	}
	if stagingData.Width > maxTextureDim || stagingData.Height > maxTextureDim {
		return texture.None, &ResourceCreationError{
			Resource: "texture",
			Err:      fmt.Errorf("dimensions %dx%d exceed limit %d", stagingData.Width, stagingData.Height, maxTextureDim),
		}
	}
	if expected := int(stagingData.Width) * int(stagingData.Height) * 4; len(stagingData.Pixels) != expected {
		return texture.None, &ResourceCreationError{
			Resource: "texture",
			Err:      fmt.Errorf("pixel data is %d bytes, want %d for %dx%d RGBA8", len(stagingData.Pixels), expected, stagingData.Width, stagingData.Height),
		}
	}

	res, err := b.createTextureResource(stagingData)
	if err != nil {
		return texture.None, &ResourceCreationError{Resource: "texture", Err: err}
	}

	handle := b.nextHandle
	b.nextHandle++
	b.textures[handle] = res
	return handle, nil
}

func (b *wgpuRendererBackendImpl) createTextureResource(stagingData common.TextureStagingData) (*textureResource, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Texture Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}

	return &textureResource{texture: tex, view: view, bindGroup: bindGroup}, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return classifySurfaceError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return classifySurfaceError(err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// When MSAA is enabled, the MSAA texture is the color attachment View and
	// the swapchain view is the ResolveTarget. When MSAA is off, the swapchain
	// view is the color attachment View directly and ResolveTarget is nil.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) Submit(view common.Mat4, batches []batch.Batch, pool *batch.InstancePool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return fmt.Errorf("no frame in progress")
	}

	b.queue.WriteBuffer(b.cameraBuffer, 0, common.StructToBytes(&view))

	// Upload each kind's packed instance data in one write.
	for kind := range queue.KindCount {
		data := pool.Bytes(queue.PrimitiveKind(kind))
		if len(data) == 0 {
			continue
		}
		b.ensureInstanceCapacity(queue.PrimitiveKind(kind), uint64(len(data)))
		b.queue.WriteBuffer(b.instanceBuffers[kind], 0, data)
	}

	for _, bt := range batches {
		res, ok := b.textures[bt.Texture]
		if !ok {
			return fmt.Errorf("batch references texture %d: %w", bt.Texture, ErrTextureNotFound)
		}

		p := b.pipelines[bt.Kind]
		b.framePass.SetPipeline(p.Pipeline())
		b.framePass.SetBindGroup(0, res.bindGroup, nil)
		b.framePass.SetBindGroup(1, b.cameraBindGroup, nil)
		b.framePass.SetBindGroup(2, b.paramsBindGroups[bt.Kind], nil)
		b.framePass.SetBindGroup(3, b.instanceBindGroups[bt.Kind], nil)

		vb := b.unitQuadVertexBuffer
		if bt.Kind == queue.KindRect {
			vb = b.centeredQuadVertexBuffer
		}
		b.framePass.SetVertexBuffer(0, vb, 0, wgpu.WholeSize)
		b.framePass.SetIndexBuffer(b.quadIndexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(6, bt.Count, 0, 0, bt.First)
	}

	return nil
}

// ensureInstanceCapacity grows the kind's instance storage buffer to hold at
// least needed bytes. Buffers grow geometrically and never shrink; the bind
// group is recreated when the buffer is replaced.
func (b *wgpuRendererBackendImpl) ensureInstanceCapacity(kind queue.PrimitiveKind, needed uint64) {
	if b.instanceBufferCaps[kind] >= needed {
		return
	}

	newCap := b.instanceBufferCaps[kind]
	if newCap == 0 {
		newCap = 1 << 16
	}
	for newCap < needed {
		newCap *= 2
	}

	if b.instanceBindGroups[kind] != nil {
		b.instanceBindGroups[kind].Release()
	}
	if b.instanceBuffers[kind] != nil {
		b.instanceBuffers[kind].Release()
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("%s Instance Buffer", kind),
		Size:  newCap,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("%s Instance Bind Group", kind),
		Layout: b.instanceLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}

	b.instanceBuffers[kind] = buf
	b.instanceBufferCaps[kind] = newCap
	b.instanceBindGroups[kind] = bg
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return fmt.Errorf("no frame in progress")
	}

	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.surface.Present()
	b.releaseFrameSurface()

	return nil
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()

	for _, res := range b.textures {
		res.bindGroup.Release()
		res.view.Release()
		res.texture.Release()
	}
	b.textures = make(map[texture.Handle]*textureResource)

	for kind := range queue.KindCount {
		if b.instanceBindGroups[kind] != nil {
			b.instanceBindGroups[kind].Release()
			b.instanceBindGroups[kind] = nil
		}
		if b.instanceBuffers[kind] != nil {
			b.instanceBuffers[kind].Release()
			b.instanceBuffers[kind] = nil
		}
		if b.paramsBindGroups[kind] != nil {
			b.paramsBindGroups[kind].Release()
			b.paramsBindGroups[kind] = nil
		}
		if b.paramsBuffers[kind] != nil {
			b.paramsBuffers[kind].Release()
			b.paramsBuffers[kind] = nil
		}
	}

	for _, buf := range []*wgpu.Buffer{b.unitQuadVertexBuffer, b.centeredQuadVertexBuffer, b.quadIndexBuffer, b.cameraBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
	}
	if b.sampler != nil {
		b.sampler.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
}
