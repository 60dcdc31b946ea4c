// Copyright 2024 The Voxen Authors. All rights reserved.

// Package driver defines a set of interfaces encompassing common GPU
// functionality. It models an explicit, Vulkan-class graphics/compute
// API without naming one: an implementation may layer over Vulkan,
// Direct3D 12, Metal, or a software simulation of the same semantics.
package driver

// GPU is the main interface to an underlying driver implementation.
// It is used to create other types and to execute commands.
// A GPU is obtained from a call to Driver.Open.
type GPU interface {
	// Driver returns the Driver that owns the GPU.
	Driver() Driver

	// NewQueue creates a command queue matching the given flags.
	// The exact-match queue family is returned if available,
	// else any queue whose flags are a superset of want.
	NewQueue(want QueueFlags) (Queue, error)

	// NewCmdBuffer creates a new command buffer from the
	// device's default queue.
	NewCmdBuffer() (CmdBuffer, error)

	// NewRenderPass creates a new render pass.
	NewRenderPass(att []Attachment, sub []Subpass) (RenderPass, error)

	// NewShaderCode creates a new shader code object from
	// a shader binary. The binary is not reflected here;
	// the object's Reflect result is whatever reflection
	// data the implementation has attached to it.
	NewShaderCode(data []byte) (ShaderCode, error)

	// NewDescHeap creates a new descriptor heap (a single
	// binding-set layout; storage for live copies is
	// allocated lazily by the heap's descriptor pool chain).
	NewDescHeap(ds []Descriptor) (DescHeap, error)

	// NewDescTable creates a new descriptor table.
	NewDescTable(dh []DescHeap) (DescTable, error)

	// NewPipeline creates a new pipeline.
	// state must be a pointer to a GraphState or a pointer
	// to a CompState.
	NewPipeline(state any) (Pipeline, error)

	// NewBuffer creates a new buffer.
	NewBuffer(size int64, visible bool, usg Usage) (Buffer, error)

	// NewImage creates a new image.
	NewImage(pf PixelFmt, size Dim3D, layers, levels, samples int, usg Usage) (Image, error)

	// NewSampler creates a new sampler.
	NewSampler(spln *Sampling) (Sampler, error)

	// NewEvent creates a new timeline semaphore, initialized
	// to value 0. Event is the sole synchronization primitive
	// this abstraction exposes.
	NewEvent() (Event, error)

	// Limits returns the implementation limits.
	// They are immutable for the lifetime of the GPU.
	Limits() Limits
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external
// memory that is not managed by GC, so Destroy must be called
// explicitly to ensure such memory is deallocated.
type Destroyer interface {
	Destroy()
}

// QueueFlags is a bitmask over the kinds of work a queue
// family supports.
type QueueFlags int

// Queue flags.
const (
	QCopy QueueFlags = 1 << iota
	QRender
	QCompute
)

// Queue wraps a single GPU queue. It produces command
// buffers bound to it and submits batches of them.
type Queue interface {
	Destroyer

	// Flags returns the capabilities of the queue.
	Flags() QueueFlags

	// NewCmdBuffer creates a new command buffer bound to
	// this queue.
	NewCmdBuffer() (CmdBuffer, error)

	// Submit commits a batch of command buffers for
	// execution. Wait/signal operations recorded in each
	// command buffer's encoders apply to the batch as a
	// whole, so the order of command buffers in cb is
	// meaningful.
	// cb cannot be reused for recording until the returned
	// *WorkItem's Done channel receives a value.
	Submit(cb []CmdBuffer) (*WorkItem, error)
}

// WorkItem represents one in-flight submission.
// It is produced by Queue.Submit and carries the fence
// used to detect completion; the fence arbiter (C1)
// invokes Done exactly once per WorkItem, then recycles
// the underlying fence.
type WorkItem struct {
	Work []CmdBuffer
	// Done receives the submission's completion error
	// (nil on success) exactly once, from the fence
	// arbiter's callback-dispatch thread.
	Done chan error
	// Custom is opaque storage for caller bookkeeping
	// (e.g., a frame-in-flight index).
	Custom any
}

// CmdBuffer is the interface that defines a command buffer.
// Commands are recorded into command buffers and later
// committed to a Queue for execution. Recording is split
// into logical blocks containing either rendering, compute
// or copy commands (C6); multiple logical blocks can be
// recorded into a single command buffer (C7). Usage:
//
// First, call Begin. Then, if it succeeds:
//
// To record commands for a render pass:
//  1. call BeginPass
//  2. call Set* methods to configure rendering state
//  3. call Draw* commands
//  4. call NextSubpass (if using multiple subpasses)
//  5. repeat 2-4 as needed
//  6. call EndPass
//
// To record compute commands:
//  1. call BeginWork
//  2. call Set* methods to configure compute state
//  3. call Dispatch commands
//  4. repeat 2-3 as needed
//  5. call EndWork
//
// To record copy commands:
//  1. call BeginBlit
//  2. call Copy*/Fill commands
//  3. call EndBlit
//
// Finally, call End and, if it succeeds, Queue.Submit.
// Begin* calls must not be nested, and must always be
// ended before another call to Begin* and prior to the
// final End call.
type CmdBuffer interface {
	Destroyer

	// Begin prepares the command buffer for recording.
	// It must be called before any command is recorded,
	// and again after the command buffer is submitted or
	// reset.
	Begin() error

	// BeginPass begins the first subpass of a render pass.
	// Draw commands within a subpass may run in parallel;
	// behavior across subpasses is defined at render-pass
	// creation.
	BeginPass(pass RenderPass, fb Framebuf, clear []ClearValue)

	// NextSubpass ends the current subpass and begins the
	// next one. Must not be called in the last subpass.
	NextSubpass()

	// EndPass ends the current render pass.
	EndPass()

	// BeginWork begins compute work. If wait is set,
	// compute work only starts once all previously
	// recorded commands in this command buffer finish.
	BeginWork(wait bool)

	// EndWork ends the current compute work.
	EndWork()

	// BeginBlit begins data transfer. If wait is set,
	// transfer only starts once all previously recorded
	// commands in this command buffer finish.
	BeginBlit(wait bool)

	// EndBlit ends the current data transfer.
	EndBlit()

	// SetPipeline sets the pipeline. There is a separate
	// binding point for each kind of pipeline.
	SetPipeline(pl Pipeline)

	// SetViewport sets the bounds of one or more viewports.
	SetViewport(vp []Viewport)

	// SetScissor sets one or more viewport scissor rects.
	SetScissor(sciss []Scissor)

	// SetBlendColor sets the constant blend color.
	SetBlendColor(r, g, b, a float32)

	// SetStencilRef sets the stencil reference value.
	SetStencilRef(value uint32)

	// SetCullMode requests primitive culling for
	// subsequent draws. Implementations may ignore it; the
	// vk implementation records nothing, so culling follows
	// the pipeline's RasterState.Cull.
	SetCullMode(mode CullMode)

	// SetFrontFacing requests a winding order for
	// subsequent draws. Implementations may ignore it; the
	// vk implementation records nothing.
	SetFrontFacing(clockwise bool)

	// SetDepthBias sets depth bias parameters for
	// subsequent draws.
	SetDepthBias(value, slope, clamp float32)

	// SetVertexBuf sets one or more vertex buffers.
	// off must be aligned to the size of the data format
	// specified in the bound pipeline's vertex input.
	SetVertexBuf(start int, buf []Buffer, off []int64)

	// SetIndexBuf sets the index buffer. off must be
	// aligned to 4 bytes.
	SetIndexBuf(format IndexFmt, buf Buffer, off int64)

	// SetDescTableGraph sets a descriptor table range for
	// graphics pipelines.
	SetDescTableGraph(table DescTable, start int, heapCopy []int)

	// SetDescTableComp sets a descriptor table range for
	// compute pipelines.
	SetDescTableComp(table DescTable, start int, heapCopy []int)

	// PushConstant records stages..stages+size of data at
	// offset into the push-constant block bound to the
	// current pipeline.
	PushConstant(stages Stage, offset int, data []byte)

	// Draw draws primitives. Must only be called during a
	// render pass.
	Draw(vertCount, instCount, baseVert, baseInst int)

	// DrawIndexed draws indexed primitives. Must only be
	// called during a render pass.
	DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int)

	// Dispatch dispatches compute thread groups. Must only
	// be called during compute work.
	Dispatch(grpCountX, grpCountY, grpCountZ int)

	// CopyBuffer copies data between buffers. Must only be
	// called during data transfer.
	CopyBuffer(param *BufferCopy)

	// CopyImage copies data between images. Must only be
	// called during data transfer.
	CopyImage(param *ImageCopy)

	// CopyBufToImg copies data from a buffer to an image.
	// Must only be called during data transfer.
	CopyBufToImg(param *BufImgCopy)

	// CopyImgToBuf copies data from an image to a buffer.
	// Must only be called during data transfer.
	CopyImgToBuf(param *BufImgCopy)

	// Fill fills a buffer range with copies of a byte
	// value. Must only be called during data transfer.
	// off and size must be aligned to 4 bytes.
	Fill(buf Buffer, off int64, value byte, size int64)

	// Barrier inserts a number of global barriers in the
	// command buffer.
	Barrier(b []Barrier)

	// Transition inserts a number of image layout
	// transitions in the command buffer.
	Transition(t []Transition)

	// WaitEvent records a wait on ev reaching at least
	// value before the named stage proceeds.
	WaitEvent(ev Event, value uint64, stage Sync)

	// SignalEvent records a signal of ev to value,
	// observed after the named stage completes.
	SignalEvent(ev Event, value uint64, stage Sync)

	// End ends command recording and prepares the command
	// buffer for submission. New recordings are not
	// allowed until the command buffer is submitted or
	// reset. On failure, the command buffer is reset.
	End() error

	// Reset discards all recorded commands.
	Reset() error
}

// Event is a timeline semaphore: its signaled value is a
// monotonically increasing integer, which allows multiple
// waiters and signalers to be ordered against it without
// the 1:1 restriction of a binary semaphore.
type Event interface {
	Destroyer

	// Value returns the event's current signaled value.
	Value() (uint64, error)

	// Wait blocks the calling goroutine until the event
	// reaches at least value, or until the channel done
	// (if non-nil) is closed/receives.
	Wait(value uint64, done <-chan struct{}) error
}

// BufferCopy describes a buffer-to-buffer copy.
type BufferCopy struct {
	From    Buffer
	FromOff int64
	To      Buffer
	ToOff   int64
	Size    int64
}

// ImageCopy describes an image-to-image copy.
type ImageCopy struct {
	From      Image
	FromOff   Off3D
	FromLayer int
	FromLevel int
	To        Image
	ToOff     Off3D
	ToLayer   int
	ToLevel   int
	Size      Dim3D
	Layers    int
}

// BufImgCopy describes a copy between a buffer and an
// image. BufOff must be aligned to 512 bytes. Stride[0]
// must be aligned to 256 bytes.
type BufImgCopy struct {
	Buf    Buffer
	BufOff int64
	// Stride specifies the addressing of image data in
	// the buffer, in pixels. Stride[0] is the row length,
	// Stride[1] is the image height.
	Stride [2]int64
	Img    Image
	ImgOff Off3D
	Layer  int
	Level  int
	Size   Dim3D
	// DepthCopy selects the depth (true) or stencil
	// (false) aspect when Img has a combined
	// depth/stencil format.
	DepthCopy bool
}

// Sync is the type of a synchronization scope.
type Sync int

// Synchronization scopes.
const (
	SVertexInput Sync = 1 << iota
	SVertexShading
	SFragmentShading
	SComputeShading
	SColorOutput
	SDSOutput
	SDraw
	SResolve
	SCopy
	SAll
	SNone Sync = 0
)

// Access is the type of a memory access scope.
type Access int

// Memory access scopes.
const (
	AVertexBufRead Access = 1 << iota
	AIndexBufRead
	AColorRead
	AColorWrite
	ADSRead
	ADSWrite
	AResolveRead
	AResolveWrite
	ACopyRead
	ACopyWrite
	AShaderRead
	AShaderWrite
	AAnyRead
	AAnyWrite
	ANone Access = 0
)

// Layout is the type of an image layout.
type Layout int

// Image layouts.
const (
	LUndefined Layout = iota
	LCommon
	LColorTarget
	LDSTarget
	LDSRead
	LResolveSrc
	LResolveDst
	LCopySrc
	LCopyDst
	LShaderRead
	LPresent
)

// Barrier represents a synchronization barrier.
type Barrier struct {
	SyncBefore   Sync
	SyncAfter    Sync
	AccessBefore Access
	AccessAfter  Access
}

// Transition represents a layout transition on a specific
// image subresource.
type Transition struct {
	Barrier

	LayoutBefore Layout
	LayoutAfter  Layout
	View         ImageView
}

// LoadOp is the type of an attachment's load operation.
type LoadOp int

// Load operations.
const (
	LDontCare LoadOp = iota
	LClear
	LLoad
)

// StoreOp is the type of an attachment's store operation.
type StoreOp int

// Store operations.
const (
	SDontCare StoreOp = iota
	SStore
)

// Attachment describes one render target of a render pass.
type Attachment struct {
	Format  PixelFmt
	Samples int
	Load    [2]LoadOp
	Store   [2]StoreOp
}

// Subpass defines a subpass of a render pass. Color, DS
// and MSR are indices in the render pass' attachment list
// indicating the render targets the subpass uses. Wait
// controls whether the subpass stalls on previous work.
type Subpass struct {
	Color []int
	DS    int
	MSR   []int
	Wait  bool
}

// RenderPass is the interface that defines a render pass
// into which draw commands operate.
type RenderPass interface {
	Destroyer

	// NewFB creates a new framebuffer. Each view in iv
	// corresponds to the attachment of the same index; a
	// view's format/samples must match. Views whose image
	// lacks URenderTarget usage cannot be used here. All
	// framebuffers created from a render pass must be
	// destroyed before the render pass itself.
	NewFB(iv []ImageView, width, height, layers int) (Framebuf, error)
}

// Framebuf is the interface that defines the render
// targets of a render pass.
type Framebuf interface {
	Destroyer
}

// ClearValue defines clear values for a render target.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// ShaderCode is the interface that defines a compiled
// shader binary for one or more programmable stages.
type ShaderCode interface {
	Destroyer

	// Reflect returns the entry points, resource bindings
	// and push-constant ranges reflected from the shader
	// binary. Reflection is assumed to be performed by an
	// external SPIR-V tool (out of scope, §1); this method
	// only exposes its result.
	Reflect() ShaderReflection
}

// ShaderReflection is the data a shader compiler/reflector
// produces: entry points, resource bindings, push-constant
// layout and vertex input attributes. Shader compilation
// itself is out of scope (§1); this module only consumes
// the result through this struct.
type ShaderReflection struct {
	Entries    []string
	Resources  []ShaderBindingLocation
	PushConsts []PushConstRange
	Inputs     []ShaderInput
}

// ShaderBindingLocation identifies a single resource slot
// reflected from a shader: a descriptor-table entry when
// Offset is 0, or a push-constant byte range otherwise.
type ShaderBindingLocation struct {
	Set     int
	Binding int
	Offset  int
}

// PushConstRange describes one push-constant byte range
// and the stages that read it.
type PushConstRange struct {
	Stages Stage
	Offset int
	Size   int
}

// ShaderInput describes one reflected vertex input
// location.
type ShaderInput struct {
	Location int
	Name     string
}

// ShaderFunc specifies a function within a shader binary.
type ShaderFunc struct {
	Code ShaderCode
	Name string
}

// Stage is a mask of programmable stages.
type Stage int

// Stages.
const (
	SVertex Stage = 1 << iota
	SFragment
	SCompute
)

// DescType is the type of a descriptor.
type DescType int

// Descriptor types.
const (
	DBuffer DescType = iota // Read/write buffer.
	DImage                  // Read/write image.
	DConstant               // Constant buffer.
	DTexture                // Sampled texture.
	DSampler                // Texture sampler.
)

// Descriptor describes one binding's worth of data for
// use in shaders.
type Descriptor struct {
	Type   DescType
	Stages Stage
	Nr     int
	Len    int
}

// DescHeap is the interface that defines a set of
// descriptors for use in programmable pipeline stages
// (one binding-set layout, C2). Storage for live copies
// is managed by the implementation's descriptor pool
// chain and grows geometrically as needed; this interface
// only exposes the logical "heap copy" index space.
type DescHeap interface {
	Destroyer

	// New creates enough storage for n copies of each
	// descriptor. All copies from a previous call to New
	// are invalidated unless n equals the current Count,
	// in which case it is a no-op. New(0) frees all
	// storage.
	New(n int) error

	// SetBuffer updates the buffer ranges referred to by
	// the given descriptor of the given heap copy.
	// The descriptor must be of type DBuffer or DConstant.
	// Buffer ranges must be aligned to 256 bytes.
	SetBuffer(cpy, nr, start int, buf []Buffer, off, size []int64)

	// SetImage updates the image views referred to by the
	// given descriptor of the given heap copy. The
	// descriptor must be of type DImage or DTexture.
	SetImage(cpy, nr, start int, iv []ImageView)

	// SetSampler updates the samplers referred to by the
	// given descriptor of the given heap copy. The
	// descriptor must be of type DSampler.
	SetSampler(cpy, nr, start int, splr []Sampler)

	// Count returns the number of heap copies created by
	// New.
	Count() int
}

// DescTable is the interface that defines the bindings
// between a number of descriptor heaps and the shaders in
// a pipeline.
type DescTable interface {
	Destroyer
}

// VertexFmt describes the format of a vertex input.
type VertexFmt int

// Vertex formats.
const (
	Int8 VertexFmt = iota
	Int8x2
	Int8x3
	Int8x4
	Int16
	Int16x2
	Int16x3
	Int16x4
	Int32
	Int32x2
	Int32x3
	Int32x4
	UInt8
	UInt8x2
	UInt8x3
	UInt8x4
	UInt16
	UInt16x2
	UInt16x3
	UInt16x4
	UInt32
	UInt32x2
	UInt32x3
	UInt32x4
	Float32
	Float32x2
	Float32x3
	Float32x4
)

// VertexIn describes a vertex input. Consecutive vertices
// are fetched Stride bytes apart. Each vertex input is a
// separate buffer binding; interleaved inputs are not
// supported. Nr/Name are shader-specific.
type VertexIn struct {
	Format VertexFmt
	Stride int
	Nr     int
	Name   string
}

// Topology is the type of primitive topology.
type Topology int

// Primitive topologies.
const (
	TPoint Topology = iota
	TLine
	TLnStrip
	TTriangle
	TTriStrip
)

// IndexFmt describes the format of index buffer data.
type IndexFmt int

// Index formats.
const (
	Index16 IndexFmt = 2
	Index32 IndexFmt = 4
)

// Viewport defines the bounds of a viewport.
type Viewport struct {
	X, Y, Width, Height, Znear, Zfar float32
}

// Scissor defines a scissor rectangle.
type Scissor struct {
	X, Y, Width, Height int
}

// CullMode determines primitive culling by facing.
type CullMode int

// Cull modes.
const (
	CNone CullMode = iota
	CFront
	CBack
)

// FillMode determines triangle rasterization fill.
type FillMode int

// Triangle fill modes.
const (
	FFill FillMode = iota
	FLines
)

// RasterState defines the rasterization state of a
// graphics pipeline.
type RasterState struct {
	Clockwise bool
	Cull      CullMode
	Fill      FillMode
	DepthBias bool
	BiasValue float32
	BiasSlope float32
	BiasClamp float32
}

// CmpFunc is the type of comparison functions.
type CmpFunc int

// Comparison functions.
const (
	CNever CmpFunc = iota
	CLess
	CEqual
	CLessEqual
	CGreater
	CNotEqual
	CGreaterEqual
	CAlways
)

// StencilOp is the type of stencil operations.
type StencilOp int

// Stencil operations.
const (
	SKeep StencilOp = iota
	SZero
	SReplace
	SIncClamp
	SDecClamp
	SInvert
	SIncWrap
	SDecWrap
)

// StencilT defines stencil test parameters for one face.
type StencilT struct {
	DSFail    [2]StencilOp
	Pass      StencilOp
	ReadMask  uint32
	WriteMask uint32
	Cmp       CmpFunc
}

// DSState defines the depth/stencil state of a graphics
// pipeline.
type DSState struct {
	DepthTest   bool
	DepthWrite  bool
	DepthCmp    CmpFunc
	StencilTest bool
	Front       StencilT
	Back        StencilT
}

// BlendOp is the type of blend operations.
type BlendOp int

// Blend operations.
const (
	BAdd BlendOp = iota
	BSubtract
	BRevSubtract
	BMin
	BMax
)

// BlendFac is the type of blend factors.
type BlendFac int

// Blend factors.
const (
	BZero BlendFac = iota
	BOne
	BSrcColor
	BInvSrcColor
	BSrcAlpha
	BInvSrcAlpha
	BDstColor
	BInvDstColor
	BDstAlpha
	BInvDstAlpha
	BSrcAlphaSaturated
	BBlendColor
	BInvBlendColor
)

// ColorMask is a color write mask.
type ColorMask int

// Color write masks.
const (
	CRed ColorMask = 1 << iota
	CGreen
	CBlue
	CAlpha
	CAll ColorMask = 1<<iota - 1
)

// ColorBlend defines one render target's blend
// parameters.
type ColorBlend struct {
	Blend     bool
	WriteMask ColorMask
	// [0] is for color, [1] is for alpha.
	Op     [2]BlendOp
	SrcFac [2]BlendFac
	DstFac [2]BlendFac
}

// BlendState defines the color blend state of a graphics
// pipeline.
type BlendState struct {
	IndependentBlend bool
	Color            []ColorBlend
}

// GraphState defines the combination of programmable and
// fixed stages of a graphics pipeline. The Pass/Subpass
// fields define the only subpass in which the pipeline is
// valid to use.
type GraphState struct {
	VertFunc ShaderFunc
	FragFunc ShaderFunc
	Desc     DescTable
	Input    []VertexIn
	Topology Topology
	Raster   RasterState
	Samples  int
	DS       DSState
	Blend    BlendState
	Pass     RenderPass
	Subpass  int
}

// CompState defines the state of a compute pipeline: a
// single compute shader plus the descriptor table
// describing resources accessible to it.
type CompState struct {
	Func ShaderFunc
	Desc DescTable
	// SpecValue, when SpecIndex >= 0, sets a single
	// 32-bit specialization constant (used to select
	// the raycast-data/visualizer variant of the
	// volume depth-layer compute shader).
	SpecIndex int
	SpecValue uint32
}

// Pipeline is the interface that defines a GPU pipeline.
type Pipeline interface {
	Destroyer
}

// Usage is a mask indicating valid uses for a resource.
type Usage int

// Usage flags for Buffer and Image.
const (
	UShaderRead Usage = 1 << iota
	UShaderWrite
	UShaderConst  // Buffer only.
	UShaderSample // Image only.
	UVertexData   // Buffer only.
	UIndexData    // Buffer only.
	URenderTarget // Image only.
	UGeneric      Usage = 1<<iota - 1
)

// Buffer is the interface that defines a GPU buffer.
// Its size is fixed; a larger buffer requires creating a
// new one and copying data explicitly.
type Buffer interface {
	Destroyer

	// Visible returns whether the buffer is host visible.
	Visible() bool

	// Bytes returns a slice of length Cap referring to the
	// underlying data, or nil if the buffer is not host
	// visible. The slice is valid for the buffer's
	// lifetime.
	Bytes() []byte

	// Cap returns the buffer's capacity in bytes, which
	// may exceed the size requested at creation. Immutable.
	Cap() int64
}

// PixelFmt describes the format of a pixel.
type PixelFmt int

// FInternal marks internal formats; client code must not
// create images using them.
const FInternal PixelFmt = 1 << 31

// IsInternal reports whether f is an internal format.
func (f PixelFmt) IsInternal() bool { return f&FInternal == FInternal }

// Pixel formats.
const (
	RGBA8Unorm PixelFmt = iota
	RGBA8Norm
	RGBA8sRGB
	BGRA8Unorm
	BGRA8sRGB
	RG8Unorm
	RG8Norm
	R8Unorm
	R8Norm
	RGBA16Float
	RG16Float
	R16Float
	RGBA32Float
	RG32Float
	R32Float
	RGB10A2Unorm
	RG11B10Float
	RGB9E5Float
	D16Unorm
	D32Float
	S8Uint
	D24UnormS8Uint
	D32FloatS8Uint
)

// Dim3D is a three-dimensional size.
type Dim3D struct{ Width, Height, Depth int }

// Off3D is a three-dimensional offset.
type Off3D struct{ X, Y, Z int }

// Image is the interface that defines a GPU image.
// Direct CPU access is not provided; copying data to an
// image requires a staging buffer.
type Image interface {
	Destroyer

	// NewView creates a new image view. Its type must be
	// valid for the image and the given parameters (e.g.,
	// a 3D view from a 2D image is invalid, as is an array
	// view from a single layer). All views of an image
	// must be destroyed before the image itself.
	NewView(typ ViewType, layer, layers, level, levels int) (ImageView, error)
}

// ViewType is the type of a resource view.
type ViewType int

// View types.
const (
	IView1D ViewType = iota
	IView2D
	IView3D
	IViewCube
	IView1DArray
	IView2DArray
	IViewCubeArray
	IView2DMS
	IView2DMSArray
)

// ImageView is the interface that defines a typed view of
// an Image. Implementations track the view's current
// Layout, last access scope and last pipeline stage under
// a per-view mutex; a transition is only recorded when the
// requested layout differs from the tracked one.
type ImageView interface {
	Destroyer

	// Layout returns the view's current image layout.
	Layout() Layout
}

// Filter is the type of sampler filters.
type Filter int

// Filters.
const (
	FNearest Filter = iota
	FLinear
	// FNoMipmap forces mip level 0; valid only as a
	// sampler's mip filter.
	FNoMipmap
)

// AddrMode is the type of sampler address modes.
type AddrMode int

// Address modes.
const (
	AWrap AddrMode = iota
	AMirror
	AClamp
)

// Sampler is the interface that defines an image sampler.
type Sampler interface {
	Destroyer
}

// Sampling describes image sampler state.
type Sampling struct {
	Min      Filter
	Mag      Filter
	Mipmap   Filter
	AddrU    AddrMode
	AddrV    AddrMode
	AddrW    AddrMode
	MaxAniso int
	Cmp      CmpFunc
	MinLOD   float32
	MaxLOD   float32
}

// Limits describes implementation limits, which may vary
// across drivers and devices.
type Limits struct {
	MaxImage1D   int
	MaxImage2D   int
	MaxImageCube int
	MaxImage3D   int
	MaxLayers    int

	MaxDescHeaps         int
	MaxDescBuffer        int
	MaxDescImage         int
	MaxDescConstant      int
	MaxDescTexture       int
	MaxDescSampler       int
	MaxDescBufferRange   int64
	MaxDescConstantRange int64

	MaxColorTargets int
	MaxRenderSize   [2]int
	MaxRenderLayers int
	MaxPointSize    float32
	MaxViewports    int

	MaxVertexIn   int
	MaxFragmentIn int

	MaxDispatch [3]int

	// ExtDynamicState3 reports whether the optional
	// VK_EXT_extended_dynamic_state3-class capability
	// (dynamic depth-clip/polygon-mode) is available.
	// Callers must never require it.
	ExtDynamicState3 bool
}
