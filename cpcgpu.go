// SPDX-License-Identifier: Unlicense OR MIT

/*
Package cpcgpu abstracts the usage of a graphics API behind a
retained-mode plan/commands pipeline. A backend is selected once, at
creation of the master Gpu object; the currently supported backend is
OpenGL 3.3 core, with Vulkan reserved.

The library is not responsible for creating the graphics context. For
backends where contexts are thread-bound, pin the goroutine with
runtime.LockOSThread and pair every context switch with
Gpu.StealThisThread / Gpu.ReleaseThisThread.

Work is described by building a Plan: push nested groups of inherited
render state, append vertex submissions and blits, pop the groups, then
consume the plan with UnrefToCommands. Dispatching the resulting
Commands executes the compiled work against the bound context.

Every object is reference counted and holds a strong reference to its
Gpu. Driver handles whose last reference drops are destroyed at the
next Gpu.Flush on the claim thread, so references may be released from
any goroutine.
*/
package cpcgpu

import (
	"log/slog"
	"unsafe"

	"github.com/kolunmi/cpc-gpu/internal/driver"
	_ "github.com/kolunmi/cpc-gpu/internal/opengl"
)

// Core object types. See the package documentation for the lifecycle
// rules shared by all of them.
type (
	// Gpu is the main abstraction object through which a graphics API
	// is accessible.
	Gpu = driver.Gpu
	// Shader is user defined code that transforms data on the GPU.
	Shader = driver.Shader
	// Buffer is data uploaded to the GPU. Its first realized use fixes
	// its role.
	Buffer = driver.Buffer
	// Texture is an image on the GPU with immutable properties.
	Texture = driver.Texture
	// Plan is an outline of operations to be compiled by the backend.
	Plan = driver.Plan
	// Commands holds backend specific instructions ready for dispatch.
	Commands = driver.Commands

	// Value is the tagged union used for uniforms and state arguments.
	Value = driver.Value
	// ValueType discriminates Value variants.
	ValueType = driver.ValueType
	// DataSegment describes one component of a buffer layout.
	DataSegment = driver.DataSegment

	// Error is a recoverable backend error with a code and the drained
	// driver error state.
	Error = driver.Error
	// ErrorCode classifies recoverable backend failures.
	ErrorCode = driver.ErrorCode

	// TestFunc is a numerical comparison used for depth testing.
	TestFunc = driver.TestFunc
	// Blend is a blending factor.
	Blend = driver.Blend
	// State keys a property configurable through Plan.PushState.
	State = driver.State
	// Format is a pixel buffer format.
	Format = driver.Format
)

// Error codes.
const (
	ErrFailedInit             = driver.ErrFailedInit
	ErrFailedShaderGen        = driver.ErrFailedShaderGen
	ErrFailedShaderUniformSet = driver.ErrFailedShaderUniformSet
	ErrFailedBufferGen        = driver.ErrFailedBufferGen
	ErrFailedTextureGen       = driver.ErrFailedTextureGen
	ErrFailedTargetCreation   = driver.ErrFailedTargetCreation
)

// Initialization flags for New.
const (
	InitFlagBackendOpenGL  = driver.InitFlagBackendOpenGL
	InitFlagBackendVulkan  = driver.InitFlagBackendVulkan
	InitFlagUseDebugLayers = driver.InitFlagUseDebugLayers
	InitFlagNoThreadSafety = driver.InitFlagNoThreadSafety
	InitFlagNoFallback     = driver.InitFlagNoFallback
	InitFlagExitOnError    = driver.InitFlagExitOnError
	InitFlagLogErrors      = driver.InitFlagLogErrors
)

// Render pass write mask bits.
const (
	WriteMaskColorRed   = driver.WriteMaskColorRed
	WriteMaskColorGreen = driver.WriteMaskColorGreen
	WriteMaskColorBlue  = driver.WriteMaskColorBlue
	WriteMaskColorAlpha = driver.WriteMaskColorAlpha
	WriteMaskDepth      = driver.WriteMaskDepth

	WriteMaskRGB   = driver.WriteMaskRGB
	WriteMaskColor = driver.WriteMaskColor
	WriteMaskAll   = driver.WriteMaskAll
)

// Depth test functions.
const (
	TestNever    = driver.TestNever
	TestAlways   = driver.TestAlways
	TestLess     = driver.TestLess
	TestLEqual   = driver.TestLEqual
	TestGreater  = driver.TestGreater
	TestGEqual   = driver.TestGEqual
	TestEqual    = driver.TestEqual
	TestNotEqual = driver.TestNotEqual
)

// Blending modes.
const (
	BlendZero                  = driver.BlendZero
	BlendOne                   = driver.BlendOne
	BlendSrcColor              = driver.BlendSrcColor
	BlendOneMinusSrcColor      = driver.BlendOneMinusSrcColor
	BlendDstColor              = driver.BlendDstColor
	BlendOneMinusDstColor      = driver.BlendOneMinusDstColor
	BlendSrcAlpha              = driver.BlendSrcAlpha
	BlendOneMinusSrcAlpha      = driver.BlendOneMinusSrcAlpha
	BlendDstAlpha              = driver.BlendDstAlpha
	BlendOneMinusDstAlpha      = driver.BlendOneMinusDstAlpha
	BlendConstantColor         = driver.BlendConstantColor
	BlendOneMinusConstantColor = driver.BlendOneMinusConstantColor
	BlendConstantAlpha         = driver.BlendConstantAlpha
	BlendOneMinusConstantAlpha = driver.BlendOneMinusConstantAlpha
	BlendSrcAlphaSaturate      = driver.BlendSrcAlphaSaturate
	BlendSrc1Color             = driver.BlendSrc1Color
	BlendOneMinusSrc1Color     = driver.BlendOneMinusSrc1Color
	BlendSrc1Alpha             = driver.BlendSrc1Alpha
	BlendOneMinusSrc1Alpha     = driver.BlendOneMinusSrc1Alpha
)

// State keys for Plan.PushState.
const (
	StateTarget         = driver.StateTarget
	StateShader         = driver.StateShader
	StateUniform        = driver.StateUniform
	StateDest           = driver.StateDest
	StateWriteMask      = driver.StateWriteMask
	StateDepthFunc      = driver.StateDepthFunc
	StateClockwiseFaces = driver.StateClockwiseFaces
	StateBackfaceCull   = driver.StateBackfaceCull
)

// Pixel buffer formats.
const (
	FormatR8     = driver.FormatR8
	FormatRA8    = driver.FormatRA8
	FormatRGB8   = driver.FormatRGB8
	FormatRGBA8  = driver.FormatRGBA8
	FormatR32    = driver.FormatR32
	FormatRGB32  = driver.FormatRGB32
	FormatRGBA32 = driver.FormatRGBA32
)

// Value types.
const (
	TypeShader  = driver.TypeShader
	TypeBuffer  = driver.TypeBuffer
	TypeTexture = driver.TypeTexture
	TypeBool    = driver.TypeBool
	TypeInt     = driver.TypeInt
	TypeUInt    = driver.TypeUInt
	TypeFloat   = driver.TypeFloat
	TypePointer = driver.TypePointer
	TypeVec2    = driver.TypeVec2
	TypeVec3    = driver.TypeVec3
	TypeVec4    = driver.TypeVec4
	TypeMat4    = driver.TypeMat4
	TypeRect    = driver.TypeRect
	TypeKeyVal  = driver.TypeKeyVal
	TypeTuple2  = driver.TypeTuple2
	TypeTuple3  = driver.TypeTuple3
	TypeTuple4  = driver.TypeTuple4
)

// New creates a Gpu for the backend selected by flags. loader is a
// backend specific extension loader, or nil when linked against a
// loader shim.
func New(flags uint32, loader func(name string) unsafe.Pointer) (*Gpu, error) {
	return driver.NewGpu(flags, loader)
}

// SetLogger replaces the library logger. By default the library is
// silent. Pass nil to silence it again; safe for concurrent use.
func SetLogger(l *slog.Logger) { driver.SetLogger(l) }

// Logger returns the current library logger.
func Logger() *slog.Logger { return driver.Logger() }
