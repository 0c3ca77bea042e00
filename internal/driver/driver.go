// SPDX-License-Identifier: Unlicense OR MIT

// Package driver holds the backend-neutral core of the rendering
// abstraction: the value model, the resource objects and their
// initialization descriptors, the plan builder, compiled commands, and
// the Device interface every backend implements. Backends register a
// constructor at init time; the public package selects one from the
// flags passed to New.
package driver

import (
	"errors"
	"unsafe"
)

// ErrorCode classifies recoverable backend failures.
type ErrorCode int

const (
	// ErrFailedInit means the main GPU object could not be initialized,
	// usually due to failed extension loading.
	ErrFailedInit ErrorCode = iota
	// ErrFailedShaderGen covers shader compilation and linking issues.
	ErrFailedShaderGen
	// ErrFailedShaderUniformSet covers uniforms that do not exist or
	// whose submitted value type mismatches the shader.
	ErrFailedShaderUniformSet
	// ErrFailedBufferGen means a buffer object could not be generated.
	ErrFailedBufferGen
	// ErrFailedTextureGen means a texture could not be generated.
	ErrFailedTextureGen
	// ErrFailedTargetCreation means an underlying object of a render
	// target failed to generate or the framebuffer was incomplete.
	ErrFailedTargetCreation
)

// Error is a recoverable backend error. The message carries the drained
// driver error state at the time of failure.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// ErrUser marks backend failures caused by incorrect API usage. They are
// logged, never surfaced as recoverable errors.
var ErrUser = errors.New("user error")

// Initialization flags for NewGpu.
const (
	InitFlagBackendOpenGL uint32 = 1 << iota
	InitFlagBackendVulkan
	InitFlagUseDebugLayers
	InitFlagNoThreadSafety
	InitFlagNoFallback
	InitFlagExitOnError
	InitFlagLogErrors
)

// Render pass write mask bits.
const (
	WriteMaskColorRed uint32 = 1 << iota
	WriteMaskColorGreen
	WriteMaskColorBlue
	WriteMaskColorAlpha
	WriteMaskDepth

	WriteMaskRGB   = WriteMaskColorRed | WriteMaskColorGreen | WriteMaskColorBlue
	WriteMaskColor = WriteMaskRGB | WriteMaskColorAlpha
	WriteMaskAll   = WriteMaskColor | WriteMaskDepth
)

// TestFunc is a numerical comparison used for depth testing.
type TestFunc int

const (
	testFunc0 TestFunc = iota

	TestNever
	TestAlways
	TestLess
	TestLEqual
	TestGreater
	TestGEqual
	TestEqual
	TestNotEqual

	NTestFuncs
)

// Blend is a blending factor applied to component writes.
type Blend int

const (
	blend0 Blend = iota

	BlendZero
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendConstantColor
	BlendOneMinusConstantColor
	BlendConstantAlpha
	BlendOneMinusConstantAlpha
	BlendSrcAlphaSaturate
	BlendSrc1Color
	BlendOneMinusSrc1Color
	BlendSrc1Alpha
	BlendOneMinusSrc1Alpha

	NBlends
)

// State keys for Plan.PushState.
type State int

const (
	state0 State = iota

	StateTarget
	StateShader
	StateUniform
	StateDest
	StateWriteMask
	StateDepthFunc
	StateClockwiseFaces
	StateBackfaceCull

	NStates
)

// Format is a pixel buffer format.
type Format int

// FormatDepth marks depth-only textures. It is not accepted by the
// public texture constructors.
const FormatDepth Format = -1

const (
	format0 Format = iota

	FormatR8
	FormatRA8
	FormatRGB8
	FormatRGBA8
	FormatR32
	FormatRGB32
	FormatRGBA32

	NFormats
)

// PixelSize returns the per-pixel byte size of f.
func (f Format) PixelSize() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRA8:
		return 2
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	case FormatR32:
		return 4
	case FormatRGB32:
		return 12
	case FormatRGBA32:
		return 16
	default:
		return 0
	}
}

// Device is the backend vtable. One Device instance backs one Gpu; all
// lifecycle, compilation and dispatch calls are forwarded through it.
type Device interface {
	// Threadsafe reports whether the backend needs no claim discipline.
	Threadsafe() bool
	// CurrentGpu returns the Gpu claimed by the context thread, and
	// SetCurrentGpu replaces it. The slot is owned by the backend.
	CurrentGpu() *Gpu
	SetCurrentGpu(*Gpu)

	GetInfo(param string) (string, error)
	// Flush drains the deferred-destruction queue. Must run on the
	// claim thread.
	Flush() error

	// Finish hooks release backend state when the last reference to an
	// object drops. The shader, buffer and texture hooks only queue
	// driver handles; the actual driver calls happen at the next Flush.
	// FinishGpu deletes the framebuffers and drains the queue at once.
	FinishGpu()
	FinishShader(*Shader)
	FinishBuffer(*Buffer)
	FinishTexture(*Texture)

	// Compile validates and materializes the resources referenced by
	// the instruction tree held by cmds.
	Compile(cmds *Commands) error
	// Dispatch executes previously compiled commands against the
	// currently bound context.
	Dispatch(cmds *Commands) error
}

// NewOpenGLDevice is set by the OpenGL backend package at init time.
var NewOpenGLDevice func(flags uint32, loader func(name string) unsafe.Pointer) (Device, error)
