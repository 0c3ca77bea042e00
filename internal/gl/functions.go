// SPDX-License-Identifier: Unlicense OR MIT

package gl

import "unsafe"

// DebugProc receives decoded driver debug messages installed through
// Functions.DebugMessageCallback.
type DebugProc func(source, typ, id, severity Enum, message string)

// Functions is every GL entry point the backend issues. Locations are plain
// ints (-1 meaning invalid, as in GL); object names are raw uint32 handles
// with 0 meaning "no object".
type Functions interface {
	// Init loads the GL entry points. A nil loader means the binding's
	// platform loader is already linked in.
	Init(loader func(name string) unsafe.Pointer) error

	ActiveTexture(unit Enum)
	AttachShader(program, shader uint32)
	BindBuffer(target Enum, buf uint32)
	BindBufferBase(target Enum, index int, buf uint32)
	BindFramebuffer(target Enum, fb uint32)
	BindTexture(target Enum, tex uint32)
	BindVertexArray(array uint32)
	BlendFunc(sfactor, dfactor Enum)
	BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask uint32, filter Enum)
	BufferData(target Enum, data []byte, usage Enum)
	CheckFramebufferStatus(target Enum) Enum
	Clear(mask uint32)
	ClearColor(r, g, b, a float32)
	ColorMask(r, g, b, a bool)
	CompileShader(shader uint32)
	CreateProgram() uint32
	CreateShader(typ Enum) uint32
	CullFace(mode Enum)
	DebugMessageCallback(cb DebugProc)
	DeleteBuffer(buf uint32)
	DeleteFramebuffers(fbs []uint32)
	DeleteProgram(program uint32)
	DeleteShader(shader uint32)
	DeleteTexture(tex uint32)
	DeleteVertexArray(array uint32)
	DepthFunc(fn Enum)
	DepthMask(mask bool)
	Disable(cap Enum)
	DisableVertexAttribArray(loc int)
	DrawArrays(mode Enum, first, count int)
	DrawArraysInstanced(mode Enum, first, count, instances int)
	DrawBuffers(bufs []Enum)
	Enable(cap Enum)
	EnableVertexAttribArray(loc int)
	FramebufferTexture2D(target, attachment, textarget Enum, tex uint32, level int)
	FrontFace(dir Enum)
	GenBuffer() uint32
	GenFramebuffers(n int) []uint32
	GenTexture() uint32
	GenVertexArray() uint32
	GetActiveAttrib(program uint32, index int) (name string, size int, typ Enum)
	GetActiveUniform(program uint32, index int) (name string, size int, typ Enum)
	GetActiveUniformBlockiv(program uint32, index int, pname Enum) []int32
	GetError() Enum
	GetInteger(pname Enum) int
	GetProgramInfoLog(program uint32) string
	GetProgrami(program uint32, pname Enum) int
	GetShaderInfoLog(shader uint32) string
	GetShaderi(shader uint32, pname Enum) int
	GetString(pname Enum) string
	LinkProgram(program uint32)
	ShaderSource(shader uint32, src string)
	TexImage2D(target Enum, level int, internal Enum, width, height int, format, typ Enum, data []byte)
	TexImage2DMultisample(target Enum, samples int, internal Enum, width, height int, fixedLocations bool)
	TexParameteri(target, pname Enum, v int)
	TexParameteriv(target, pname Enum, vals []int32)
	Uniform1f(loc int, v float32)
	Uniform1i(loc int, v int32)
	Uniform1iv(loc int, vals []int32)
	Uniform1ui(loc int, v uint32)
	Uniform2fv(loc int, v [2]float32)
	Uniform3fv(loc int, v [3]float32)
	Uniform4fv(loc int, v [4]float32)
	UniformBlockBinding(program uint32, blockIndex, binding int)
	UniformMatrix4fv(loc int, m [16]float32)
	UseProgram(program uint32)
	VertexAttribDivisor(loc, divisor int)
	VertexAttribPointer(loc, size int, typ Enum, normalized bool, stride, offset int)
	Viewport(x, y, width, height int)
}

// ErrorName translates a glGetError tag into its symbolic form.
func ErrorName(err Enum) string {
	switch err {
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case STACK_OVERFLOW:
		return "GL_STACK_OVERFLOW"
	case STACK_UNDERFLOW:
		return "GL_STACK_UNDERFLOW"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	default:
		return "Error Not Recognized!"
	}
}
