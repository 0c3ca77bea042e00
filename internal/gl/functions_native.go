// SPDX-License-Identifier: Unlicense OR MIT

package gl

import (
	"strings"
	"unsafe"

	glow "github.com/go-gl/gl/v3.3-core/gl"
)

// NewFunctions returns a Functions backed by the go-gl 3.3 core binding.
// A context must be current on the calling thread before Init is called.
func NewFunctions() Functions {
	return funcs{}
}

type funcs struct{}

func (funcs) Init(loader func(name string) unsafe.Pointer) error {
	if loader != nil {
		return glow.InitWithProcAddrFunc(loader)
	}
	return glow.Init()
}

func (funcs) ActiveTexture(unit Enum) { glow.ActiveTexture(uint32(unit)) }

func (funcs) AttachShader(program, shader uint32) { glow.AttachShader(program, shader) }

func (funcs) BindBuffer(target Enum, buf uint32) { glow.BindBuffer(uint32(target), buf) }

func (funcs) BindBufferBase(target Enum, index int, buf uint32) {
	glow.BindBufferBase(uint32(target), uint32(index), buf)
}

func (funcs) BindFramebuffer(target Enum, fb uint32) { glow.BindFramebuffer(uint32(target), fb) }

func (funcs) BindTexture(target Enum, tex uint32) { glow.BindTexture(uint32(target), tex) }

func (funcs) BindVertexArray(array uint32) { glow.BindVertexArray(array) }

func (funcs) BlendFunc(sfactor, dfactor Enum) { glow.BlendFunc(uint32(sfactor), uint32(dfactor)) }

func (funcs) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask uint32, filter Enum) {
	glow.BlitFramebuffer(
		int32(sx0), int32(sy0), int32(sx1), int32(sy1),
		int32(dx0), int32(dy0), int32(dx1), int32(dy1),
		mask, uint32(filter))
}

// ptr is glow.Ptr tolerant of nil and empty slices.
func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return glow.Ptr(data)
}

func (funcs) BufferData(target Enum, data []byte, usage Enum) {
	glow.BufferData(uint32(target), len(data), ptr(data), uint32(usage))
}

func (funcs) CheckFramebufferStatus(target Enum) Enum {
	return Enum(glow.CheckFramebufferStatus(uint32(target)))
}

func (funcs) Clear(mask uint32) { glow.Clear(mask) }

func (funcs) ClearColor(r, g, b, a float32) { glow.ClearColor(r, g, b, a) }

func (funcs) ColorMask(r, g, b, a bool) { glow.ColorMask(r, g, b, a) }

func (funcs) CompileShader(shader uint32) { glow.CompileShader(shader) }

func (funcs) CreateProgram() uint32 { return glow.CreateProgram() }

func (funcs) CreateShader(typ Enum) uint32 { return glow.CreateShader(uint32(typ)) }

func (funcs) CullFace(mode Enum) { glow.CullFace(uint32(mode)) }

func (funcs) DebugMessageCallback(cb DebugProc) {
	glow.DebugMessageCallback(func(source, typ, id, severity uint32, length int32, message string, user unsafe.Pointer) {
		cb(Enum(source), Enum(typ), Enum(id), Enum(severity), message)
	}, nil)
}

func (funcs) DeleteBuffer(buf uint32) { glow.DeleteBuffers(1, &buf) }

func (funcs) DeleteFramebuffers(fbs []uint32) {
	if len(fbs) == 0 {
		return
	}
	glow.DeleteFramebuffers(int32(len(fbs)), &fbs[0])
}

func (funcs) DeleteProgram(program uint32) { glow.DeleteProgram(program) }

func (funcs) DeleteShader(shader uint32) { glow.DeleteShader(shader) }

func (funcs) DeleteTexture(tex uint32) { glow.DeleteTextures(1, &tex) }

func (funcs) DeleteVertexArray(array uint32) { glow.DeleteVertexArrays(1, &array) }

func (funcs) DepthFunc(fn Enum) { glow.DepthFunc(uint32(fn)) }

func (funcs) DepthMask(mask bool) { glow.DepthMask(mask) }

func (funcs) Disable(cap Enum) { glow.Disable(uint32(cap)) }

func (funcs) DisableVertexAttribArray(loc int) { glow.DisableVertexAttribArray(uint32(loc)) }

func (funcs) DrawArrays(mode Enum, first, count int) {
	glow.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (funcs) DrawArraysInstanced(mode Enum, first, count, instances int) {
	glow.DrawArraysInstanced(uint32(mode), int32(first), int32(count), int32(instances))
}

func (funcs) DrawBuffers(bufs []Enum) {
	raw := make([]uint32, len(bufs))
	for i, b := range bufs {
		raw[i] = uint32(b)
	}
	glow.DrawBuffers(int32(len(raw)), &raw[0])
}

func (funcs) Enable(cap Enum) { glow.Enable(uint32(cap)) }

func (funcs) EnableVertexAttribArray(loc int) { glow.EnableVertexAttribArray(uint32(loc)) }

func (funcs) FramebufferTexture2D(target, attachment, textarget Enum, tex uint32, level int) {
	glow.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(textarget), tex, int32(level))
}

func (funcs) FrontFace(dir Enum) { glow.FrontFace(uint32(dir)) }

func (funcs) GenBuffer() uint32 {
	var buf uint32
	glow.GenBuffers(1, &buf)
	return buf
}

func (funcs) GenFramebuffers(n int) []uint32 {
	fbs := make([]uint32, n)
	if n > 0 {
		glow.GenFramebuffers(int32(n), &fbs[0])
	}
	return fbs
}

func (funcs) GenTexture() uint32 {
	var tex uint32
	glow.GenTextures(1, &tex)
	return tex
}

func (funcs) GenVertexArray() uint32 {
	var array uint32
	glow.GenVertexArrays(1, &array)
	return array
}

func (funcs) GetActiveAttrib(program uint32, index int) (string, int, Enum) {
	var buf [256]byte
	var length, size int32
	var typ uint32
	glow.GetActiveAttrib(program, uint32(index), int32(len(buf)-1), &length, &size, &typ, &buf[0])
	return string(buf[:length]), int(size), Enum(typ)
}

func (funcs) GetActiveUniform(program uint32, index int) (string, int, Enum) {
	var buf [256]byte
	var length, size int32
	var typ uint32
	glow.GetActiveUniform(program, uint32(index), int32(len(buf)-1), &length, &size, &typ, &buf[0])
	return string(buf[:length]), int(size), Enum(typ)
}

func (funcs) GetActiveUniformBlockiv(program uint32, index int, pname Enum) []int32 {
	switch pname {
	case UNIFORM_BLOCK_ACTIVE_UNIFORMS:
		var n int32
		glow.GetActiveUniformBlockiv(program, uint32(index), uint32(pname), &n)
		return []int32{n}
	case UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES:
		var n int32
		glow.GetActiveUniformBlockiv(program, uint32(index), UNIFORM_BLOCK_ACTIVE_UNIFORMS, &n)
		if n == 0 {
			return nil
		}
		indices := make([]int32, n)
		glow.GetActiveUniformBlockiv(program, uint32(index), uint32(pname), &indices[0])
		return indices
	default:
		var v int32
		glow.GetActiveUniformBlockiv(program, uint32(index), uint32(pname), &v)
		return []int32{v}
	}
}

func (funcs) GetError() Enum { return Enum(glow.GetError()) }

func (funcs) GetInteger(pname Enum) int {
	var v int32
	glow.GetIntegerv(uint32(pname), &v)
	return int(v)
}

func (funcs) GetProgramInfoLog(program uint32) string {
	var length int32
	glow.GetProgramiv(program, INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := make([]byte, length+1)
	glow.GetProgramInfoLog(program, length, nil, &log[0])
	return strings.TrimRight(string(log[:length]), "\x00")
}

func (funcs) GetProgrami(program uint32, pname Enum) int {
	var v int32
	glow.GetProgramiv(program, uint32(pname), &v)
	return int(v)
}

func (funcs) GetShaderInfoLog(shader uint32) string {
	var length int32
	glow.GetShaderiv(shader, INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := make([]byte, length+1)
	glow.GetShaderInfoLog(shader, length, nil, &log[0])
	return strings.TrimRight(string(log[:length]), "\x00")
}

func (funcs) GetShaderi(shader uint32, pname Enum) int {
	var v int32
	glow.GetShaderiv(shader, uint32(pname), &v)
	return int(v)
}

func (funcs) GetString(pname Enum) string {
	return glow.GoStr(glow.GetString(uint32(pname)))
}

func (funcs) LinkProgram(program uint32) { glow.LinkProgram(program) }

func (funcs) ShaderSource(shader uint32, src string) {
	csrc, free := glow.Strs(src + "\x00")
	defer free()
	glow.ShaderSource(shader, 1, csrc, nil)
}

func (funcs) TexImage2D(target Enum, level int, internal Enum, width, height int, format, typ Enum, data []byte) {
	glow.TexImage2D(uint32(target), int32(level), int32(internal), int32(width), int32(height), 0,
		uint32(format), uint32(typ), ptr(data))
}

func (funcs) TexImage2DMultisample(target Enum, samples int, internal Enum, width, height int, fixedLocations bool) {
	glow.TexImage2DMultisample(uint32(target), int32(samples), uint32(internal), int32(width), int32(height), fixedLocations)
}

func (funcs) TexParameteri(target, pname Enum, v int) {
	glow.TexParameteri(uint32(target), uint32(pname), int32(v))
}

func (funcs) TexParameteriv(target, pname Enum, vals []int32) {
	glow.TexParameteriv(uint32(target), uint32(pname), &vals[0])
}

func (funcs) Uniform1f(loc int, v float32) { glow.Uniform1f(int32(loc), v) }

func (funcs) Uniform1i(loc int, v int32) { glow.Uniform1i(int32(loc), v) }

func (funcs) Uniform1iv(loc int, vals []int32) {
	glow.Uniform1iv(int32(loc), int32(len(vals)), &vals[0])
}

func (funcs) Uniform1ui(loc int, v uint32) { glow.Uniform1ui(int32(loc), v) }

func (funcs) Uniform2fv(loc int, v [2]float32) { glow.Uniform2fv(int32(loc), 1, &v[0]) }

func (funcs) Uniform3fv(loc int, v [3]float32) { glow.Uniform3fv(int32(loc), 1, &v[0]) }

func (funcs) Uniform4fv(loc int, v [4]float32) { glow.Uniform4fv(int32(loc), 1, &v[0]) }

func (funcs) UniformBlockBinding(program uint32, blockIndex, binding int) {
	glow.UniformBlockBinding(program, uint32(blockIndex), uint32(binding))
}

func (funcs) UniformMatrix4fv(loc int, m [16]float32) {
	glow.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (funcs) UseProgram(program uint32) { glow.UseProgram(program) }

func (funcs) VertexAttribDivisor(loc, divisor int) {
	glow.VertexAttribDivisor(uint32(loc), uint32(divisor))
}

func (funcs) VertexAttribPointer(loc, size int, typ Enum, normalized bool, stride, offset int) {
	glow.VertexAttribPointerWithOffset(uint32(loc), int32(size), uint32(typ), normalized, int32(stride), uintptr(offset))
}

func (funcs) Viewport(x, y, width, height int) {
	glow.Viewport(int32(x), int32(y), int32(width), int32(height))
}
