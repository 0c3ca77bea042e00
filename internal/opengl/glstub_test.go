// SPDX-License-Identifier: Unlicense OR MIT

package opengl

import (
	"fmt"
	"unsafe"

	"github.com/kolunmi/cpc-gpu/internal/gl"
)

// stubGL is a scripted gl.Functions for driving the backend without a
// live context. Reflection results for the next linked program come
// from the reflect field; every call is recorded for assertions.
type stubGL struct {
	calls  []string
	nextID uint32

	// reflect scripts the reflection of the next linked program.
	reflect  stubReflection
	programs map[uint32]stubReflection

	compileFail     bool
	compileInfoLog  string
	linkFail        bool
	linkInfoLog     string
	failFramebuffer bool

	errors []gl.Enum
}

type stubAttrib struct {
	name string
	size int
	typ  gl.Enum
}

type stubUniform struct {
	name string
	size int
	typ  gl.Enum
}

type stubReflection struct {
	attribs  []stubAttrib
	uniforms []stubUniform
	// blocks lists, per uniform block, the active uniform indices of
	// its members.
	blocks [][]int32
}

func newStubGL() *stubGL {
	return &stubGL{programs: make(map[uint32]stubReflection)}
}

func (s *stubGL) record(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *stubGL) calledWith(call string) bool {
	for _, c := range s.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (s *stubGL) id() uint32 {
	s.nextID++
	return s.nextID
}

func (s *stubGL) Init(func(string) unsafe.Pointer) error { return nil }

func (s *stubGL) ActiveTexture(unit gl.Enum) {
	s.record("ActiveTexture(%d)", unit-gl.TEXTURE0)
}

func (s *stubGL) AttachShader(program, shader uint32) {
	s.record("AttachShader(%d, %d)", program, shader)
}

func (s *stubGL) BindBuffer(target gl.Enum, buf uint32) {
	s.record("BindBuffer(0x%x, %d)", uint32(target), buf)
}

func (s *stubGL) BindBufferBase(target gl.Enum, index int, buf uint32) {
	s.record("BindBufferBase(0x%x, %d, %d)", uint32(target), index, buf)
}

func (s *stubGL) BindFramebuffer(target gl.Enum, fb uint32) {
	s.record("BindFramebuffer(0x%x, %d)", uint32(target), fb)
}

func (s *stubGL) BindTexture(target gl.Enum, tex uint32) {
	s.record("BindTexture(0x%x, %d)", uint32(target), tex)
}

func (s *stubGL) BindVertexArray(array uint32) {
	s.record("BindVertexArray(%d)", array)
}

func (s *stubGL) BlendFunc(sfactor, dfactor gl.Enum) {
	s.record("BlendFunc(0x%x, 0x%x)", uint32(sfactor), uint32(dfactor))
}

func (s *stubGL) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask uint32, filter gl.Enum) {
	s.record("BlitFramebuffer(%d, %d, %d, %d, %d, %d, %d, %d)", sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1)
}

func (s *stubGL) BufferData(target gl.Enum, data []byte, usage gl.Enum) {
	s.record("BufferData(0x%x, %d)", uint32(target), len(data))
}

func (s *stubGL) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	if s.failFramebuffer {
		return 0
	}
	return gl.FRAMEBUFFER_COMPLETE
}

func (s *stubGL) Clear(mask uint32) { s.record("Clear(0x%x)", mask) }

func (s *stubGL) ClearColor(r, g, b, a float32) {
	s.record("ClearColor(%g, %g, %g, %g)", r, g, b, a)
}

func (s *stubGL) ColorMask(r, g, b, a bool) {
	s.record("ColorMask(%t, %t, %t, %t)", r, g, b, a)
}

func (s *stubGL) CompileShader(shader uint32) { s.record("CompileShader(%d)", shader) }

func (s *stubGL) CreateProgram() uint32 {
	p := s.id()
	s.programs[p] = s.reflect
	return p
}

func (s *stubGL) CreateShader(typ gl.Enum) uint32 { return s.id() }

func (s *stubGL) CullFace(mode gl.Enum) { s.record("CullFace(0x%x)", uint32(mode)) }

func (s *stubGL) DebugMessageCallback(cb gl.DebugProc) {}

func (s *stubGL) DeleteBuffer(buf uint32) { s.record("DeleteBuffer(%d)", buf) }

func (s *stubGL) DeleteFramebuffers(fbs []uint32) {
	s.record("DeleteFramebuffers(%d)", len(fbs))
}

func (s *stubGL) DeleteProgram(program uint32) { s.record("DeleteProgram(%d)", program) }

func (s *stubGL) DeleteShader(shader uint32) {}

func (s *stubGL) DeleteTexture(tex uint32) { s.record("DeleteTexture(%d)", tex) }

func (s *stubGL) DeleteVertexArray(array uint32) { s.record("DeleteVertexArray(%d)", array) }

func (s *stubGL) DepthFunc(fn gl.Enum) { s.record("DepthFunc(0x%x)", uint32(fn)) }

func (s *stubGL) DepthMask(mask bool) { s.record("DepthMask(%t)", mask) }

func (s *stubGL) Disable(cap gl.Enum) { s.record("Disable(0x%x)", uint32(cap)) }

func (s *stubGL) DisableVertexAttribArray(loc int) {
	s.record("DisableVertexAttribArray(%d)", loc)
}

func (s *stubGL) DrawArrays(mode gl.Enum, first, count int) {
	s.record("DrawArrays(GL_TRIANGLES, %d, %d)", first, count)
}

func (s *stubGL) DrawArraysInstanced(mode gl.Enum, first, count, instances int) {
	s.record("DrawArraysInstanced(GL_TRIANGLES, %d, %d, %d)", first, count, instances)
}

func (s *stubGL) DrawBuffers(bufs []gl.Enum) { s.record("DrawBuffers(%d)", len(bufs)) }

func (s *stubGL) Enable(cap gl.Enum) { s.record("Enable(0x%x)", uint32(cap)) }

func (s *stubGL) EnableVertexAttribArray(loc int) {
	s.record("EnableVertexAttribArray(%d)", loc)
}

func (s *stubGL) FramebufferTexture2D(target, attachment, textarget gl.Enum, tex uint32, level int) {
	s.record("FramebufferTexture2D(0x%x, 0x%x, 0x%x, %d)",
		uint32(target), uint32(attachment), uint32(textarget), tex)
}

func (s *stubGL) FrontFace(dir gl.Enum) { s.record("FrontFace(0x%x)", uint32(dir)) }

func (s *stubGL) GenBuffer() uint32 { return s.id() }

func (s *stubGL) GenFramebuffers(n int) []uint32 {
	fbs := make([]uint32, n)
	for i := range fbs {
		fbs[i] = s.id()
	}
	s.record("GenFramebuffers(%d)", n)
	return fbs
}

func (s *stubGL) GenTexture() uint32 { return s.id() }

func (s *stubGL) GenVertexArray() uint32 { return s.id() }

func (s *stubGL) GetActiveAttrib(program uint32, index int) (string, int, gl.Enum) {
	a := s.programs[program].attribs[index]
	return a.name, a.size, a.typ
}

func (s *stubGL) GetActiveUniform(program uint32, index int) (string, int, gl.Enum) {
	u := s.programs[program].uniforms[index]
	return u.name, u.size, u.typ
}

func (s *stubGL) GetActiveUniformBlockiv(program uint32, index int, pname gl.Enum) []int32 {
	block := s.programs[program].blocks[index]
	switch pname {
	case gl.UNIFORM_BLOCK_ACTIVE_UNIFORMS:
		return []int32{int32(len(block))}
	case gl.UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES:
		return block
	}
	return nil
}

func (s *stubGL) GetError() gl.Enum {
	if len(s.errors) == 0 {
		return gl.NO_ERROR
	}
	e := s.errors[0]
	s.errors = s.errors[1:]
	return e
}

func (s *stubGL) GetInteger(pname gl.Enum) int {
	switch pname {
	case gl.NUM_EXTENSIONS:
		return 0
	case gl.MAX_TEXTURE_SIZE:
		return 4096
	case gl.FRAMEBUFFER_BINDING:
		return 0
	}
	return 0
}

func (s *stubGL) GetProgramInfoLog(program uint32) string { return s.linkInfoLog }

func (s *stubGL) GetProgrami(program uint32, pname gl.Enum) int {
	switch pname {
	case gl.LINK_STATUS:
		if s.linkFail {
			return gl.FALSE
		}
		return gl.TRUE
	case gl.ACTIVE_ATTRIBUTES:
		return len(s.programs[program].attribs)
	case gl.ACTIVE_UNIFORMS:
		return len(s.programs[program].uniforms)
	case gl.ACTIVE_UNIFORM_BLOCKS:
		return len(s.programs[program].blocks)
	}
	return 0
}

func (s *stubGL) GetShaderInfoLog(shader uint32) string { return s.compileInfoLog }

func (s *stubGL) GetShaderi(shader uint32, pname gl.Enum) int {
	if pname == gl.COMPILE_STATUS && s.compileFail {
		return gl.FALSE
	}
	return gl.TRUE
}

func (s *stubGL) GetString(pname gl.Enum) string {
	switch pname {
	case gl.VENDOR:
		return "stub vendor"
	case gl.RENDERER:
		return "stub renderer"
	case gl.VERSION:
		return "3.3.0 stub"
	case gl.SHADING_LANGUAGE_VERSION:
		return "3.30 stub"
	}
	return ""
}

func (s *stubGL) LinkProgram(program uint32) { s.record("LinkProgram(%d)", program) }

func (s *stubGL) ShaderSource(shader uint32, src string) {}

func (s *stubGL) TexImage2D(target gl.Enum, level int, internal gl.Enum, width, height int, format, typ gl.Enum, data []byte) {
	s.record("TexImage2D(0x%x, %d, %dx%d)", uint32(target), level, width, height)
}

func (s *stubGL) TexImage2DMultisample(target gl.Enum, samples int, internal gl.Enum, width, height int, fixed bool) {
	s.record("TexImage2DMultisample(%d, %dx%d)", samples, width, height)
}

func (s *stubGL) TexParameteri(target, pname gl.Enum, v int) {}

func (s *stubGL) TexParameteriv(target, pname gl.Enum, vals []int32) {}

func (s *stubGL) Uniform1f(loc int, v float32) { s.record("Uniform1f(%d, %g)", loc, v) }

func (s *stubGL) Uniform1i(loc int, v int32) { s.record("Uniform1i(%d, %d)", loc, v) }

func (s *stubGL) Uniform1iv(loc int, vals []int32) {
	s.record("Uniform1iv(%d, %v)", loc, vals)
}

func (s *stubGL) Uniform1ui(loc int, v uint32) { s.record("Uniform1ui(%d, %d)", loc, v) }

func (s *stubGL) Uniform2fv(loc int, v [2]float32) { s.record("Uniform2fv(%d)", loc) }

func (s *stubGL) Uniform3fv(loc int, v [3]float32) { s.record("Uniform3fv(%d)", loc) }

func (s *stubGL) Uniform4fv(loc int, v [4]float32) { s.record("Uniform4fv(%d)", loc) }

func (s *stubGL) UniformBlockBinding(program uint32, blockIndex, binding int) {
	s.record("UniformBlockBinding(%d, %d, %d)", program, blockIndex, binding)
}

func (s *stubGL) UniformMatrix4fv(loc int, m [16]float32) {
	s.record("UniformMatrix4fv(%d)", loc)
}

func (s *stubGL) UseProgram(program uint32) { s.record("UseProgram(%d)", program) }

func (s *stubGL) VertexAttribDivisor(loc, divisor int) {
	s.record("VertexAttribDivisor(%d, %d)", loc, divisor)
}

func (s *stubGL) VertexAttribPointer(loc, size int, typ gl.Enum, normalized bool, stride, offset int) {
	s.record("VertexAttribPointer(%d, %d, %d, %d)", loc, size, stride, offset)
}

func (s *stubGL) Viewport(x, y, width, height int) {
	s.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
}
