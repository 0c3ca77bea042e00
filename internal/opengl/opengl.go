// SPDX-License-Identifier: Unlicense OR MIT

// Package opengl implements the backend against desktop OpenGL 3.3
// core. It registers itself with the driver package at init time.
package opengl

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/kolunmi/cpc-gpu/internal/driver"
	"github.com/kolunmi/cpc-gpu/internal/gl"
)

func init() {
	driver.NewOpenGLDevice = newDevice
}

type objectKind int

const (
	objectProgram objectKind = iota
	objectBuffer
	objectVertexArray
	objectTexture
)

type destroyedObject struct {
	kind objectKind
	id   uint32
}

// device implements driver.Device over a live GL context. One device
// backs one Gpu.
type device struct {
	funcs gl.Functions

	nExtensions    int
	maxTextureSize int

	// framebufferStack holds one framebuffer name per pass depth plus
	// two scratch slots used as read/draw framebuffers during MSAA
	// resolves. Grown during compilation, never shrunk.
	framebufferStack []uint32

	// mu is the destroyed-objects lock. Never held across driver
	// calls.
	mu        sync.Mutex
	destroyed []destroyedObject
}

// currentGpu is the per-context-thread claim slot. Go has no usable
// thread locals; callers pin the context thread with LockOSThread, so a
// process-wide slot carries the same association the original kept in
// thread-local storage.
var currentGpu atomic.Pointer[driver.Gpu]

func newDevice(flags uint32, loader func(name string) unsafe.Pointer) (driver.Device, error) {
	return newDeviceWith(gl.NewFunctions(), flags, loader)
}

func newDeviceWith(funcs gl.Functions, flags uint32, loader func(name string) unsafe.Pointer) (driver.Device, error) {
	d := &device{funcs: funcs}

	if err := funcs.Init(loader); err != nil {
		return nil, d.glError(driver.ErrFailedInit, "Failed to load OpenGL extensions: %v", err)
	}

	d.nExtensions = funcs.GetInteger(gl.NUM_EXTENSIONS)
	driver.Debugf("GL: Loaded %d GL extensions", d.nExtensions)
	d.maxTextureSize = funcs.GetInteger(gl.MAX_TEXTURE_SIZE)
	driver.Debugf("GL: The max texture size is %d", d.maxTextureSize)

	if flags&driver.InitFlagUseDebugLayers != 0 {
		funcs.DebugMessageCallback(logDebugMessage)
		funcs.Enable(gl.DEBUG_OUTPUT)
		funcs.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
		driver.Debugf("GL: Enabled debug output")
	}

	funcs.DepthFunc(gl.LEQUAL)
	funcs.Enable(gl.DEPTH_TEST)
	funcs.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	funcs.Enable(gl.BLEND)
	funcs.CullFace(gl.BACK)
	funcs.FrontFace(gl.CCW)
	funcs.Enable(gl.CULL_FACE)
	funcs.Enable(gl.MULTISAMPLE)

	return d, nil
}

func (d *device) Threadsafe() bool { return false }

func (d *device) CurrentGpu() *driver.Gpu { return currentGpu.Load() }

func (d *device) SetCurrentGpu(g *driver.Gpu) {
	if g != nil {
		g.Ref()
	}
	if old := currentGpu.Swap(g); old != nil {
		old.Unref()
	}
}

var infoParams = map[string]gl.Enum{
	"vendor":                   gl.VENDOR,
	"renderer":                 gl.RENDERER,
	"version":                  gl.VERSION,
	"shading language version": gl.SHADING_LANGUAGE_VERSION,
}

func (d *device) GetInfo(param string) (string, error) {
	pname, ok := infoParams[param]
	if !ok {
		return "", fmt.Errorf("opengl: unrecognized info parameter %q", param)
	}
	return d.funcs.GetString(pname), nil
}

// Flush drains the deferred-destruction queue on the claim thread.
func (d *device) Flush() error {
	d.mu.Lock()
	objs := d.destroyed
	d.destroyed = nil
	d.mu.Unlock()

	for _, o := range objs {
		d.deleteObject(o)
	}
	return nil
}

func (d *device) deleteObject(o destroyedObject) {
	switch o.kind {
	case objectProgram:
		d.funcs.DeleteProgram(o.id)
	case objectBuffer:
		d.funcs.DeleteBuffer(o.id)
	case objectVertexArray:
		d.funcs.DeleteVertexArray(o.id)
	case objectTexture:
		d.funcs.DeleteTexture(o.id)
	}
}

func (d *device) destroyOnFlush(kind objectKind, id uint32) {
	if id == 0 {
		return
	}
	d.mu.Lock()
	d.destroyed = append(d.destroyed, destroyedObject{kind: kind, id: id})
	d.mu.Unlock()
}

func (d *device) FinishGpu() {
	d.funcs.DeleteFramebuffers(d.framebufferStack)
	d.framebufferStack = nil
	d.mu.Lock()
	objs := d.destroyed
	d.destroyed = nil
	d.mu.Unlock()
	for _, o := range objs {
		d.deleteObject(o)
	}
}

func (d *device) FinishShader(s *driver.Shader) {
	st, ok := s.Backend.(*shaderState)
	if !ok {
		return
	}
	d.destroyOnFlush(objectProgram, st.program)
	st.program = 0
}

func (d *device) FinishBuffer(b *driver.Buffer) {
	st, ok := b.Backend.(*bufferState)
	if !ok {
		return
	}
	d.destroyOnFlush(objectBuffer, st.vbo)
	d.destroyOnFlush(objectBuffer, st.ubo)
	d.destroyOnFlush(objectVertexArray, st.vao)
	st.vao, st.vbo, st.ubo = 0, 0, 0
}

func (d *device) FinishTexture(t *driver.Texture) {
	st, ok := t.Backend.(*textureState)
	if !ok {
		return
	}
	d.destroyOnFlush(objectTexture, st.id)
	st.id = 0
	if st.nonMSAA != nil {
		st.nonMSAA.Unref()
		st.nonMSAA = nil
	}
}

// glError builds a recoverable error carrying the drained glGetError
// state.
func (d *device) glError(code driver.ErrorCode, format string, args ...any) *driver.Error {
	var b strings.Builder
	fmt.Fprintf(&b, format, args...)
	b.WriteString("\nglGetError () BEGIN:\n")
	for idx := 0; ; idx++ {
		e := d.funcs.GetError()
		if e == gl.NO_ERROR {
			break
		}
		fmt.Fprintf(&b, "  %d: %s (0x%x)\n", idx, gl.ErrorName(e), uint32(e))
	}
	b.WriteString("glGetError () END")
	return &driver.Error{Code: code, Msg: b.String()}
}

func criticalUser(format string, args ...any) {
	driver.Criticalf("OpenGL Backend", "User Error: "+format, args...)
}

func logDebugMessage(source, typ, id, severity gl.Enum, message string) {
	name := func(e gl.Enum, table map[gl.Enum]string) string {
		if s, ok := table[e]; ok {
			return s
		}
		return fmt.Sprintf("0x%x", uint32(e))
	}
	driver.Debugf("GL: DIRECT GL MESSAGE (%s, %s, %s): %s",
		name(source, debugSources), name(typ, debugTypes), name(severity, debugSeverities), message)
}

var debugSources = map[gl.Enum]string{
	gl.DEBUG_SOURCE_API:             "GL_DEBUG_SOURCE_API",
	gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "GL_DEBUG_SOURCE_WINDOW_SYSTEM",
	gl.DEBUG_SOURCE_SHADER_COMPILER: "GL_DEBUG_SOURCE_SHADER_COMPILER",
	gl.DEBUG_SOURCE_THIRD_PARTY:     "GL_DEBUG_SOURCE_THIRD_PARTY",
	gl.DEBUG_SOURCE_APPLICATION:     "GL_DEBUG_SOURCE_APPLICATION",
	gl.DEBUG_SOURCE_OTHER:           "GL_DEBUG_SOURCE_OTHER",
}

var debugTypes = map[gl.Enum]string{
	gl.DEBUG_TYPE_ERROR:               "GL_DEBUG_TYPE_ERROR",
	gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "GL_DEBUG_TYPE_DEPRECATED_BEHAVIOR",
	gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "GL_DEBUG_TYPE_UNDEFINED_BEHAVIOR",
	gl.DEBUG_TYPE_PORTABILITY:         "GL_DEBUG_TYPE_PORTABILITY",
	gl.DEBUG_TYPE_PERFORMANCE:         "GL_DEBUG_TYPE_PERFORMANCE",
	gl.DEBUG_TYPE_MARKER:              "GL_DEBUG_TYPE_MARKER",
	gl.DEBUG_TYPE_PUSH_GROUP:          "GL_DEBUG_TYPE_PUSH_GROUP",
	gl.DEBUG_TYPE_POP_GROUP:           "GL_DEBUG_TYPE_POP_GROUP",
	gl.DEBUG_TYPE_OTHER:               "GL_DEBUG_TYPE_OTHER",
}

var debugSeverities = map[gl.Enum]string{
	gl.DEBUG_SEVERITY_LOW:          "GL_DEBUG_SEVERITY_LOW",
	gl.DEBUG_SEVERITY_MEDIUM:       "GL_DEBUG_SEVERITY_MEDIUM",
	gl.DEBUG_SEVERITY_HIGH:         "GL_DEBUG_SEVERITY_HIGH",
	gl.DEBUG_SEVERITY_NOTIFICATION: "GL_DEBUG_SEVERITY_NOTIFICATION",
}
