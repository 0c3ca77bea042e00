// SPDX-License-Identifier: Unlicense OR MIT

package opengl

import (
	"fmt"

	"github.com/kolunmi/cpc-gpu/internal/driver"
	"github.com/kolunmi/cpc-gpu/internal/gl"
)

func toGLTest(fn driver.TestFunc) gl.Enum {
	switch fn {
	case driver.TestNever:
		return gl.NEVER
	case driver.TestAlways:
		return gl.ALWAYS
	case driver.TestLess:
		return gl.LESS
	case driver.TestLEqual:
		return gl.LEQUAL
	case driver.TestGreater:
		return gl.GREATER
	case driver.TestGEqual:
		return gl.GEQUAL
	case driver.TestEqual:
		return gl.EQUAL
	case driver.TestNotEqual:
		return gl.NOTEQUAL
	default:
		return gl.LEQUAL
	}
}

func toGLBlend(b driver.Blend) gl.Enum {
	switch b {
	case driver.BlendZero:
		return gl.ZERO
	case driver.BlendOne:
		return gl.ONE
	case driver.BlendSrcColor:
		return gl.SRC_COLOR
	case driver.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case driver.BlendDstColor:
		return gl.DST_COLOR
	case driver.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case driver.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case driver.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case driver.BlendDstAlpha:
		return gl.DST_ALPHA
	case driver.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case driver.BlendConstantColor:
		return gl.CONSTANT_COLOR
	case driver.BlendOneMinusConstantColor:
		return gl.ONE_MINUS_CONSTANT_COLOR
	case driver.BlendConstantAlpha:
		return gl.CONSTANT_ALPHA
	case driver.BlendOneMinusConstantAlpha:
		return gl.ONE_MINUS_CONSTANT_ALPHA
	case driver.BlendSrcAlphaSaturate:
		return gl.SRC_ALPHA_SATURATE
	case driver.BlendSrc1Color:
		return gl.SRC1_COLOR
	case driver.BlendOneMinusSrc1Color:
		return gl.ONE_MINUS_SRC1_COLOR
	case driver.BlendSrc1Alpha:
		return gl.SRC1_ALPHA
	case driver.BlendOneMinusSrc1Alpha:
		return gl.ONE_MINUS_SRC1_ALPHA
	default:
		return gl.ONE
	}
}

type dispatchState struct {
	cmds *driver.Commands
	// external is the framebuffer bound before dispatch began; passes
	// without targets draw into it.
	external uint32
	err      error
}

// Dispatch walks the compiled tree in pre-order. Pass setup runs when a
// pass's first child is reached, teardown when its last child
// completes; between sibling subtrees the pass framebuffer and program
// are rebound.
func (d *device) Dispatch(cmds *driver.Commands) error {
	d.Flush()

	if cmds.Debug.Enabled {
		cmds.Debug.Run = cmds.Debug.Run[:0]
	}

	st := &dispatchState{
		cmds:     cmds,
		external: uint32(d.funcs.GetInteger(gl.FRAMEBUFFER_BINDING)),
	}

	cmds.Instrs.Walk(func(n *driver.Instr) bool {
		return d.processNode(n, st)
	})

	return st.err
}

func (d *device) passFramebuffer(pass *driver.Instr, st *dispatchState) uint32 {
	if len(pass.Pass.Targets) == 0 {
		return st.external
	}
	return d.framebufferStack[pass.Depth]
}

func (d *device) processNode(n *driver.Instr, st *dispatchState) bool {
	if n.Kind == driver.InstrPass {
		return false
	}

	pass := n.Parent
	framebuffer := d.passFramebuffer(pass, st)
	blitReadFB := d.framebufferStack[pass.Depth+1]
	blitDrawFB := d.framebufferStack[pass.Depth+2]

	var prev *driver.Instr
	if n.Idx > 0 {
		prev = pass.Children[n.Idx-1]
	}
	last := n.Idx == len(pass.Children)-1

	if prev == nil {
		if !d.setupOrTeardown(framebuffer, blitReadFB, blitDrawFB, pass, st, false) {
			return true
		}
	} else if prev.Kind == driver.InstrPass {
		// A sibling subtree ran in between; rebind defensively.
		d.funcs.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
		d.funcs.UseProgram(passProgram(pass))
	}

	switch n.Kind {
	case driver.InstrVertices:
		d.drawVertices(n, pass.Pass.Shader, st)
	case driver.InstrBlit:
		if !d.blit(n, pass, framebuffer, blitReadFB, st) {
			return true
		}
	}

	if last {
		if !d.setupOrTeardown(framebuffer, blitReadFB, blitDrawFB, pass, st, true) {
			return true
		}
	}
	return false
}

func passProgram(pass *driver.Instr) uint32 {
	if pass.Pass.Shader == nil {
		return 0
	}
	return shaderStateOf(pass.Pass.Shader).program
}

func (d *device) setupOrTeardown(framebuffer, blitReadFB, blitDrawFB uint32, pass *driver.Instr, st *dispatchState, teardown bool) bool {
	p := pass.Pass
	program := passProgram(pass)

	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
	d.funcs.UseProgram(program)
	if !teardown {
		st.cmds.RecordRun(fmt.Sprintf("glBindFramebuffer (GL_FRAMEBUFFER, %d)", framebuffer))
		st.cmds.RecordRun(fmt.Sprintf("glUseProgram (%d)", program))
	}

	if p.Dest.Set {
		dest := p.Dest.Val
		d.funcs.Viewport(int(dest[0]), int(dest[1]), int(dest[2]), int(dest[3]))
	}

	mask := p.WriteMask.Val
	d.funcs.ColorMask(
		mask&driver.WriteMaskColorRed != 0,
		mask&driver.WriteMaskColorGreen != 0,
		mask&driver.WriteMaskColorBlue != 0,
		mask&driver.WriteMaskColorAlpha != 0)
	d.funcs.DepthMask(mask&driver.WriteMaskDepth != 0)

	if !teardown {
		d.funcs.DepthFunc(toGLTest(p.DepthFunc.Val))
		if p.ClockwiseFaces.Val {
			d.funcs.FrontFace(gl.CW)
		} else {
			d.funcs.FrontFace(gl.CCW)
		}
		if p.BackfaceCull.Val {
			d.funcs.Enable(gl.CULL_FACE)
		} else {
			d.funcs.Disable(gl.CULL_FACE)
		}
		if len(p.Targets) > 0 {
			d.funcs.BlendFunc(toGLBlend(p.Targets[0].SrcBlend), toGLBlend(p.Targets[0].DstBlend))
		}
	}

	colors := 0
	for i := range p.Targets {
		target := &p.Targets[i]
		ts := textureStateOf(target.Texture)
		textarget := gl.Enum(gl.TEXTURE_2D)
		if target.Texture.Init.MSAA > 0 {
			textarget = gl.TEXTURE_2D_MULTISAMPLE
		}
		var id uint32
		if !teardown {
			id = ts.id
		}
		if target.Texture.Init.Format == driver.FormatDepth {
			d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, textarget, id, 0)
		} else {
			d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+gl.Enum(colors), textarget, id, 0)
			colors++
		}
	}

	// Some implementations require at least one draw buffer.
	nBufs := len(p.Targets)
	if nBufs < 1 {
		nBufs = 1
	}
	if nBufs > 32 {
		nBufs = 32
	}
	drawBufs := make([]gl.Enum, nBufs)
	for i := range drawBufs {
		drawBufs[i] = gl.COLOR_ATTACHMENT0 + gl.Enum(i)
	}
	d.funcs.DrawBuffers(drawBufs)

	if !teardown {
		if status := d.funcs.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			st.err = d.glError(driver.ErrFailedTargetCreation, "Failed to complete framebuffer")
			return false
		}
		d.funcs.ClearColor(0, 0, 0, 0)
		d.funcs.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	}

	var shaderSt *shaderState
	if p.Shader != nil {
		shaderSt = shaderStateOf(p.Shader)
	}

	textures := 0
	for _, name := range p.Uniforms.Order {
		value := p.Uniforms.Get(name)
		if shaderSt == nil {
			break
		}
		idx := shaderSt.uniformIndex[name]
		if idx == 0 {
			continue
		}
		uniform := &shaderSt.uniforms[idx-1]

		switch value.Type {
		case driver.TypeTexture:
			unit := textures
			bindTexture := textureStateOf(value.Texture)
			if value.Texture.Init.MSAA > 0 {
				if !teardown && !d.resolveMSAA(value.Texture, framebuffer, program, blitReadFB, blitDrawFB, st) {
					return false
				}
				bindTexture = textureStateOf(bindTexture.nonMSAA)
			}

			target := gl.Enum(gl.TEXTURE_2D)
			if value.Texture.Init.Cubemap {
				target = gl.TEXTURE_CUBE_MAP
			}
			var id uint32
			if !teardown {
				id = bindTexture.id
			}
			d.funcs.ActiveTexture(gl.TEXTURE0 + gl.Enum(unit))
			d.funcs.BindTexture(target, id)
			d.funcs.Uniform1iv(uniform.location, []int32{int32(unit)})
			d.funcs.ActiveTexture(gl.TEXTURE0)
			textures++

		case driver.TypeBuffer:
			block := shaderSt.uniformBlocks[uniform.location]
			if block == 0 {
				continue
			}
			var ubo uint32
			if !teardown {
				ubo = bufferStateOf(value.Buffer).ubo
			}
			d.funcs.UniformBlockBinding(program, block-1, 0)
			d.funcs.BindBufferBase(gl.UNIFORM_BUFFER, 0, ubo)

		case driver.TypeBool:
			if !teardown {
				var v int32
				if value.B {
					v = gl.TRUE
				}
				d.funcs.Uniform1i(uniform.location, v)
			}
		case driver.TypeInt:
			if !teardown {
				d.funcs.Uniform1i(uniform.location, value.I)
			}
		case driver.TypeUInt:
			if !teardown {
				d.funcs.Uniform1ui(uniform.location, value.U)
			}
		case driver.TypeFloat:
			if !teardown {
				d.funcs.Uniform1f(uniform.location, value.F)
			}
		case driver.TypeVec2:
			if !teardown {
				d.funcs.Uniform2fv(uniform.location, value.V2)
			}
		case driver.TypeVec3:
			if !teardown {
				d.funcs.Uniform3fv(uniform.location, value.V3)
			}
		case driver.TypeVec4:
			if !teardown {
				d.funcs.Uniform4fv(uniform.location, value.V4)
			}
		case driver.TypeMat4:
			if !teardown {
				d.funcs.UniformMatrix4fv(uniform.location, value.M4)
			}
		}
	}

	return true
}

// resolveMSAA blits a multisample texture into its single-sample
// shadow, then restores the pass framebuffer and program.
func (d *device) resolveMSAA(tex *driver.Texture, framebuffer uint32, program, blitReadFB, blitDrawFB uint32, st *dispatchState) bool {
	ts := textureStateOf(tex)
	shadow := textureStateOf(ts.nonMSAA)

	attachment := gl.Enum(gl.COLOR_ATTACHMENT0)
	bufferBit := uint32(gl.COLOR_BUFFER_BIT)
	if tex.Init.Format == driver.FormatDepth {
		attachment = gl.DEPTH_ATTACHMENT
		bufferBit = gl.DEPTH_BUFFER_BIT
	}

	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, blitReadFB)
	d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D_MULTISAMPLE, ts.id, 0)
	if status := d.funcs.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		st.err = d.glError(driver.ErrFailedTargetCreation, "Failed to complete framebuffer")
		return false
	}

	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, blitDrawFB)
	d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, shadow.id, 0)
	if status := d.funcs.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		st.err = d.glError(driver.ErrFailedTargetCreation, "Failed to complete framebuffer")
		return false
	}

	d.funcs.BindFramebuffer(gl.READ_FRAMEBUFFER, blitReadFB)
	d.funcs.BindFramebuffer(gl.DRAW_FRAMEBUFFER, blitDrawFB)
	d.funcs.BlitFramebuffer(
		0, 0, tex.Init.Width, tex.Init.Height,
		0, 0, tex.Init.Width, tex.Init.Height,
		bufferBit, gl.NEAREST)
	st.cmds.RecordRun(fmt.Sprintf("glBlitFramebuffer (0, 0, %d, %d, 0, 0, %d, %d)",
		tex.Init.Width, tex.Init.Height, tex.Init.Width, tex.Init.Height))

	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, blitReadFB)
	d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D_MULTISAMPLE, 0, 0)
	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, blitDrawFB)
	d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, 0, 0)

	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
	d.funcs.UseProgram(program)
	return true
}

func segGLType(t driver.ValueType) gl.Enum {
	if t == driver.TypeFloat {
		return gl.FLOAT
	}
	return gl.UNSIGNED_BYTE
}

// drawVertices binds the first buffer's vertex array, points every
// layout segment at its shader attribute and issues the draw.
func (d *device) drawVertices(n *driver.Instr, shader *driver.Shader, st *dispatchState) {
	buffers := n.Vertices.Buffers
	if shader == nil {
		criticalUser("Vertices submitted without a shader in scope")
		return
	}
	shaderSt := shaderStateOf(shader)
	first := bufferStateOf(buffers[0])

	d.funcs.BindVertexArray(first.vao)

	maxLength := 0
	for _, b := range buffers {
		bs := bufferStateOf(b)
		d.funcs.BindBuffer(gl.ARRAY_BUFFER, bs.vbo)

		stride := 0
		for _, seg := range b.Spec {
			stride += seg.Size()
		}

		offset := 0
		for _, seg := range b.Spec {
			loc, ok := shaderSt.attributeIndex[seg.Name]
			if !ok {
				criticalUser("Attribute %q does not exist in shader", seg.Name)
				offset += seg.Size()
				continue
			}
			attribute := &shaderSt.attributes[loc]
			d.funcs.VertexAttribPointer(attribute.location, seg.Num, segGLType(seg.Type), false, stride, offset)
			d.funcs.VertexAttribDivisor(attribute.location, seg.InstanceRate)
			d.funcs.EnableVertexAttribArray(attribute.location)
			offset += seg.Size()
		}

		bs.length = len(b.Init.Data) / stride
		if bs.length > maxLength {
			maxLength = bs.length
		}
	}

	if n.Vertices.Instances > 1 {
		d.funcs.DrawArraysInstanced(gl.TRIANGLES, 0, maxLength, n.Vertices.Instances)
		st.cmds.RecordRun(fmt.Sprintf("glDrawArraysInstanced (GL_TRIANGLES, 0, %d, %d)",
			maxLength, n.Vertices.Instances))
	} else {
		d.funcs.DrawArrays(gl.TRIANGLES, 0, maxLength)
		st.cmds.RecordRun(fmt.Sprintf("glDrawArrays (GL_TRIANGLES, 0, %d)", maxLength))
	}

	for _, b := range buffers {
		bs := bufferStateOf(b)
		d.funcs.BindBuffer(gl.ARRAY_BUFFER, bs.vbo)
		for _, seg := range b.Spec {
			loc, ok := shaderSt.attributeIndex[seg.Name]
			if !ok {
				continue
			}
			d.funcs.DisableVertexAttribArray(shaderSt.attributes[loc].location)
		}
	}

	d.funcs.BindVertexArray(0)
}

// blit copies the source texture into the enclosing pass's dest rect.
func (d *device) blit(n *driver.Instr, pass *driver.Instr, framebuffer, blitReadFB uint32, st *dispatchState) bool {
	src := n.Blit.Src
	ts := textureStateOf(src)

	attachment := gl.Enum(gl.COLOR_ATTACHMENT0)
	bufferBit := uint32(gl.COLOR_BUFFER_BIT)
	if src.Init.Format == driver.FormatDepth {
		attachment = gl.DEPTH_ATTACHMENT
		bufferBit = gl.DEPTH_BUFFER_BIT
	}
	textarget := gl.Enum(gl.TEXTURE_2D)
	if src.Init.MSAA > 0 {
		textarget = gl.TEXTURE_2D_MULTISAMPLE
	}

	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, blitReadFB)
	d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, textarget, ts.id, 0)

	if status := d.funcs.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		st.err = d.glError(driver.ErrFailedTargetCreation, "Failed to complete framebuffer")
		return false
	}

	dest := pass.Pass.Dest.Val
	d.funcs.BindFramebuffer(gl.READ_FRAMEBUFFER, blitReadFB)
	d.funcs.BindFramebuffer(gl.DRAW_FRAMEBUFFER, framebuffer)
	d.funcs.BlitFramebuffer(
		0, 0, src.Init.Width, src.Init.Height,
		int(dest[0]), int(dest[1]), int(dest[0]+dest[2]), int(dest[1]+dest[3]),
		bufferBit, gl.NEAREST)
	st.cmds.RecordRun(fmt.Sprintf("glBlitFramebuffer (0, 0, %d, %d, %d, %d, %d, %d)",
		src.Init.Width, src.Init.Height, dest[0], dest[1], dest[0]+dest[2], dest[1]+dest[3]))

	d.funcs.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, 0, 0)
	d.funcs.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
	d.funcs.UseProgram(passProgram(pass))
	return true
}
