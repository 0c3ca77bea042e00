// SPDX-License-Identifier: Unlicense OR MIT

package opengl

import (
	"strings"

	"github.com/kolunmi/cpc-gpu/internal/driver"
	"github.com/kolunmi/cpc-gpu/internal/gl"
)

// shaderLocation is one reflected attribute or uniform.
type shaderLocation struct {
	name     string
	location int
	num      int
	typ      gl.Enum
}

// shaderState is the backend extension of a Shader: the linked program
// and its reflection tables, populated at first compile.
type shaderState struct {
	program uint32

	attributes     []shaderLocation
	attributeIndex map[string]int // name -> index into attributes

	uniforms     []shaderLocation
	uniformIndex map[string]int // name -> index + 1, 0 meaning absent

	// uniformBlocks maps a uniform's flattened location to its block
	// binding index + 1, 0 meaning "not in a block".
	uniformBlocks map[int]int
}

// bufferState is the backend extension of a Buffer. Exactly one of the
// vertex pair (vao, vbo) or the uniform handle (ubo) is ever non-zero;
// the first realized use fixes the role.
type bufferState struct {
	vao uint32
	vbo uint32
	ubo uint32

	length int
}

// textureState is the backend extension of a Texture.
type textureState struct {
	id uint32

	// nonMSAA shadows a multisample texture with a single-sample
	// sibling so it can be sampled as a uniform.
	nonMSAA *driver.Texture
}

func shaderStateOf(s *driver.Shader) *shaderState {
	st, ok := s.Backend.(*shaderState)
	if !ok {
		st = &shaderState{}
		s.Backend = st
	}
	return st
}

func bufferStateOf(b *driver.Buffer) *bufferState {
	st, ok := b.Backend.(*bufferState)
	if !ok {
		st = &bufferState{}
		b.Backend = st
	}
	return st
}

func textureStateOf(t *driver.Texture) *textureState {
	st, ok := t.Backend.(*textureState)
	if !ok {
		st = &textureState{}
		t.Backend = st
	}
	return st
}

func (d *device) compileShaderStage(code string, typ gl.Enum) (uint32, error) {
	shader := d.funcs.CreateShader(typ)
	d.funcs.ShaderSource(shader, code)
	d.funcs.CompileShader(shader)

	if d.funcs.GetShaderi(shader, gl.COMPILE_STATUS) != gl.TRUE {
		stage := "generic"
		switch typ {
		case gl.VERTEX_SHADER:
			stage = "vertex"
		case gl.FRAGMENT_SHADER:
			stage = "fragment"
		}
		info := d.funcs.GetShaderInfoLog(shader)
		d.funcs.DeleteShader(shader)
		return 0, d.glError(driver.ErrFailedShaderGen,
			"Failed to generate %s shader: GL: %s", stage, info)
	}
	return shader, nil
}

// ensureShader compiles and links the program on first use, then
// populates the reflection tables.
func (d *device) ensureShader(cmds *driver.Commands, s *driver.Shader) error {
	st := shaderStateOf(s)
	if st.program > 0 {
		return nil
	}

	vertex, err := d.compileShaderStage(s.Init.VertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	fragment, err := d.compileShaderStage(s.Init.FragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		d.funcs.DeleteShader(vertex)
		return err
	}

	program := d.funcs.CreateProgram()
	d.funcs.AttachShader(program, vertex)
	d.funcs.AttachShader(program, fragment)
	d.funcs.LinkProgram(program)
	d.funcs.DeleteShader(vertex)
	d.funcs.DeleteShader(fragment)

	if d.funcs.GetProgrami(program, gl.LINK_STATUS) != gl.TRUE {
		info := d.funcs.GetProgramInfoLog(program)
		d.funcs.DeleteProgram(program)
		return d.glError(driver.ErrFailedShaderGen,
			"Failed to link shader: GL: %s", info)
	}

	st.program = program
	cmds.RecordCompile("glLinkProgram (" + internalAddress + ")")

	nAttributes := d.funcs.GetProgrami(program, gl.ACTIVE_ATTRIBUTES)
	st.attributes = make([]shaderLocation, 0, nAttributes)
	st.attributeIndex = make(map[string]int, nAttributes)
	for i := 0; i < nAttributes; i++ {
		name, num, typ := d.funcs.GetActiveAttrib(program, i)
		st.attributes = append(st.attributes, shaderLocation{
			name:     name,
			location: i,
			num:      num,
			typ:      typ,
		})
		st.attributeIndex[name] = i
	}

	nUniforms := d.funcs.GetProgrami(program, gl.ACTIVE_UNIFORMS)
	st.uniforms = make([]shaderLocation, 0, nUniforms)
	st.uniformIndex = make(map[string]int, nUniforms)
	location := 0
	for i := 0; i < nUniforms; i++ {
		name, num, typ := d.funcs.GetActiveUniform(program, i)
		if num > 1 {
			// Arrays reflect as "name[0]".
			if bracket := strings.IndexByte(name, '['); bracket >= 0 {
				name = name[:bracket]
			}
		}
		st.uniforms = append(st.uniforms, shaderLocation{
			name:     name,
			location: location,
			num:      num,
			typ:      typ,
		})
		st.uniformIndex[name] = len(st.uniforms)
		location += num
	}

	nBlocks := d.funcs.GetProgrami(program, gl.ACTIVE_UNIFORM_BLOCKS)
	st.uniformBlocks = make(map[int]int)
	for i := 0; i < nBlocks; i++ {
		n := d.funcs.GetActiveUniformBlockiv(program, i, gl.UNIFORM_BLOCK_ACTIVE_UNIFORMS)
		if len(n) == 0 || n[0] == 0 {
			continue
		}
		indices := d.funcs.GetActiveUniformBlockiv(program, i, gl.UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES)
		for _, idx := range indices {
			if int(idx) < len(st.uniforms) {
				st.uniformBlocks[st.uniforms[idx].location] = i + 1
			}
		}
	}

	return nil
}

// ensureUniformBuffer realizes b in the uniform role.
func (d *device) ensureUniformBuffer(cmds *driver.Commands, b *driver.Buffer) error {
	st := bufferStateOf(b)
	if st.vao > 0 || st.vbo > 0 {
		criticalUser("Buffer previously initialized as a vertex buffer " +
			"erroneously being used as a uniform buffer")
		return driver.ErrUser
	}
	if st.ubo > 0 {
		return nil
	}

	ubo := d.funcs.GenBuffer()
	if ubo == 0 {
		return d.glError(driver.ErrFailedBufferGen,
			"Failed to generate uniform buffer object")
	}

	d.funcs.BindBuffer(gl.UNIFORM_BUFFER, ubo)
	d.funcs.BufferData(gl.UNIFORM_BUFFER, b.Init.Data, gl.STATIC_DRAW)
	d.funcs.BindBuffer(gl.UNIFORM_BUFFER, 0)

	st.ubo = ubo
	st.length = 0
	cmds.RecordCompile("glGenBuffers (1, " + internalAddress + ")")
	return nil
}

// ensureVertexBuffer realizes b in the vertex role, generating a vertex
// array and uploading the data. A layout spec is required.
func (d *device) ensureVertexBuffer(cmds *driver.Commands, b *driver.Buffer) error {
	st := bufferStateOf(b)
	if st.ubo > 0 {
		criticalUser("Buffer previously initialized as a uniform buffer " +
			"erroneously being used as a vertex buffer")
		return driver.ErrUser
	}
	if st.vao > 0 && st.vbo > 0 {
		return nil
	}

	if b.Spec == nil {
		criticalUser("Buffer needs a layout specification to be used as an attribute")
		return driver.ErrUser
	}

	vao := d.funcs.GenVertexArray()
	if vao == 0 {
		return d.glError(driver.ErrFailedBufferGen,
			"Failed to generate vertex array object")
	}
	vbo := d.funcs.GenBuffer()
	if vbo == 0 {
		d.funcs.DeleteVertexArray(vao)
		return d.glError(driver.ErrFailedBufferGen,
			"Failed to generate vertex buffer object")
	}

	d.funcs.BindBuffer(gl.ARRAY_BUFFER, vbo)
	d.funcs.BufferData(gl.ARRAY_BUFFER, b.Init.Data, gl.STATIC_DRAW)
	d.funcs.BindBuffer(gl.ARRAY_BUFFER, 0)

	st.vao = vao
	st.vbo = vbo
	st.length = len(b.Init.Data)
	cmds.RecordCompile("glGenVertexArrays (1, " + internalAddress + ")")
	return nil
}

type formatTriple struct {
	internal gl.Enum
	format   gl.Enum
	typ      gl.Enum
}

func tripleFor(f driver.Format) formatTriple {
	switch f {
	case driver.FormatR8:
		return formatTriple{gl.R8, gl.RED, gl.UNSIGNED_BYTE}
	case driver.FormatRA8:
		return formatTriple{gl.RG8, gl.RG, gl.UNSIGNED_BYTE}
	case driver.FormatRGB8:
		return formatTriple{gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE}
	case driver.FormatRGBA8:
		return formatTriple{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}
	case driver.FormatR32:
		return formatTriple{gl.R32F, gl.RED, gl.FLOAT}
	case driver.FormatRGB32:
		return formatTriple{gl.RGB32F, gl.RGB, gl.FLOAT}
	case driver.FormatRGBA32:
		return formatTriple{gl.RGBA32F, gl.RGBA, gl.FLOAT}
	default:
		return formatTriple{}
	}
}

// ensureTexture realizes t's driver texture on first use.
func (d *device) ensureTexture(cmds *driver.Commands, t *driver.Texture) error {
	st := textureStateOf(t)
	if st.id > 0 {
		return nil
	}

	id := d.funcs.GenTexture()
	if id == 0 {
		return d.glError(driver.ErrFailedTextureGen, "Failed to generate texture")
	}
	st.id = id
	cmds.RecordCompile("glGenTextures (1, " + internalAddress + ")")

	init := &t.Init

	if init.Format == driver.FormatDepth {
		target := gl.Enum(gl.TEXTURE_2D)
		if init.MSAA > 0 {
			target = gl.TEXTURE_2D_MULTISAMPLE
		}
		d.funcs.BindTexture(target, id)
		if init.MSAA > 0 {
			d.funcs.TexImage2DMultisample(target, init.MSAA,
				gl.DEPTH_COMPONENT, init.Width, init.Height, true)
		} else {
			d.funcs.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT,
				init.Width, init.Height, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		}
		d.funcs.BindTexture(target, 0)
		return nil
	}

	triple := tripleFor(init.Format)
	imageSize := init.Format.PixelSize() * init.Width * init.Height

	if init.Cubemap {
		d.funcs.BindTexture(gl.TEXTURE_CUBE_MAP, id)
		for i := 0; i < 6; i++ {
			face := init.Data[i*imageSize : (i+1)*imageSize]
			d.funcs.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+gl.Enum(i),
				0, triple.internal, init.Width, init.Height,
				triple.format, triple.typ, face)
		}
		d.funcs.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		d.funcs.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		d.funcs.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		d.funcs.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		d.funcs.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
		d.funcs.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
		return nil
	}

	if init.MSAA > 0 {
		d.funcs.BindTexture(gl.TEXTURE_2D_MULTISAMPLE, id)
		d.funcs.TexImage2DMultisample(gl.TEXTURE_2D_MULTISAMPLE, init.MSAA,
			triple.internal, init.Width, init.Height, true)
	} else {
		d.funcs.BindTexture(gl.TEXTURE_2D, id)
		mipWidth, mipHeight := init.Width, init.Height
		for i := 0; i < init.Mipmaps; i++ {
			d.funcs.TexImage2D(gl.TEXTURE_2D, i, triple.internal,
				mipWidth, mipHeight, triple.format, triple.typ, init.Data)

			if init.Format == driver.FormatR8 || init.Format == driver.FormatRA8 {
				swizzle := []int32{gl.RED, gl.RED, gl.RED, gl.ALPHA}
				d.funcs.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, swizzle)
			}

			mipWidth /= 2
			mipHeight /= 2
			if mipWidth < 1 {
				mipWidth = 1
			}
			if mipHeight < 1 {
				mipHeight = 1
			}
		}
		if init.Mipmaps > 1 {
			d.funcs.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
			d.funcs.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		}
	}

	d.funcs.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	d.funcs.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	d.funcs.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	d.funcs.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)

	if init.MSAA > 0 {
		d.funcs.BindTexture(gl.TEXTURE_2D_MULTISAMPLE, 0)
	} else {
		d.funcs.BindTexture(gl.TEXTURE_2D, 0)
	}
	return nil
}

const internalAddress = "[internal address]"
