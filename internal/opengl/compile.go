// SPDX-License-Identifier: Unlicense OR MIT

package opengl

import (
	"fmt"

	"github.com/kolunmi/cpc-gpu/internal/driver"
	"github.com/kolunmi/cpc-gpu/internal/gl"
)

// uniformTypesFor returns the GL uniform types a value variant may bind
// to. Buffers are special-cased against the uniform-block table.
func uniformTypesFor(t driver.ValueType) []gl.Enum {
	switch t {
	case driver.TypeTexture:
		return []gl.Enum{gl.SAMPLER_2D, gl.SAMPLER_CUBE}
	case driver.TypeBool:
		return []gl.Enum{gl.BOOL}
	case driver.TypeInt:
		return []gl.Enum{gl.INT}
	case driver.TypeUInt:
		return []gl.Enum{gl.UNSIGNED_INT}
	case driver.TypeFloat:
		return []gl.Enum{gl.FLOAT}
	case driver.TypeVec2:
		return []gl.Enum{gl.FLOAT_VEC2}
	case driver.TypeVec3:
		return []gl.Enum{gl.FLOAT_VEC3}
	case driver.TypeVec4:
		return []gl.Enum{gl.FLOAT_VEC4}
	case driver.TypeMat4:
		return []gl.Enum{gl.FLOAT_MAT4}
	default:
		return nil
	}
}

// expectedTypeFor reverse-maps a GL uniform type to the value variant
// that would satisfy it, for error messages.
func expectedTypeFor(glType gl.Enum) driver.ValueType {
	for t := driver.ValueType(1); t < driver.NTypes; t++ {
		for _, accepted := range uniformTypesFor(t) {
			if accepted == glType {
				return t
			}
		}
	}
	return 0
}

// Compile runs the ensure pass over the instruction tree and grows the
// framebuffer stack to cover the tree's height plus two scratch slots.
func (d *device) Compile(cmds *driver.Commands) error {
	var ferr error

	cmds.Instrs.Walk(func(n *driver.Instr) bool {
		switch n.Kind {
		case driver.InstrPass:
			pass := n.Pass
			if pass.Shader != nil {
				if err := d.ensureShader(cmds, pass.Shader); err != nil {
					ferr = err
					return true
				}
			}
			for i := range pass.Targets {
				if err := d.ensureTexture(cmds, pass.Targets[i].Texture); err != nil {
					ferr = err
					return true
				}
			}
			for _, name := range pass.Uniforms.Order {
				if err := d.validateUniform(cmds, name, pass.Uniforms.Get(name), n); err != nil {
					ferr = err
					return true
				}
			}
			for name := range pass.Attributes {
				if err := d.validateAttribute(name, n); err != nil {
					ferr = err
					return true
				}
			}
		case driver.InstrVertices:
			for _, b := range n.Vertices.Buffers {
				if err := d.ensureVertexBuffer(cmds, b); err != nil {
					ferr = err
					return true
				}
			}
		case driver.InstrBlit:
			if err := d.ensureTexture(cmds, n.Blit.Src); err != nil {
				ferr = err
				return true
			}
		}
		return false
	})

	// Two extra slots serve as the scratch read/draw framebuffers for
	// blits and MSAA resolves.
	depth := cmds.Instrs.MaxHeight() + 2
	if depth > len(d.framebufferStack) {
		grown := d.funcs.GenFramebuffers(depth - len(d.framebufferStack))
		for _, fb := range grown {
			if fb == 0 {
				return d.glError(driver.ErrFailedTargetCreation,
					"Failed to generate framebuffer")
			}
		}
		d.framebufferStack = append(d.framebufferStack, grown...)
		cmds.RecordCompile(fmt.Sprintf("glGenFramebuffers (%d, %s)", len(grown), internalAddress))
	}

	return ferr
}

// validateUniform checks name/value against the nearest enclosing
// shader's reflection, materializing referenced textures and uniform
// buffers on success.
func (d *device) validateUniform(cmds *driver.Commands, name string, value *driver.Value, node *driver.Instr) error {
	for n := node; n != nil; n = n.Parent {
		shader := n.Pass.Shader
		if shader == nil {
			continue
		}
		st := shaderStateOf(shader)

		idx := st.uniformIndex[name]
		if idx == 0 {
			return d.glError(driver.ErrFailedShaderUniformSet,
				"Uniform %q does not exist in shader", name)
		}
		uniform := &st.uniforms[idx-1]

		if value.Type == driver.TypeBuffer {
			if st.uniformBlocks[uniform.location] == 0 {
				return d.glError(driver.ErrFailedShaderUniformSet,
					"Submitted value type does not match shader type for uniform %q: "+
						"expected %s, got BUFFER",
					name, driver.TypeName(expectedTypeFor(uniform.typ)))
			}
			return d.ensureUniformBuffer(cmds, value.Buffer)
		}

		match := false
		for _, accepted := range uniformTypesFor(value.Type) {
			if accepted == uniform.typ {
				match = true
				break
			}
		}
		if !match {
			expected := expectedTypeFor(uniform.typ)
			if expected == 0 {
				return d.glError(driver.ErrFailedShaderUniformSet,
					"The type of uniform %q is not currently supported.", name)
			}
			return d.glError(driver.ErrFailedShaderUniformSet,
				"Submitted value type does not match shader type for uniform %q: "+
					"expected %s, got %s",
				name, driver.TypeName(expected), driver.TypeName(value.Type))
		}

		if value.Type == driver.TypeTexture {
			if err := d.ensureTexture(cmds, value.Texture); err != nil {
				return err
			}
			if value.Texture.Init.MSAA > 0 {
				// Multisample textures cannot be sampled directly; a
				// single-sample shadow receives a resolve at each use.
				ts := textureStateOf(value.Texture)
				if ts.nonMSAA == nil {
					ts.nonMSAA = driver.NewShadowTexture(value.Texture)
					if err := d.ensureTexture(cmds, ts.nonMSAA); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	return d.glError(driver.ErrFailedShaderUniformSet,
		"Uniform %q has no shader in scope", name)
}

// validateAttribute checks that the nearest enclosing shader declares
// the hinted attribute name.
func (d *device) validateAttribute(name string, node *driver.Instr) error {
	for n := node; n != nil; n = n.Parent {
		shader := n.Pass.Shader
		if shader == nil {
			continue
		}
		st := shaderStateOf(shader)
		if _, ok := st.attributeIndex[name]; !ok {
			return d.glError(driver.ErrFailedShaderUniformSet,
				"Attribute %q does not exist in shader", name)
		}
		return nil
	}

	return d.glError(driver.ErrFailedShaderUniformSet,
		"Attribute %q has no shader in scope", name)
}
