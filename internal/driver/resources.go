// SPDX-License-Identifier: Unlicense OR MIT

package driver

import "sync/atomic"

// DataSegment is one component of a buffer's contiguous interleaved
// layout. InstanceRate 0 applies the segment per vertex; a rate n >= 1
// advances it once every n instances.
type DataSegment struct {
	Name         string
	Type         ValueType
	Num          int
	InstanceRate int
}

// Size returns the byte width of the segment.
func (s DataSegment) Size() int {
	if s.Type == TypeFloat {
		return s.Num * 4
	}
	return s.Num
}

// Shader is user defined code that transforms data on the GPU. The
// sources are compiled lazily, at first use by a compiled plan.
type Shader struct {
	refs atomic.Int32
	gpu  *Gpu

	Init struct {
		VertexSrc   string
		FragmentSrc string
	}

	// Backend carries the backend's compiled program state.
	Backend any
}

// Buffer is data uploaded to the GPU. Its first realized use fixes its
// role (vertex attribute source or uniform block); the other role is
// rejected afterwards.
type Buffer struct {
	refs atomic.Int32
	gpu  *Gpu

	Spec []DataSegment

	Init struct {
		Data []byte
	}

	Backend any
}

// Texture is an image on the GPU. Dimensions, format and sample count
// are immutable after creation.
type Texture struct {
	refs atomic.Int32
	gpu  *Gpu

	Init struct {
		Cubemap bool
		Data    []byte
		Width   int
		Height  int
		Format  Format
		Mipmaps int
		MSAA    int
	}

	Backend any
}

func (s *Shader) Gpu() *Gpu  { return s.gpu }
func (b *Buffer) Gpu() *Gpu  { return b.gpu }
func (t *Texture) Gpu() *Gpu { return t.gpu }

func (s *Shader) Ref() *Shader {
	if s == nil {
		Criticalf("Shader.Ref", "nil receiver")
		return nil
	}
	s.refs.Add(1)
	return s
}

func (s *Shader) Unref() {
	if s == nil {
		Criticalf("Shader.Unref", "nil receiver")
		return
	}
	if s.refs.Add(-1) == 0 {
		s.gpu.impl.FinishShader(s)
		s.gpu.Unref()
	}
}

func (b *Buffer) Ref() *Buffer {
	if b == nil {
		Criticalf("Buffer.Ref", "nil receiver")
		return nil
	}
	b.refs.Add(1)
	return b
}

func (b *Buffer) Unref() {
	if b == nil {
		Criticalf("Buffer.Unref", "nil receiver")
		return
	}
	if b.refs.Add(-1) == 0 {
		b.gpu.impl.FinishBuffer(b)
		b.gpu.Unref()
	}
}

func (t *Texture) Ref() *Texture {
	if t == nil {
		Criticalf("Texture.Ref", "nil receiver")
		return nil
	}
	t.refs.Add(1)
	return t
}

func (t *Texture) Unref() {
	if t == nil {
		Criticalf("Texture.Unref", "nil receiver")
		return
	}
	if t.refs.Add(-1) == 0 {
		t.gpu.impl.FinishTexture(t)
		t.gpu.Unref()
	}
}

// NewShader creates a shader from vertex and fragment GLSL sources.
func (g *Gpu) NewShader(vertexSrc, fragmentSrc string) *Shader {
	if g == nil || vertexSrc == "" || fragmentSrc == "" {
		Criticalf("Gpu.NewShader", "nil receiver or empty shader source")
		return nil
	}
	s := &Shader{gpu: g.Ref()}
	s.refs.Store(1)
	s.Init.VertexSrc = vertexSrc
	s.Init.FragmentSrc = fragmentSrc
	return s
}

func cloneSpec(spec []DataSegment) []DataSegment {
	if spec == nil {
		return nil
	}
	dup := make([]DataSegment, len(spec))
	copy(dup, spec)
	return dup
}

// NewBuffer creates a buffer with a copy of data. The layout spec is
// required for vertex-role use.
func (g *Gpu) NewBuffer(data []byte, spec []DataSegment) *Buffer {
	if g == nil || len(data) == 0 {
		Criticalf("Gpu.NewBuffer", "nil receiver or empty data")
		return nil
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	return g.newBuffer(dup, spec)
}

// NewBufferTake is NewBuffer without the copy; ownership of data moves
// to the buffer.
func (g *Gpu) NewBufferTake(data []byte, spec []DataSegment) *Buffer {
	if g == nil || len(data) == 0 {
		Criticalf("Gpu.NewBufferTake", "nil receiver or empty data")
		return nil
	}
	return g.newBuffer(data, spec)
}

func (g *Gpu) newBuffer(data []byte, spec []DataSegment) *Buffer {
	b := &Buffer{gpu: g.Ref(), Spec: cloneSpec(spec)}
	b.refs.Store(1)
	b.Init.Data = data
	return b
}

func validTextureArgs(width, height int, format Format, mipmaps, msaa int) bool {
	return width > 0 && height > 0 &&
		format > format0 && format < NFormats &&
		mipmaps >= 0 && msaa >= 0
}

// NewTexture creates a 2D texture with a copy of data. data may be nil
// for an uninitialized texture, e.g. a render target.
func (g *Gpu) NewTexture(data []byte, width, height int, format Format, mipmaps, msaa int) *Texture {
	if g == nil || !validTextureArgs(width, height, format, mipmaps, msaa) {
		Criticalf("Gpu.NewTexture", "nil receiver or invalid texture parameters")
		return nil
	}
	var dup []byte
	if data != nil {
		dup = make([]byte, len(data))
		copy(dup, data)
	}
	return g.newTexture(dup, false, width, height, format, mipmaps, msaa)
}

// NewTextureTake is NewTexture without the copy.
func (g *Gpu) NewTextureTake(data []byte, width, height int, format Format, mipmaps, msaa int) *Texture {
	if g == nil || len(data) == 0 || !validTextureArgs(width, height, format, mipmaps, msaa) {
		Criticalf("Gpu.NewTextureTake", "nil receiver or invalid texture parameters")
		return nil
	}
	return g.newTexture(data, false, width, height, format, mipmaps, msaa)
}

// NewCubemap creates a cubemap from six face images of edge length
// faceEdge stored back to back, in the order positive-X, negative-X,
// positive-Y, negative-Y, positive-Z, negative-Z.
func (g *Gpu) NewCubemap(data []byte, faceEdge int, format Format) *Texture {
	if g == nil || len(data) == 0 || !validTextureArgs(faceEdge, faceEdge, format, 0, 0) {
		Criticalf("Gpu.NewCubemap", "nil receiver or invalid cubemap parameters")
		return nil
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	return g.newTexture(dup, true, faceEdge, faceEdge, format, 0, 0)
}

// NewCubemapTake is NewCubemap without the copy.
func (g *Gpu) NewCubemapTake(data []byte, faceEdge int, format Format) *Texture {
	if g == nil || len(data) == 0 || !validTextureArgs(faceEdge, faceEdge, format, 0, 0) {
		Criticalf("Gpu.NewCubemapTake", "nil receiver or invalid cubemap parameters")
		return nil
	}
	return g.newTexture(data, true, faceEdge, faceEdge, format, 0, 0)
}

// NewDepthTexture creates a texture capable only of holding a depth
// component.
func (g *Gpu) NewDepthTexture(width, height, msaa int) *Texture {
	if g == nil || width <= 0 || height <= 0 || msaa < 0 {
		Criticalf("Gpu.NewDepthTexture", "nil receiver or invalid dimensions")
		return nil
	}
	t := &Texture{gpu: g.Ref()}
	t.refs.Store(1)
	t.Init.Width = width
	t.Init.Height = height
	t.Init.Format = FormatDepth
	t.Init.MSAA = msaa
	return t
}

func (g *Gpu) newTexture(data []byte, cubemap bool, width, height int, format Format, mipmaps, msaa int) *Texture {
	t := &Texture{gpu: g.Ref()}
	t.refs.Store(1)
	t.Init.Cubemap = cubemap
	t.Init.Data = data
	t.Init.Width = width
	t.Init.Height = height
	t.Init.Format = format
	t.Init.Mipmaps = mipmaps
	t.Init.MSAA = msaa
	return t
}

// NewShadowTexture creates the single-sample sibling used when an MSAA
// texture is sampled as a uniform. Backend use only.
func NewShadowTexture(src *Texture) *Texture {
	t := &Texture{gpu: src.gpu.Ref()}
	t.refs.Store(1)
	t.Init = src.Init
	t.Init.Data = nil
	t.Init.MSAA = 0
	return t
}
