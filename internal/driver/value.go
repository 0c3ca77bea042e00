// SPDX-License-Identifier: Unlicense OR MIT

package driver

import "golang.org/x/image/math/f32"

// ValueType discriminates the Value union.
type ValueType int

const (
	type0 ValueType = iota

	TypeShader
	TypeBuffer
	TypeTexture

	TypeBool
	TypeInt
	TypeUInt
	TypeFloat
	TypePointer

	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat4
	TypeRect

	TypeKeyVal

	TypeTuple2
	TypeTuple3
	TypeTuple4

	NTypes
)

var typeNames = [NTypes]string{
	TypeShader:  "SHADER",
	TypeBuffer:  "BUFFER",
	TypeTexture: "TEXTURE",
	TypeBool:    "BOOL",
	TypeInt:     "INT",
	TypeUInt:    "UINT",
	TypeFloat:   "FLOAT",
	TypePointer: "POINTER",
	TypeVec2:    "VEC2",
	TypeVec3:    "VEC3",
	TypeVec4:    "VEC4",
	TypeMat4:    "MAT4",
	TypeRect:    "RECT",
	TypeKeyVal:  "KEYVAL",
	TypeTuple2:  "TUPLE2",
	TypeTuple3:  "TUPLE3",
	TypeTuple4:  "TUPLE4",
}

// TypeName returns the symbolic name of t for diagnostics.
func TypeName(t ValueType) string {
	if t <= type0 || t >= NTypes {
		return "INVALID"
	}
	return typeNames[t]
}

// Value is a tagged union used for uniforms, state arguments and tuple
// composition. Construct values with the typed constructors; only the
// field selected by Type is meaningful.
type Value struct {
	Type ValueType

	Shader  *Shader
	Buffer  *Buffer
	Texture *Texture

	B bool
	I int32
	U uint32
	F float32
	P any

	V2   f32.Vec2
	V3   f32.Vec3
	V4   f32.Vec4
	M4   f32.Mat4
	Rect [4]int32

	Key string
	Val *Value

	Tuple [4]*Value
}

func NewShaderVal(s *Shader) *Value   { return &Value{Type: TypeShader, Shader: s} }
func NewBufferVal(b *Buffer) *Value   { return &Value{Type: TypeBuffer, Buffer: b} }
func NewTextureVal(t *Texture) *Value { return &Value{Type: TypeTexture, Texture: t} }

func NewBool(v bool) *Value     { return &Value{Type: TypeBool, B: v} }
func NewInt(v int32) *Value     { return &Value{Type: TypeInt, I: v} }
func NewUInt(v uint32) *Value   { return &Value{Type: TypeUInt, U: v} }
func NewFloat(v float32) *Value { return &Value{Type: TypeFloat, F: v} }
func NewPointer(v any) *Value   { return &Value{Type: TypePointer, P: v} }

func NewVec2(x, y float32) *Value       { return &Value{Type: TypeVec2, V2: f32.Vec2{x, y}} }
func NewVec3(x, y, z float32) *Value    { return &Value{Type: TypeVec3, V3: f32.Vec3{x, y, z}} }
func NewVec4(x, y, z, w float32) *Value { return &Value{Type: TypeVec4, V4: f32.Vec4{x, y, z, w}} }
func NewMat4(m f32.Mat4) *Value         { return &Value{Type: TypeMat4, M4: m} }
func NewRect(x, y, w, h int32) *Value   { return &Value{Type: TypeRect, Rect: [4]int32{x, y, w, h}} }

func NewKeyVal(key string, val *Value) *Value {
	return &Value{Type: TypeKeyVal, Key: key, Val: val}
}

func NewTuple2(one, two *Value) *Value {
	return &Value{Type: TypeTuple2, Tuple: [4]*Value{one, two}}
}

func NewTuple3(one, two, three *Value) *Value {
	return &Value{Type: TypeTuple3, Tuple: [4]*Value{one, two, three}}
}

func NewTuple4(one, two, three, four *Value) *Value {
	return &Value{Type: TypeTuple4, Tuple: [4]*Value{one, two, three, four}}
}

// transferValue turns a caller-owned value into one owned by the plan:
// resource handles gain a strong reference and keyval chains are deep
// copied so later mutation of the source cannot alias stored state.
func transferValue(src *Value) *Value {
	dst := &Value{}
	switch src.Type {
	case TypeShader:
		dst.Type = TypeShader
		dst.Shader = src.Shader.Ref()
	case TypeTexture:
		dst.Type = TypeTexture
		dst.Texture = src.Texture.Ref()
	case TypeBuffer:
		dst.Type = TypeBuffer
		dst.Buffer = src.Buffer.Ref()
	case TypeKeyVal:
		dst.Type = TypeKeyVal
		dst.Key = src.Key
		dst.Val = transferValue(src.Val)
	default:
		*dst = *src
	}
	return dst
}

// clearValue releases the owned interior of v.
func clearValue(v *Value) {
	switch v.Type {
	case TypeShader:
		v.Shader.Unref()
		v.Shader = nil
	case TypeBuffer:
		v.Buffer.Unref()
		v.Buffer = nil
	case TypeTexture:
		v.Texture.Unref()
		v.Texture = nil
	case TypeKeyVal:
		if v.Val != nil {
			clearValue(v.Val)
			v.Val = nil
		}
	}
}
