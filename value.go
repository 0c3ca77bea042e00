// SPDX-License-Identifier: Unlicense OR MIT

package cpcgpu

import (
	"github.com/kolunmi/cpc-gpu/internal/driver"

	"golang.org/x/image/math/f32"
)

// ShaderValue wraps a shader resource as a Value.
func ShaderValue(s *Shader) *Value { return driver.NewShaderVal(s) }

// BufferValue wraps a buffer resource as a Value.
func BufferValue(b *Buffer) *Value { return driver.NewBufferVal(b) }

// TextureValue wraps a texture resource as a Value.
func TextureValue(t *Texture) *Value { return driver.NewTextureVal(t) }

// Bool wraps a boolean as a Value.
func Bool(v bool) *Value { return driver.NewBool(v) }

// Int wraps a signed integer as a Value.
func Int(v int32) *Value { return driver.NewInt(v) }

// UInt wraps an unsigned integer as a Value.
func UInt(v uint32) *Value { return driver.NewUInt(v) }

// Float wraps a float as a Value.
func Float(v float32) *Value { return driver.NewFloat(v) }

// Pointer wraps an opaque user value as a Value.
func Pointer(v any) *Value { return driver.NewPointer(v) }

// Vec2 composes a two component vector Value.
func Vec2(x, y float32) *Value { return driver.NewVec2(x, y) }

// Vec3 composes a three component vector Value.
func Vec3(x, y, z float32) *Value { return driver.NewVec3(x, y, z) }

// Vec4 composes a four component vector Value.
func Vec4(x, y, z, w float32) *Value { return driver.NewVec4(x, y, z, w) }

// Mat4 wraps a column-major 4x4 matrix as a Value.
func Mat4(m f32.Mat4) *Value { return driver.NewMat4(m) }

// Rect composes a rectangle Value from x, y, width and height.
func Rect(x, y, w, h int32) *Value { return driver.NewRect(x, y, w, h) }

// KeyVal pairs a name with an inner Value, as used for uniforms.
func KeyVal(key string, val *Value) *Value { return driver.NewKeyVal(key, val) }

// Tuple2 composes an ordered pair of values.
func Tuple2(one, two *Value) *Value { return driver.NewTuple2(one, two) }

// Tuple3 composes an ordered triple of values.
func Tuple3(one, two, three *Value) *Value { return driver.NewTuple3(one, two, three) }

// Tuple4 composes an ordered quadruple of values.
func Tuple4(one, two, three, four *Value) *Value {
	return driver.NewTuple4(one, two, three, four)
}
