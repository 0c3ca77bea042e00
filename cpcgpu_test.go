// SPDX-License-Identifier: Unlicense OR MIT

package cpcgpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitFlagBits(t *testing.T) {
	require.Equal(t, uint32(1<<0), InitFlagBackendOpenGL)
	require.Equal(t, uint32(1<<1), InitFlagBackendVulkan)
	require.Equal(t, uint32(1<<2), InitFlagUseDebugLayers)
	require.Equal(t, uint32(1<<3), InitFlagNoThreadSafety)
	require.Equal(t, uint32(1<<4), InitFlagNoFallback)
	require.Equal(t, uint32(1<<5), InitFlagExitOnError)
	require.Equal(t, uint32(1<<6), InitFlagLogErrors)
}

func TestWriteMaskBits(t *testing.T) {
	require.Equal(t, uint32(1), WriteMaskColorRed)
	require.Equal(t, uint32(2), WriteMaskColorGreen)
	require.Equal(t, uint32(4), WriteMaskColorBlue)
	require.Equal(t, uint32(8), WriteMaskColorAlpha)
	require.Equal(t, uint32(16), WriteMaskDepth)
	require.Equal(t, uint32(7), WriteMaskRGB)
	require.Equal(t, uint32(15), WriteMaskColor)
	require.Equal(t, uint32(31), WriteMaskAll)
}

func TestEnumOrdering(t *testing.T) {
	require.Equal(t, TestFunc(1), TestNever)
	require.Equal(t, TestFunc(8), TestNotEqual)
	require.Equal(t, Blend(1), BlendZero)
	require.Equal(t, Blend(19), BlendOneMinusSrc1Alpha)
	require.Equal(t, State(1), StateTarget)
	require.Equal(t, State(8), StateBackfaceCull)
	require.Equal(t, Format(1), FormatR8)
	require.Equal(t, Format(7), FormatRGBA32)
}

func TestValueConstructors(t *testing.T) {
	v := KeyVal("mvp", Mat4([16]float32{}))
	require.Equal(t, TypeKeyVal, v.Type)
	require.Equal(t, "mvp", v.Key)
	require.Equal(t, TypeMat4, v.Val.Type)

	tup := Tuple3(Bool(true), Int(-1), UInt(2))
	require.Equal(t, TypeTuple3, tup.Type)
	require.True(t, tup.Tuple[0].B)
	require.Equal(t, int32(-1), tup.Tuple[1].I)
	require.Equal(t, uint32(2), tup.Tuple[2].U)

	r := Rect(1, 2, 3, 4)
	require.Equal(t, [4]int32{1, 2, 3, 4}, r.Rect)

	v3 := Vec3(1, 2, 3)
	require.Equal(t, TypeVec3, v3.Type)
	require.Equal(t, float32(2), v3.V3[1])
}

func TestNewWithoutBackendFlagIsUserError(t *testing.T) {
	g, err := New(0, nil)
	require.Nil(t, g)
	require.NoError(t, err)

	g, err = New(InitFlagBackendVulkan, nil)
	require.Nil(t, g)
	require.NoError(t, err)
}
