// SPDX-License-Identifier: Unlicense OR MIT

package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDevice is a no-op backend for exercising the frontend alone.
type fakeDevice struct {
	current    *Gpu
	compiled   int
	dispatched int
}

func (d *fakeDevice) Threadsafe() bool               { return true }
func (d *fakeDevice) CurrentGpu() *Gpu               { return d.current }
func (d *fakeDevice) SetCurrentGpu(g *Gpu)           { d.current = g }
func (d *fakeDevice) GetInfo(string) (string, error) { return "fake", nil }
func (d *fakeDevice) Flush() error                   { return nil }
func (d *fakeDevice) FinishGpu()                     {}
func (d *fakeDevice) FinishShader(*Shader)           {}
func (d *fakeDevice) FinishBuffer(*Buffer)           {}
func (d *fakeDevice) FinishTexture(*Texture)         {}

func (d *fakeDevice) Compile(cmds *Commands) error {
	d.compiled++
	return nil
}

func (d *fakeDevice) Dispatch(cmds *Commands) error {
	d.dispatched++
	return nil
}

func newTestGpu(t *testing.T) *Gpu {
	t.Helper()
	g := &Gpu{impl: &fakeDevice{}}
	g.refs.Store(1)
	return g
}

func testShader(t *testing.T, g *Gpu) *Shader {
	t.Helper()
	s := g.NewShader("void main() {}", "void main() {}")
	require.NotNil(t, s)
	return s
}

func TestPlanPushPopReturnsToRoot(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()
	require.Same(t, p.root, p.cur)

	for i := 0; i < 3; i++ {
		p.BeginConfig()
		p.PushGroup()
	}
	p.PopN(3)
	require.Same(t, p.root, p.cur)

	p.Pop()
	require.Nil(t, p.cur)

	p.Unref()
}

func TestPlanRootDefaults(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	p.PushGroup()

	pass := p.root.Pass
	require.False(t, pass.Fake)
	require.True(t, pass.WriteMask.Set)
	require.Equal(t, WriteMaskAll, pass.WriteMask.Val)
	require.True(t, pass.DepthFunc.Set)
	require.Equal(t, TestLEqual, pass.DepthFunc.Val)
	require.True(t, pass.ClockwiseFaces.Set)
	require.False(t, pass.ClockwiseFaces.Val)
	require.True(t, pass.BackfaceCull.Set)
	require.True(t, pass.BackfaceCull.Val)

	p.Unref()
}

func TestPlanFakePassSemantics(t *testing.T) {
	g := newTestGpu(t)
	shader := testShader(t, g)
	target := g.NewTexture(nil, 8, 8, FormatRGBA8, 1, 0)

	p := g.NewPlan()
	p.BeginConfig()
	p.ConfigShader(shader)
	p.ConfigTargets(NewTextureVal(target))
	p.ConfigDest(0, 0, 8, 8)
	p.PushGroup()
	require.Equal(t, 0, p.cur.Depth)

	// Neither targets nor shader: fake, shares depth and inherits
	// overrides by value.
	p.BeginConfig()
	p.PushGroup()
	fake := p.cur
	require.True(t, fake.Pass.Fake)
	require.Equal(t, 0, fake.Depth)
	require.Same(t, shader, fake.Pass.Shader)
	require.Equal(t, [4]int32{0, 0, 8, 8}, fake.Pass.Dest.Val)
	require.False(t, fake.Pass.Dest.Set)
	require.Equal(t, WriteMaskAll, fake.Pass.WriteMask.Val)
	p.Pop()

	// New targets: a real pass one framebuffer slot deeper.
	p.BeginConfig()
	p.ConfigTargets(NewTextureVal(target))
	p.PushGroup()
	real := p.cur
	require.False(t, real.Pass.Fake)
	require.Equal(t, 1, real.Depth)
	p.Pop()

	// A new shader alone also makes the pass real.
	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()
	require.False(t, p.cur.Pass.Fake)
	require.Equal(t, 1, p.cur.Depth)
	p.Pop()

	p.Pop()
	p.Unref()
}

func TestPlanBeginConfigTwiceRejected(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	first := p.configuring
	p.BeginConfig()
	require.Same(t, first, p.configuring)

	p.PushGroup()
	p.Unref()
}

func TestPlanPopPastRootStops(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	p.PushGroup()
	p.PopN(5)
	require.Nil(t, p.cur)

	p.Unref()
}

func TestUniformUpsertKeepsFirstInsertionOrder(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	p.ConfigUniforms(
		NewKeyVal("a", NewFloat(1)),
		NewKeyVal("b", NewFloat(2)),
		NewKeyVal("a", NewFloat(3)),
		NewKeyVal("c", NewFloat(4)),
	)

	u := &p.configuring.Pass.Uniforms
	require.Equal(t, []string{"a", "b", "c"}, u.Order)
	require.Equal(t, float32(3), u.Get("a").F)
	require.Equal(t, float32(2), u.Get("b").F)

	p.PushGroup()
	p.Pop()
	p.Unref()
}

func TestConfigUniformsRejectsNonKeyVal(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	p.ConfigUniforms(NewFloat(1))
	require.Zero(t, p.configuring.Pass.Uniforms.Len())

	p.PushGroup()
	p.Unref()
}

func TestConfigTargetsRejectsBadTuple(t *testing.T) {
	g := newTestGpu(t)
	target := g.NewTexture(nil, 4, 4, FormatRGBA8, 1, 0)
	p := g.NewPlan()

	p.BeginConfig()
	p.ConfigTargets(NewTuple3(NewTextureVal(target), NewFloat(1), NewInt(int32(BlendOne))))
	require.Empty(t, p.configuring.Pass.Targets)

	p.ConfigTargets(NewTuple3(
		NewTextureVal(target),
		NewInt(int32(BlendOne)),
		NewInt(int32(BlendZero)),
	))
	require.Len(t, p.configuring.Pass.Targets, 1)
	require.Equal(t, BlendOne, p.configuring.Pass.Targets[0].SrcBlend)
	require.Equal(t, BlendZero, p.configuring.Pass.Targets[0].DstBlend)

	p.ConfigTargets(NewTextureVal(target))
	require.Len(t, p.configuring.Pass.Targets, 2)
	require.Equal(t, BlendSrcAlpha, p.configuring.Pass.Targets[1].SrcBlend)
	require.Equal(t, BlendOneMinusSrcAlpha, p.configuring.Pass.Targets[1].DstBlend)

	p.PushGroup()
	p.Unref()
}

func TestAppendRequiresShaderMaskAndDepthFunc(t *testing.T) {
	g := newTestGpu(t)
	buf := g.NewBuffer([]byte{1, 2, 3, 4}, []DataSegment{{Name: "x", Type: TypeFloat, Num: 1}})

	p := g.NewPlan()
	p.BeginConfig()
	p.PushGroup()
	// The root pass has defaulted mask and depth func but no shader.
	p.Append(1, buf)
	require.Empty(t, p.cur.Children)

	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()
	p.Append(1, buf)
	require.Len(t, p.cur.Children, 1)
	require.Equal(t, InstrVertices, p.cur.Children[0].Kind)

	p.PopN(2)
	p.Unref()
}

func TestAppendColorOnlyMaskImpliesDepthFunc(t *testing.T) {
	g := newTestGpu(t)
	buf := g.NewBuffer([]byte{1, 2, 3, 4}, []DataSegment{{Name: "x", Type: TypeFloat, Num: 1}})

	p := g.NewPlan()
	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.ConfigWriteMask(WriteMaskColor)
	p.PushGroup()
	// A set mask without the DEPTH bit satisfies the depth-func
	// requirement on its own: a pure color pass needs none.
	p.BeginConfig()
	p.ConfigWriteMask(WriteMaskColor)
	p.PushGroup()
	p.Append(1, buf)
	require.Len(t, p.cur.Children, 1)

	p.PopN(2)
	p.Unref()
}

func TestAppendValidatesInstancesAndBuffers(t *testing.T) {
	g := newTestGpu(t)
	buf := g.NewBuffer([]byte{1}, nil)

	p := g.NewPlan()
	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()

	p.Append(0, buf)
	require.Empty(t, p.cur.Children)
	p.Append(1)
	require.Empty(t, p.cur.Children)
	p.Append(1, nil)
	require.Empty(t, p.cur.Children)

	p.Pop()
	p.Unref()
}

func TestPushStateSkipsIllTypedPairs(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.PushState(
		StateDest, NewRect(0, 0, 64, 64),
		StateWriteMask, NewFloat(1), // ill-typed, skipped
		StateDepthFunc, NewInt(int32(TestAlways)),
	)

	pass := p.cur.Pass
	require.True(t, pass.Dest.Set)
	require.Equal(t, [4]int32{0, 0, 64, 64}, pass.Dest.Val)
	require.True(t, pass.WriteMask.Set) // root default applied
	require.Equal(t, WriteMaskAll, pass.WriteMask.Val)
	require.Equal(t, TestAlways, pass.DepthFunc.Val)

	p.Pop()
	p.Unref()
}

func TestPushStateFullConfiguration(t *testing.T) {
	g := newTestGpu(t)
	shader := testShader(t, g)
	target := g.NewTexture(nil, 16, 16, FormatRGBA8, 1, 4)

	p := g.NewPlan()
	p.PushState(
		StateTarget, NewTuple3(NewTextureVal(target), NewInt(int32(BlendSrcAlpha)), NewInt(int32(BlendOneMinusSrcAlpha))),
		StateShader, NewShaderVal(shader),
		StateUniform, NewKeyVal("mvp", NewMat4(identity4())),
		StateDest, NewRect(0, 0, 16, 16),
		StateWriteMask, NewUInt(WriteMaskAll),
		StateDepthFunc, NewInt(int32(TestLEqual)),
		StateClockwiseFaces, NewBool(true),
		StateBackfaceCull, NewBool(false),
	)

	pass := p.cur.Pass
	require.Len(t, pass.Targets, 1)
	require.Same(t, shader, pass.Shader)
	require.Equal(t, 1, pass.Uniforms.Len())
	require.True(t, pass.ClockwiseFaces.Val)
	require.False(t, pass.BackfaceCull.Val)

	p.Pop()
	p.Unref()
}

func TestUnrefToCommandsRequiresFullyPoppedPlan(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()
	p.BeginConfig()
	p.PushGroup()

	cmds, err := p.UnrefToCommands()
	require.Nil(t, cmds)
	require.NoError(t, err)

	p.Pop()
	p.Unref()
}

func TestUnrefToCommandsWithOutstandingReference(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()
	p.BeginConfig()
	p.PushGroup()
	p.Pop()

	p.Ref()
	cmds, err := p.UnrefToCommands()
	require.Nil(t, cmds)
	require.NoError(t, err)

	p.Unref()
}

func TestUnrefToCommandsCompilesAndDispatches(t *testing.T) {
	g := newTestGpu(t)
	impl := g.impl.(*fakeDevice)

	p := g.NewPlan()
	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()
	p.Pop()

	cmds, err := p.UnrefToCommands()
	require.NoError(t, err)
	require.NotNil(t, cmds)
	require.Equal(t, 1, impl.compiled)

	require.NoError(t, cmds.Dispatch())
	require.Equal(t, 1, impl.dispatched)
	cmds.Unref()
}

func TestRepushAtRootReplacesTree(t *testing.T) {
	g := newTestGpu(t)
	p := g.NewPlan()

	p.BeginConfig()
	p.PushGroup()
	first := p.root
	p.Pop()

	p.BeginConfig()
	p.PushGroup()
	require.NotSame(t, first, p.root)

	p.Pop()
	p.Unref()
}

func TestInstrMaxHeight(t *testing.T) {
	g := newTestGpu(t)
	buf := g.NewBuffer([]byte{0, 0, 0, 0}, []DataSegment{{Name: "x", Type: TypeFloat, Num: 1}})

	p := g.NewPlan()
	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()
	p.BeginConfig()
	p.ConfigShader(testShader(t, g))
	p.PushGroup()
	p.Append(1, buf)
	require.Equal(t, 3, p.root.MaxHeight())
	p.PopN(2)
	p.Unref()
}

func TestValueTransferDeepCopiesKeyVals(t *testing.T) {
	g := newTestGpu(t)
	tex := g.NewTexture(nil, 2, 2, FormatRGBA8, 1, 0)

	src := NewKeyVal("outer", NewTextureVal(tex))
	dst := transferValue(src)
	require.Equal(t, TypeKeyVal, dst.Type)
	require.NotSame(t, src.Val, dst.Val)
	require.Same(t, tex, dst.Val.Texture)
	require.Equal(t, int32(2), tex.refs.Load())

	clearValue(dst)
	require.Equal(t, int32(1), tex.refs.Load())
}

func identity4() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
