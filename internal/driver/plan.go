// SPDX-License-Identifier: Unlicense OR MIT

package driver

import "sync/atomic"

// InstrKind discriminates instruction tree nodes.
type InstrKind int

const (
	// InstrPass is an internal node carrying render state inherited by
	// its descendants.
	InstrPass InstrKind = iota
	// InstrVertices submits one or more vertex buffers for drawing.
	InstrVertices
	// InstrBlit copies a texture into the enclosing pass's output.
	InstrBlit
)

// Target is one render target of a pass.
type Target struct {
	Texture  *Texture
	SrcBlend Blend
	DstBlend Blend
}

// Opt is a value plus whether it was explicitly set on its pass.
type Opt[T any] struct {
	Val T
	Set bool
}

// Uniforms stores a pass's uniforms with O(1) lookup by name and a
// deterministic bind order. Replacing a value keeps the name at its
// first-insertion position.
type Uniforms struct {
	byName map[string]*Value
	Order  []string
}

func (u *Uniforms) set(name string, v *Value) {
	if u.byName == nil {
		u.byName = make(map[string]*Value)
	}
	if old, ok := u.byName[name]; ok {
		clearValue(old)
	} else {
		u.Order = append(u.Order, name)
	}
	u.byName[name] = v
}

// Get returns the stored value for name, or nil.
func (u *Uniforms) Get(name string) *Value {
	return u.byName[name]
}

// Len reports the number of distinct uniform names.
func (u *Uniforms) Len() int { return len(u.Order) }

func (u *Uniforms) clear() {
	for _, v := range u.byName {
		clearValue(v)
	}
	u.byName = nil
	u.Order = nil
}

// Pass is the payload of an InstrPass node.
type Pass struct {
	// Fake means the pass introduced neither new targets nor a new
	// shader; it shares its parent's depth and framebuffer slot.
	Fake bool

	Shader     *Shader
	Targets    []Target
	Attributes map[string]struct{}
	Uniforms   Uniforms

	Dest           Opt[[4]int32]
	WriteMask      Opt[uint32]
	DepthFunc      Opt[TestFunc]
	ClockwiseFaces Opt[bool]
	BackfaceCull   Opt[bool]

	// ownsTargets is false when Targets is shared with the parent, so
	// cleanup releases each target texture exactly once.
	ownsTargets bool
}

// Instr is one node of the instruction tree. The parent pointer is
// lookup-only; ownership runs strictly downward.
type Instr struct {
	Depth  int
	Kind   InstrKind
	Parent *Instr
	// Idx is the node's position among its siblings.
	Idx      int
	Children []*Instr

	Pass *Pass

	Vertices struct {
		Buffers   []*Buffer
		Instances int
	}

	Blit struct {
		Src *Texture
	}
}

// Walk traverses the tree in pre-order, stopping early when fn returns
// true. Reports whether the traversal was stopped.
func (n *Instr) Walk(fn func(*Instr) bool) bool {
	if n == nil {
		return false
	}
	if fn(n) {
		return true
	}
	for _, c := range n.Children {
		if c.Walk(fn) {
			return true
		}
	}
	return false
}

// MaxHeight returns the number of nodes on the longest root-to-leaf
// path, counting leaves.
func (n *Instr) MaxHeight() int {
	if n == nil {
		return 0
	}
	max := 0
	for _, c := range n.Children {
		if h := c.MaxHeight(); h > max {
			max = h
		}
	}
	return max + 1
}

func (n *Instr) append(child *Instr) {
	child.Parent = n
	child.Idx = len(n.Children)
	n.Children = append(n.Children, child)
}

// destroyInstrTree releases every resource reference held by the tree.
func destroyInstrTree(n *Instr) {
	if n == nil {
		return
	}
	switch n.Kind {
	case InstrPass:
		p := n.Pass
		if p.Shader != nil {
			p.Shader.Unref()
			p.Shader = nil
		}
		if p.ownsTargets {
			for i := range p.Targets {
				p.Targets[i].Texture.Unref()
			}
		}
		p.Targets = nil
		p.Uniforms.clear()
	case InstrVertices:
		for _, b := range n.Vertices.Buffers {
			b.Unref()
		}
		n.Vertices.Buffers = nil
	case InstrBlit:
		n.Blit.Src.Unref()
		n.Blit.Src = nil
	}
	for _, c := range n.Children {
		destroyInstrTree(c)
	}
	n.Children = nil
}

// Plan is a mutable outline of render work. The backend is never
// invoked during construction, so a plan may be built on any thread;
// consuming it into commands requires the Gpu's claim thread.
type Plan struct {
	refs atomic.Int32
	gpu  *Gpu

	root *Instr
	cur  *Instr

	configuring *Instr
}

// NewPlan creates an empty plan bound to g.
func (g *Gpu) NewPlan() *Plan {
	if g == nil {
		Criticalf("Gpu.NewPlan", "nil receiver")
		return nil
	}
	p := &Plan{gpu: g.Ref()}
	p.refs.Store(1)
	return p
}

func (p *Plan) Ref() *Plan {
	if p == nil {
		Criticalf("Plan.Ref", "nil receiver")
		return nil
	}
	p.refs.Add(1)
	return p
}

func (p *Plan) Unref() {
	if p == nil {
		Criticalf("Plan.Unref", "nil receiver")
		return
	}
	if p.refs.Add(-1) == 0 {
		p.finish()
	}
}

func (p *Plan) finish() {
	destroyInstrTree(p.root)
	p.root = nil
	p.cur = nil
	if p.configuring != nil {
		destroyInstrTree(p.configuring)
		p.configuring = nil
	}
	p.gpu.Unref()
	p.gpu = nil
}

// BeginConfig allocates the next child group for configuration. Must be
// paired with a following PushGroup.
func (p *Plan) BeginConfig() {
	if p == nil {
		Criticalf("Plan.BeginConfig", "nil receiver")
		return
	}
	if p.configuring != nil {
		Criticalf("Plan.BeginConfig", "a group is already being configured")
		return
	}

	in := &Instr{Kind: InstrPass, Pass: &Pass{
		Attributes:  make(map[string]struct{}),
		ownsTargets: true,
	}}
	in.Pass.BackfaceCull.Val = true
	if p.cur != nil {
		in.Depth = p.cur.Depth + 1
	}
	p.configuring = in
}

func checkTargetValue(v *Value) bool {
	if v == nil {
		return false
	}
	if v.Type == TypeTexture {
		return true
	}
	return v.Type == TypeTuple3 &&
		v.Tuple[0] != nil && v.Tuple[0].Type == TypeTexture &&
		v.Tuple[1] != nil && v.Tuple[1].Type == TypeInt &&
		Blend(v.Tuple[1].I) > blend0 && Blend(v.Tuple[1].I) < NBlends &&
		v.Tuple[2] != nil && v.Tuple[2].Type == TypeInt &&
		Blend(v.Tuple[2].I) > blend0 && Blend(v.Tuple[2].I) < NBlends
}

// ConfigTargets appends render targets to the configuring group. Each
// argument is either a Texture value or a Tuple3 of (Texture, Int
// source blend, Int destination blend).
func (p *Plan) ConfigTargets(targets ...*Value) {
	if p == nil || p.configuring == nil || len(targets) == 0 {
		Criticalf("Plan.ConfigTargets", "no group is being configured or no targets given")
		return
	}
	for _, t := range targets {
		if !checkTargetValue(t) {
			Criticalf("Plan.ConfigTargets", "target is not a TEXTURE or a TUPLE3 of (TEXTURE, INT, INT)")
			return
		}
	}
	pass := p.configuring.Pass
	for _, t := range targets {
		switch t.Type {
		case TypeTexture:
			pass.Targets = append(pass.Targets, Target{
				Texture:  t.Texture.Ref(),
				SrcBlend: BlendSrcAlpha,
				DstBlend: BlendOneMinusSrcAlpha,
			})
		case TypeTuple3:
			pass.Targets = append(pass.Targets, Target{
				Texture:  t.Tuple[0].Texture.Ref(),
				SrcBlend: Blend(t.Tuple[1].I),
				DstBlend: Blend(t.Tuple[2].I),
			})
		}
	}
}

// ConfigShader sets the shader for the configuring group.
func (p *Plan) ConfigShader(shader *Shader) {
	if p == nil || p.configuring == nil || shader == nil {
		Criticalf("Plan.ConfigShader", "no group is being configured or nil shader")
		return
	}
	if old := p.configuring.Pass.Shader; old != nil {
		old.Unref()
	}
	p.configuring.Pass.Shader = shader.Ref()
}

// ConfigUniforms sets shader uniform values for the configuring group.
// Every argument must be a KeyVal; replacing an existing name keeps its
// position in the bind order.
func (p *Plan) ConfigUniforms(keyvals ...*Value) {
	if p == nil || p.configuring == nil || len(keyvals) == 0 {
		Criticalf("Plan.ConfigUniforms", "no group is being configured or no keyvals given")
		return
	}
	for _, kv := range keyvals {
		if kv == nil || kv.Type != TypeKeyVal || kv.Val == nil {
			Criticalf("Plan.ConfigUniforms", "uniform is not a KEYVAL")
			return
		}
	}
	for _, kv := range keyvals {
		p.configuring.Pass.Uniforms.set(kv.Key, transferValue(kv.Val))
	}
}

// ConfigDest overrides the viewport for the configuring group.
func (p *Plan) ConfigDest(x, y, width, height int) {
	if p == nil || p.configuring == nil || width == 0 || height == 0 {
		Criticalf("Plan.ConfigDest", "no group is being configured or degenerate extent")
		return
	}
	p.configuring.Pass.Dest.Val = [4]int32{int32(x), int32(y), int32(width), int32(height)}
	p.configuring.Pass.Dest.Set = true
}

// ConfigWriteMask overrides the write mask for the configuring group.
func (p *Plan) ConfigWriteMask(mask uint32) {
	if p == nil || p.configuring == nil {
		Criticalf("Plan.ConfigWriteMask", "no group is being configured")
		return
	}
	p.configuring.Pass.WriteMask.Val = mask
	p.configuring.Pass.WriteMask.Set = true
}

// ConfigDepthTestFunc overrides the depth comparison for the
// configuring group.
func (p *Plan) ConfigDepthTestFunc(fn TestFunc) {
	if p == nil || p.configuring == nil || fn <= testFunc0 || fn >= NTestFuncs {
		Criticalf("Plan.ConfigDepthTestFunc", "no group is being configured or invalid test func")
		return
	}
	p.configuring.Pass.DepthFunc.Val = fn
	p.configuring.Pass.DepthFunc.Set = true
}

// ConfigClockwiseFaces selects clockwise winding for front faces in the
// configuring group.
func (p *Plan) ConfigClockwiseFaces(clockwise bool) {
	if p == nil || p.configuring == nil {
		Criticalf("Plan.ConfigClockwiseFaces", "no group is being configured")
		return
	}
	p.configuring.Pass.ClockwiseFaces.Val = clockwise
	p.configuring.Pass.ClockwiseFaces.Set = true
}

// ConfigBackfaceCull sets backface culling for the configuring group.
func (p *Plan) ConfigBackfaceCull(cull bool) {
	if p == nil || p.configuring == nil {
		Criticalf("Plan.ConfigBackfaceCull", "no group is being configured")
		return
	}
	p.configuring.Pass.BackfaceCull.Val = cull
	p.configuring.Pass.BackfaceCull.Set = true
}

// PushGroup commits the configuring group, making it the current one.
// Must be paired with a preceding BeginConfig.
func (p *Plan) PushGroup() {
	if p == nil || p.configuring == nil {
		Criticalf("Plan.PushGroup", "no group is being configured")
		return
	}

	in := p.configuring
	p.configuring = nil
	pass := in.Pass

	if p.cur != nil {
		parent := p.cur.Pass
		pass.Fake = true

		if len(pass.Targets) == 0 {
			pass.Targets = parent.Targets
			pass.ownsTargets = false
		} else {
			pass.Fake = false
		}

		if pass.Shader == nil {
			if parent.Shader != nil {
				pass.Shader = parent.Shader.Ref()
			}
		} else {
			pass.Fake = false
		}

		if pass.Fake {
			in.Depth = p.cur.Depth
		}

		if !pass.Dest.Set {
			pass.Dest.Val = parent.Dest.Val
		}
		if !pass.WriteMask.Set {
			pass.WriteMask.Val = parent.WriteMask.Val
		}
		if !pass.DepthFunc.Set {
			pass.DepthFunc.Val = parent.DepthFunc.Val
		}
		if !pass.ClockwiseFaces.Set {
			pass.ClockwiseFaces.Val = parent.ClockwiseFaces.Val
		}
		if !pass.BackfaceCull.Set {
			pass.BackfaceCull.Val = parent.BackfaceCull.Val
		}

		p.cur.append(in)
		p.cur = in
	} else {
		pass.Fake = false

		if !pass.WriteMask.Set {
			pass.WriteMask.Val = WriteMaskAll
			pass.WriteMask.Set = true
		}
		if !pass.DepthFunc.Set {
			pass.DepthFunc.Val = TestLEqual
			pass.DepthFunc.Set = true
		}
		if !pass.ClockwiseFaces.Set {
			pass.ClockwiseFaces.Val = false
			pass.ClockwiseFaces.Set = true
		}
		if !pass.BackfaceCull.Set {
			pass.BackfaceCull.Val = true
			pass.BackfaceCull.Set = true
		}

		if p.root != nil {
			destroyInstrTree(p.root)
		}
		p.root = in
		p.cur = in
	}
}

// PushState initializes and activates a new child group in one call.
// Arguments alternate between State keys and their values; an ill-typed
// pair is logged and skipped.
func (p *Plan) PushState(args ...any) {
	if p == nil {
		Criticalf("Plan.PushState", "nil receiver")
		return
	}
	if p.configuring != nil {
		Criticalf("Plan.PushState", "a group is already being configured")
		return
	}

	p.BeginConfig()
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(State)
		if !ok {
			Criticalf("Plan.PushState", "argument %d is not a state key", i)
			break
		}
		if key <= state0 || key >= NStates {
			Criticalf("Plan.PushState", "key %d was not recognized as valid", int(key))
			break
		}
		value, ok := args[i+1].(*Value)
		if !ok || value == nil {
			Criticalf("Plan.PushState", "state key %d does not have a value", int(key))
			break
		}

		switch key {
		case StateShader:
			if value.Type != TypeShader {
				Criticalf("Plan.PushState", "SHADER wants a SHADER value, got %s", TypeName(value.Type))
				continue
			}
			p.ConfigShader(value.Shader)
		case StateTarget:
			p.ConfigTargets(value)
		case StateUniform:
			p.ConfigUniforms(value)
		case StateDest:
			if value.Type != TypeRect {
				Criticalf("Plan.PushState", "DEST wants a RECT value, got %s", TypeName(value.Type))
				continue
			}
			r := value.Rect
			p.ConfigDest(int(r[0]), int(r[1]), int(r[2]), int(r[3]))
		case StateWriteMask:
			if value.Type != TypeUInt {
				Criticalf("Plan.PushState", "WRITE_MASK wants a UINT value, got %s", TypeName(value.Type))
				continue
			}
			p.ConfigWriteMask(value.U)
		case StateDepthFunc:
			if value.Type != TypeInt {
				Criticalf("Plan.PushState", "DEPTH_FUNC wants an INT value, got %s", TypeName(value.Type))
				continue
			}
			p.ConfigDepthTestFunc(TestFunc(value.I))
		case StateClockwiseFaces:
			if value.Type != TypeBool {
				Criticalf("Plan.PushState", "CLOCKWISE_FACES wants a BOOL value, got %s", TypeName(value.Type))
				continue
			}
			p.ConfigClockwiseFaces(value.B)
		case StateBackfaceCull:
			if value.Type != TypeBool {
				Criticalf("Plan.PushState", "BACKFACE_CULL wants a BOOL value, got %s", TypeName(value.Type))
				continue
			}
			p.ConfigBackfaceCull(value.B)
		}
	}
	p.PushGroup()
}

// validateAppend checks that the current group resolves, walking
// ancestors, to a shader, a set write mask and a set depth function. A
// set write mask without the DEPTH bit implies the depth function: a
// pure color pass needs none.
func (p *Plan) validateAppend() bool {
	hasShader, hasWriteMask, hasDepthFunc := false, false, false

	for n := p.cur; n != nil; n = n.Parent {
		pass := n.Pass
		if !hasShader {
			hasShader = pass.Shader != nil
		}
		if !hasDepthFunc && !hasWriteMask &&
			pass.WriteMask.Set && pass.WriteMask.Val&WriteMaskDepth == 0 {
			hasWriteMask = true
			hasDepthFunc = true
		} else {
			if !hasWriteMask {
				hasWriteMask = pass.WriteMask.Set
			}
			if !hasDepthFunc {
				hasDepthFunc = pass.DepthFunc.Set
			}
		}
		if hasShader && hasWriteMask && hasDepthFunc {
			break
		}
	}

	if !hasShader {
		Criticalf("Plan.Append", "invalid append: needs a shader")
	}
	if !hasWriteMask {
		Criticalf("Plan.Append", "invalid append: needs a write mask")
	}
	if !hasDepthFunc {
		Criticalf("Plan.Append", "invalid append: needs a depth test function")
	}
	return hasShader && hasWriteMask && hasDepthFunc
}

// Append adds a vertices operation processing the buffers instances
// times under the current group.
func (p *Plan) Append(instances int, buffers ...*Buffer) {
	if p == nil || p.configuring != nil || p.cur == nil {
		Criticalf("Plan.Append", "no active group or a group is still being configured")
		return
	}
	if instances < 1 || len(buffers) == 0 {
		Criticalf("Plan.Append", "need at least one instance and one buffer")
		return
	}
	for _, b := range buffers {
		if b == nil {
			Criticalf("Plan.Append", "nil buffer")
			return
		}
	}
	if !p.validateAppend() {
		return
	}

	in := &Instr{Kind: InstrVertices, Depth: p.cur.Depth}
	in.Vertices.Buffers = make([]*Buffer, len(buffers))
	for i, b := range buffers {
		in.Vertices.Buffers[i] = b.Ref()
	}
	in.Vertices.Instances = instances
	p.cur.append(in)
}

// Blit adds a blit of src into the current group's output.
func (p *Plan) Blit(src *Texture) {
	if p == nil || p.configuring != nil || p.cur == nil || src == nil {
		Criticalf("Plan.Blit", "no active group or nil source")
		return
	}
	in := &Instr{Kind: InstrBlit, Depth: p.cur.Depth}
	in.Blit.Src = src.Ref()
	p.cur.append(in)
}

// PopN terminates n groups, restoring the state from before each was
// configured.
func (p *Plan) PopN(n int) {
	if p == nil || p.configuring != nil || p.cur == nil {
		Criticalf("Plan.PopN", "no active group or a group is still being configured")
		return
	}
	for i := 0; i < n; i++ {
		if p.cur == nil {
			Criticalf("Plan.PopN", "no more groups to pop!")
			break
		}
		p.cur = p.cur.Parent
	}
}

// Pop terminates the current group.
func (p *Plan) Pop() { p.PopN(1) }

// UnrefToCommands consumes the plan, compiling it into dispatchable
// commands. The caller must hold the sole remaining reference.
func (p *Plan) UnrefToCommands() (*Commands, error) {
	return p.unrefToCommands(false)
}

// UnrefToDebugCommands is UnrefToCommands with call logging enabled on
// the resulting commands.
func (p *Plan) UnrefToDebugCommands() (*Commands, error) {
	return p.unrefToCommands(true)
}

func (p *Plan) unrefToCommands(debug bool) (*Commands, error) {
	if p == nil {
		Criticalf("Plan.UnrefToCommands", "nil receiver")
		return nil, nil
	}
	if p.cur != nil {
		Criticalf("Plan.UnrefToCommands", "the plan has unpopped groups")
		return nil, nil
	}

	gpu := p.gpu.Ref()
	defer gpu.Unref()

	if !gpu.tryEnter("Plan.UnrefToCommands") {
		return nil, nil
	}
	cmds, err := gpu.planUnrefToCommands(p, debug)
	gpu.leave()

	if err = gpu.backendError("Plan.UnrefToCommands", err); err != nil {
		return nil, err
	}
	return cmds, nil
}

func (g *Gpu) planUnrefToCommands(p *Plan, debug bool) (*Commands, error) {
	if p.refs.Add(-1) != 0 {
		Criticalf("Plan.UnrefToCommands",
			"plan object still has references elsewhere, so its resources cannot be compiled!")
		return nil, ErrUser
	}

	cmds := &Commands{gpu: g.Ref()}
	cmds.refs.Store(1)
	cmds.Debug.Enabled = debug
	cmds.Instrs = p.root
	p.root = nil
	p.finish()

	if err := g.impl.Compile(cmds); err != nil {
		cmds.Unref()
		return nil, err
	}
	return cmds, nil
}
