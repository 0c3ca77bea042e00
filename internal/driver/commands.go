// SPDX-License-Identifier: Unlicense OR MIT

package driver

import "sync/atomic"

// Commands owns a compiled instruction tree. Immutable after
// compilation; dispatch may run any number of times on the claim
// thread.
type Commands struct {
	refs atomic.Int32
	gpu  *Gpu

	Instrs *Instr

	Debug struct {
		Enabled bool
		Compile []string
		Run     []string
	}
}

func (c *Commands) Gpu() *Gpu { return c.gpu }

func (c *Commands) Ref() *Commands {
	if c == nil {
		Criticalf("Commands.Ref", "nil receiver")
		return nil
	}
	c.refs.Add(1)
	return c
}

func (c *Commands) Unref() {
	if c == nil {
		Criticalf("Commands.Unref", "nil receiver")
		return
	}
	if c.refs.Add(-1) == 0 {
		destroyInstrTree(c.Instrs)
		c.Instrs = nil
		c.gpu.Unref()
	}
}

// Dispatch runs the commands against the currently bound context.
func (c *Commands) Dispatch() error {
	if c == nil {
		Criticalf("Commands.Dispatch", "nil receiver")
		return nil
	}
	if !c.gpu.tryEnter("Commands.Dispatch") {
		return nil
	}
	err := c.gpu.impl.Dispatch(c)
	c.gpu.leave()
	return c.gpu.backendError("Commands.Dispatch", err)
}

// LastDebugDispatch returns the call log of the most recent dispatch.
// The commands must have been compiled with debugging enabled.
func (c *Commands) LastDebugDispatch() []string {
	if c == nil || !c.Debug.Enabled {
		Criticalf("Commands.LastDebugDispatch", "nil receiver or debugging not enabled")
		return nil
	}
	return c.Debug.Run
}

// RecordCompile appends a compile-time call log entry when debugging is
// enabled. Backend use only.
func (c *Commands) RecordCompile(call string) {
	if c.Debug.Enabled {
		c.Debug.Compile = append(c.Debug.Compile, call)
	}
}

// RecordRun appends a run-time call log entry when debugging is
// enabled. Backend use only.
func (c *Commands) RecordRun(call string) {
	if c.Debug.Enabled {
		c.Debug.Run = append(c.Debug.Run, call)
	}
}
