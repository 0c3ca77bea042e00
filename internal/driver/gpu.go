// SPDX-License-Identifier: Unlicense OR MIT

package driver

import (
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Gpu is the process-facing handle to a backend. Every other object
// holds one strong reference to the Gpu that created it.
type Gpu struct {
	refs atomic.Int32

	// mu is the data lock. It is only taken when the claim discipline
	// is active and must never be held across driver calls that could
	// re-enter the frontend.
	mu sync.Mutex

	threadsafe  bool
	logErrors   bool
	exitOnError bool

	impl Device
}

// NewGpu selects a backend from flags and initializes it. User errors
// (no backend flag, unimplemented backend) log a critical and return a
// nil Gpu with a nil error.
func NewGpu(flags uint32, loader func(name string) unsafe.Pointer) (*Gpu, error) {
	var mk func(uint32, func(string) unsafe.Pointer) (Device, error)
	switch {
	case flags&InitFlagBackendVulkan != 0:
		Criticalf("NewGpu", "cannot initialize Vulkan backend: not implemented yet")
	case flags&InitFlagBackendOpenGL != 0:
		mk = NewOpenGLDevice
		if mk == nil {
			Criticalf("NewGpu", "OpenGL backend is not linked in")
		}
	default:
		Criticalf("NewGpu", "cannot initialize backend, pass InitFlagBackendOpenGL or InitFlagBackendVulkan")
	}
	if mk == nil {
		return nil, nil
	}

	impl, err := mk(flags, loader)
	if err != nil {
		Criticalf("NewGpu", "could not initialize backend: %v", err)
		if flags&InitFlagExitOnError != 0 {
			Fatalf("NewGpu", "backend initialization failed and GPU has been configured to exit")
		}
		return nil, err
	}

	g := &Gpu{
		impl:        impl,
		threadsafe:  flags&InitFlagNoThreadSafety == 0,
		logErrors:   flags&InitFlagLogErrors != 0,
		exitOnError: flags&InitFlagExitOnError != 0,
	}
	g.refs.Store(1)
	return g, nil
}

// Ref takes a strong reference.
func (g *Gpu) Ref() *Gpu {
	if g == nil {
		Criticalf("Gpu.Ref", "nil receiver")
		return nil
	}
	g.refs.Add(1)
	return g
}

// Unref releases a strong reference, finishing the backend when the
// last one drops.
func (g *Gpu) Unref() {
	if g == nil {
		Criticalf("Gpu.Unref", "nil receiver")
		return
	}
	if g.refs.Add(-1) == 0 {
		g.impl.FinishGpu()
	}
}

// Impl exposes the backend vtable to sibling internal packages.
func (g *Gpu) Impl() Device { return g.impl }

// dealWithThreads reports whether the claim discipline applies: the
// backend is not natively thread-safe and checking was not disabled.
func (g *Gpu) dealWithThreads() bool {
	return !g.impl.Threadsafe() && g.threadsafe
}

func (g *Gpu) enter() {
	if g.dealWithThreads() {
		g.mu.Lock()
	}
}

func (g *Gpu) leave() {
	if g.dealWithThreads() {
		g.mu.Unlock()
	}
}

func (g *Gpu) hasThread() bool {
	return g.impl.Threadsafe() || !g.threadsafe || g.impl.CurrentGpu() == g
}

// tryEnter takes the data lock and verifies the thread claim. On
// mismatch it logs a critical and leaves the caller to return a
// neutral value.
func (g *Gpu) tryEnter(fn string) bool {
	g.enter()
	if !g.hasThread() {
		g.leave()
		Criticalf(fn, "GPU does not own the current thread. Returning!")
		return false
	}
	return true
}

// backendError applies the central error policy: log when configured,
// terminate when configured, swallow user errors, propagate the rest.
func (g *Gpu) backendError(fn string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUser) {
		if g.logErrors {
			Criticalf(fn, "Backend reported a user error.")
		}
		if g.exitOnError {
			Fatalf(fn, "the backend check did not pass and GPU has been configured to exit")
		}
		return nil
	}
	if g.logErrors {
		Criticalf(fn, "Backend reported an error: %v", err)
	}
	if g.exitOnError {
		Fatalf(fn, "the backend check did not pass and GPU has been configured to exit")
	}
	return err
}

// GetInfo retrieves backend information through a string key. The
// OpenGL backend recognizes "vendor", "renderer", "version" and
// "shading language version".
func (g *Gpu) GetInfo(param string) (string, error) {
	if g == nil || param == "" {
		Criticalf("Gpu.GetInfo", "nil receiver or empty parameter")
		return "", nil
	}
	if !g.tryEnter("Gpu.GetInfo") {
		return "", nil
	}
	info, err := g.impl.GetInfo(param)
	g.leave()
	if err = g.backendError("Gpu.GetInfo", err); err != nil {
		return "", err
	}
	return info, nil
}

// StealThisThread associates the Gpu with the calling thread. Pair it
// with the action that made the context current there. Reports whether
// the association was newly made; always reports true, and records
// nothing, when the claim discipline does not apply.
func (g *Gpu) StealThisThread() bool {
	if g == nil {
		Criticalf("Gpu.StealThisThread", "nil receiver")
		return false
	}
	if !g.dealWithThreads() {
		return true
	}
	wasSet := false
	g.enter()
	if owner := g.impl.CurrentGpu(); owner != g {
		g.impl.SetCurrentGpu(g)
		wasSet = true
	}
	g.leave()
	return wasSet
}

// ReleaseThisThread undoes StealThisThread.
func (g *Gpu) ReleaseThisThread() {
	if g == nil {
		Criticalf("Gpu.ReleaseThisThread", "nil receiver")
		return
	}
	if !g.dealWithThreads() {
		return
	}
	g.enter()
	if g.impl.CurrentGpu() == g {
		g.impl.SetCurrentGpu(nil)
	}
	g.leave()
}

// Flush brings the context up to date, releasing resources whose last
// reference dropped since the previous flush.
func (g *Gpu) Flush() error {
	if g == nil {
		Criticalf("Gpu.Flush", "nil receiver")
		return nil
	}
	if !g.tryEnter("Gpu.Flush") {
		return nil
	}
	err := g.impl.Flush()
	g.leave()
	return g.backendError("Gpu.Flush", err)
}
