package genstate

import (
	"sync"

	"github.com/tebeka/atexit"
)

// Initialize and Destroy generalize the source's MemoryManager::Initialize/Destroy pairing
// (base/inc/MemoryManager.h): process-wide singleton state that must be torn down once, on exit,
// regardless of which call site last touched it. Initialize registers an atexit.Register hook the
// first time it runs; main.go calls Initialize once at startup, and every teardown runs through
// Destroy instead of each collaborator remembering to clean up after itself.
var (
	lifecycleOnce     sync.Once
	destroyFuncsMutex sync.Mutex
	destroyFuncs      []func()
)

// Initialize registers the process-wide exit hook that invokes every teardown function passed to
// RegisterDestroy. It is idempotent: only the first call has any effect.
func Initialize() {
	lifecycleOnce.Do(func() {
		atexit.Register(Destroy)
	})
}

// RegisterDestroy adds fn to the set of teardown functions Destroy invokes. Call sites that own
// process-wide state (the data station, the register arena's init-policy cache, ...) register
// their cleanup here instead of requiring main.go to know about every collaborator.
func RegisterDestroy(fn func()) {
	destroyFuncsMutex.Lock()
	defer destroyFuncsMutex.Unlock()

	destroyFuncs = append(destroyFuncs, fn)
}

// Destroy runs every registered teardown function, in reverse registration order, mirroring the
// source's Destroy() static method. It is safe to call directly (e.g. from tests) in addition to
// the atexit-triggered invocation.
func Destroy() {
	destroyFuncsMutex.Lock()
	fns := make([]func(), len(destroyFuncs))
	copy(fns, destroyFuncs)
	destroyFuncsMutex.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
