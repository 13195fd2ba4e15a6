package genstate

import (
	"fmt"

	"github.com/smoynes/forge/internal/log"
)

// FatalError is the typed panic value raised by Fail: an invariant violation or unsupported
// request that the generator cannot recover from (spec.md §7). It generalizes the source's FAIL
// macro, which logs a category tag and aborts the process; here, nothing recovers the panic, so
// it aborts the process with Go's panic report, which prints the FatalError and its category.
type FatalError struct {
	Category string
	Args     []any
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Category, e.Args)
}

// logger used by Fail; defaults to the package logger and can be overridden for tests that want
// to assert on the emitted log line without a panic escaping.
var logger = log.DefaultLogger()

// SetLogger overrides the logger Fail writes to.
func SetLogger(l *log.Logger) { logger = l }

// Fail logs category and args at Error level and panics with a *FatalError. Every call site that
// detects an invariant violation (sorted-order broken, pop from empty stack, insert into an
// in-use slot, mode-pop underflow, ...) should call this rather than returning an error, mirroring
// the source's FAIL("category", ...) call sites throughout base/src/*.cc.
func Fail(category string, args ...any) {
	logger.Error("fatal: "+category, args...)
	panic(&FatalError{Category: category, Args: args})
}
