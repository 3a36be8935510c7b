// Package trace provides stdlib-only execution tracing for the
// evaluator, mirroring the teacher's trace/tracer.go: a global tracer
// instance, glob filters, and a mutex-guarded io.Writer. Generalized
// from MOO's per-verb CALL/RETURN/EXCEPTION/NOTIFY events to Quill's
// domain: closure calls, intrinsic calls, and GC cycles.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"quill/diag"
	"quill/value"
)

// Tracer writes step-level evaluator events to a writer, filtered by
// callee-name glob patterns.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

var globalTracer *Tracer

// Init initializes the global tracer. A nil writer defaults to stderr.
func Init(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	globalTracer = &Tracer{enabled: enabled, filters: filters, writer: writer}
}

// IsEnabled reports whether the global tracer was initialized enabled.
func IsEnabled() bool {
	return globalTracer != nil && globalTracer.enabled
}

func (t *Tracer) matchesFilter(name string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// ClosureCall logs entry into a closure call at loc with its
// already-evaluated argument values.
func (t *Tracer) ClosureCall(loc diag.SourceLocation, args []value.Value) {
	if !t.enabled || !t.matchesFilter("closure") {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] CALL closure at %s args=%s\n", loc, renderArgs(args))
}

// ClosureReturn logs a closure call's return value.
func (t *Tracer) ClosureReturn(loc diag.SourceLocation, result value.Value) {
	if !t.enabled || !t.matchesFilter("closure") {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] RETURN closure at %s => %s\n", loc, value.Render(result))
}

// IntrinsicCall logs dispatch of a named intrinsic.
func (t *Tracer) IntrinsicCall(name string, loc diag.SourceLocation, args []value.Value) {
	if !t.enabled || !t.matchesFilter(name) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] CALL %s at %s args=%s\n", name, loc, renderArgs(args))
}

// Exception logs a diagnostic raised during evaluation.
func (t *Tracer) Exception(d *diag.Diagnostic) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] EXCEPTION %s\n", d.Error())
}

// Collect logs one completed GC cycle.
func (t *Tracer) Collect(stepCount, reclaimed, liveAfter int) {
	if !t.enabled || !t.matchesFilter("gc") {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE]   GC at step %d: reclaimed=%d live=%d\n", stepCount, reclaimed, liveAfter)
}

func renderArgs(args []value.Value) string {
	out := "["
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += value.Render(a)
	}
	return out + "]"
}

// Global convenience functions mirroring the teacher's package-level
// wrappers, each a no-op when the global tracer was never Init'd.

func ClosureCall(loc diag.SourceLocation, args []value.Value) {
	if globalTracer != nil {
		globalTracer.ClosureCall(loc, args)
	}
}

func ClosureReturn(loc diag.SourceLocation, result value.Value) {
	if globalTracer != nil {
		globalTracer.ClosureReturn(loc, result)
	}
}

func IntrinsicCall(name string, loc diag.SourceLocation, args []value.Value) {
	if globalTracer != nil {
		globalTracer.IntrinsicCall(name, loc, args)
	}
}

func Exception(d *diag.Diagnostic) {
	if globalTracer != nil {
		globalTracer.Exception(d)
	}
}

func Collect(stepCount, reclaimed, liveAfter int) {
	if globalTracer != nil {
		globalTracer.Collect(stepCount, reclaimed, liveAfter)
	}
}
