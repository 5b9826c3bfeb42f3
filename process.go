package linepipe

import "github.com/samber/lo"

// Sentinel is the end-of-stream line. Stages never transform it: they forward it and stop.
const Sentinel = "<END>"

// Process defines a basic function which update a variable and return the updated variable
type Process[T any] func(T) T

// Transform is the processing function of a stage.
//
// It must return Sentinel unchanged, must not keep its input after returning, and is only ever called from the
// stage's own worker, one line at a time. A line transformed into Sentinel is dropped, so it never ends the
// stream early.
type Transform = Process[string]

// Link merges several Process to one, applied in order.
func Link[T any](procs ...Process[T]) Process[T] {
	return func(t T) T {
		return lo.Reduce(procs, func(val T, proc Process[T], _ int) T { return proc(val) }, t)
	}
}

// PassSentinel decorates proc so that Sentinel goes through untouched.
func PassSentinel(proc Transform) Transform {
	return func(s string) string {
		if s == Sentinel {
			return s
		}
		return proc(s)
	}
}
