// Package enginelog provides a thin component-tagged wrapper around the
// standard logger, matching the teacher's own "[Profiler] ..." tagging
// convention in engine/profiler rather than introducing a structured
// logging library: every call on this engine's hot path is per-frame, and
// plain log.Printf is what the teacher already reaches for there.
package enginelog

import "log"

// Component names a subsystem tag prefixed to every message it logs.
type Component string

const (
	ComponentTaskPool Component = "taskpool"
	ComponentGPUSync  Component = "gpusync"
	ComponentBackend  Component = "backend"
	ComponentFrame    Component = "frame"
)

// Printf logs a component-tagged message, e.g. "[frame] stage Shadow: ...".
func Printf(c Component, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{c}, args...)...)
}
