package renderer

import "github.com/Mara-Voss/glimmer-core/internal/cmdbuffer"

// descriptorDirtyTracker implements spec.md §4.C5's descriptor-set
// dirty-flag tracking: rebinding a coarser usage class marks every
// finer-grained class dirty too, so the first draw after a frame-level
// rebind re-sends all of its bind groups even if nothing changed at the
// per-draw level. A class stays clean (and so unsent) across draws that
// neither queue a fresh bind for it nor mark it dirty via a coarser rebind.
type descriptorDirtyTracker struct {
	dirty [4]bool // indexed by cmdbuffer.UsageClass
}

func newDescriptorDirtyTracker() *descriptorDirtyTracker {
	d := &descriptorDirtyTracker{}
	for i := range d.dirty {
		d.dirty[i] = true // everything starts dirty before the first bind
	}
	return d
}

// markDirty flags usage and every finer-grained class below it. Classes
// are ordered fine-to-coarse as UsagePerDraw < UsagePerBatch < UsagePerPass
// < UsagePerFrame, matching spec.md §3's binding hierarchy.
func (d *descriptorDirtyTracker) markDirty(usage cmdbuffer.UsageClass) {
	for c := cmdbuffer.UsagePerDraw; c <= usage; c++ {
		d.dirty[c] = true
	}
}

// isDirty reports whether usage's bind group must be (re-)sent on the next
// draw — either nothing has been bound for it yet, or a coarser rebind
// invalidated whatever was last bound.
func (d *descriptorDirtyTracker) isDirty(usage cmdbuffer.UsageClass) bool {
	return d.dirty[usage]
}

// clear resets the dirty flag for each usage class resent reports true for,
// leaving the rest dirty so a later draw still re-sends them.
func (d *descriptorDirtyTracker) clear(resent [4]bool) {
	for c, done := range resent {
		if done {
			d.dirty[c] = false
		}
	}
}
