package renderer

import (
	"sort"

	"github.com/Mara-Voss/glimmer-core/engine/renderer/bind_group_provider"
	"github.com/Mara-Voss/glimmer-core/internal/cmdbuffer"
)

// pendingTextureBind is one BindShaderResources command queued since the
// last draw, waiting to be coalesced into the bind-group list passed to
// the next DrawCall.
type pendingTextureBind struct {
	usageClass cmdbuffer.UsageClass
	provider   bind_group_provider.BindGroupProvider
}

// queueTextureBind resolves the handle(s) referenced by a
// BindShaderResources command to a BindGroupProvider and queues it for the
// next draw. A binding may name a texture, a sampler, or a storage image;
// the registry is tried in that order since the teacher's provider model
// bundles all three behind one combined bind group.
func (s *submitState) queueTextureBind(c cmdbuffer.BindShaderResources) {
	for _, h := range []cmdbuffer.Handle{c.Binding.Texture, c.Binding.Sampler, c.Binding.StorageImg} {
		if !h.Valid() {
			continue
		}
		if p, ok := s.reg.BindGroup(h); ok {
			s.pendingBinds = append(s.pendingBinds, pendingTextureBind{usageClass: c.UsageClass, provider: p})
			return
		}
	}
}

// flushCoalescedBinds builds the bind-group list for the next draw call,
// per usage class from finest (UsagePerDraw) to coarsest (UsagePerFrame):
//
//   - a class with a fresh queued bind sends that bind and remembers it as
//     the class's current binding;
//   - a class with no fresh bind but still marked dirty (e.g. a coarser
//     rebind invalidated it) re-sends whatever was last bound for it;
//   - a class that is neither freshly bound nor dirty is skipped entirely —
//     its bind group is already current on the GPU from an earlier draw,
//     satisfying spec.md §4.C5's skip-unchanged-bindings requirement.
//
// Only the classes actually resent this way are cleared; anything skipped
// stays dirty so it is still considered unresolved for the next draw.
func (s *submitState) flushCoalescedBinds() []bind_group_provider.BindGroupProvider {
	fresh := s.drainPendingBindsByClass()

	var groups []bind_group_provider.BindGroupProvider
	var resent [4]bool
	for c := cmdbuffer.UsagePerDraw; c <= cmdbuffer.UsagePerFrame; c++ {
		if providers, ok := fresh[c]; ok {
			s.lastBound[c] = providers
			groups = append(groups, providers...)
			resent[c] = true
			continue
		}
		if s.dirty.isDirty(c) && len(s.lastBound[c]) > 0 {
			groups = append(groups, s.lastBound[c]...)
			resent[c] = true
		}
	}

	s.dirty.clear(resent)
	return groups
}

// drainPendingBindsByClass sorts and deduplicates the queued texture binds
// by provider label, folding repeated rebinds of the same provider (a
// common pattern when a material rebinds its own set before every
// sub-mesh) into a single entry, then groups what remains by usage class.
func (s *submitState) drainPendingBindsByClass() map[cmdbuffer.UsageClass][]bind_group_provider.BindGroupProvider {
	if len(s.pendingBinds) == 0 {
		return nil
	}

	sort.SliceStable(s.pendingBinds, func(i, j int) bool {
		return s.pendingBinds[i].provider.Label() < s.pendingBinds[j].provider.Label()
	})

	seen := make(map[string]bool, len(s.pendingBinds))
	byClass := make(map[cmdbuffer.UsageClass][]bind_group_provider.BindGroupProvider)
	for _, b := range s.pendingBinds {
		label := b.provider.Label()
		if seen[label] {
			continue
		}
		seen[label] = true
		byClass[b.usageClass] = append(byClass[b.usageClass], b.provider)
	}

	s.pendingBinds = s.pendingBinds[:0]
	return byClass
}
