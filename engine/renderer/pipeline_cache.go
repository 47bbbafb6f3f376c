package renderer

// pipelineCache tracks per-submit recency on top of the renderer's
// existing map[string]pipeline.Pipeline, evicting the least-recently-used
// entries once the cache grows past a high watermark. The teacher's cache
// never evicts; C5 adds eviction because a long-running frame engine binds
// many transient one-off pipelines (per-material shadow variants, debug
// overlays) that would otherwise accumulate GPU pipeline objects forever.
type pipelineCache struct {
	r *renderer

	order   []string // least-recently-used at index 0
	tracked map[string]bool
}

// evictHighWatermark is the pipeline-cache size at which touch starts
// evicting the least-recently-used entries down to evictLowWatermark.
const (
	evictHighWatermark = 256
	evictLowWatermark  = 192
)

func newPipelineCache(r *renderer) *pipelineCache {
	return &pipelineCache{r: r, tracked: make(map[string]bool)}
}

// touch marks key as most-recently-used, evicting cold entries from the
// renderer's pipeline cache if it has grown past the high watermark.
func (pc *pipelineCache) touch(key string) {
	if pc.tracked[key] {
		pc.removeFromOrder(key)
	}
	pc.tracked[key] = true
	pc.order = append(pc.order, key)

	pc.evictIfNeeded()
}

func (pc *pipelineCache) removeFromOrder(key string) {
	for i, k := range pc.order {
		if k == key {
			pc.order = append(pc.order[:i], pc.order[i+1:]...)
			return
		}
	}
}

func (pc *pipelineCache) evictIfNeeded() {
	pc.r.mu.Lock()
	defer pc.r.mu.Unlock()

	if !pc.r.usePipelineCache {
		return
	}
	if len(pc.r.pipelineCache) <= evictHighWatermark {
		return
	}
	for len(pc.order) > 0 && len(pc.r.pipelineCache) > evictLowWatermark {
		victim := pc.order[0]
		pc.order = pc.order[1:]
		delete(pc.tracked, victim)
		delete(pc.r.pipelineCache, victim)
	}
}
