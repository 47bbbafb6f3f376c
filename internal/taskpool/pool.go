package taskpool

import (
	"sync"
	"sync/atomic"
	"time"
)

// job is a queued, possibly-rescheduled unit of work. Invoked with
// threadWaitingCall=true when it is being considered for cooperative
// reentry (a task is spinning on Wait); a job that can't make progress in
// that mode returns false and is put back on the queue for later.
type job func(threadWaitingCall bool) bool

// pool is the unexported implementation of Pool.
type pool struct {
	ring *slotRing

	queue   chan job
	closeCh chan struct{}
	wg      sync.WaitGroup

	idCounter atomic.Uint64
	running   atomic.Int32

	callbacksMu sync.Mutex
	callbacks   map[uint64]func()
	completedID chan uint64

	doneMu   sync.Mutex
	doneCond *sync.Cond

	threadNamer func(workerIndex int)
	workerCount int
}

// Pool is the task pool contract: submit callables, wait on individual
// tasks or on all outstanding work, and parallelize a bounded range of
// work with ParallelFor. A blocked Wait call cooperatively runs other
// queued tasks instead of idling (see ThreadWaiting).
type Pool interface {
	// CreateTask allocates a Task from the pool's bounded slot ring. If
	// parent is non-nil its child count is incremented so Wait(parent)
	// will not return until this Task (and its own descendants) finish.
	//
	// Returns ErrSlotRingExhausted if no slot freed up within the bounded
	// retry count — this is fatal; callers should size the ring generously
	// rather than retry in a loop.
	CreateTask(parent *Task, payload func(*Task), allowInIdle bool) (*Task, error)

	// Start enqueues a Task for execution. PriorityRealtime runs the
	// payload inline on the calling goroutine; any other priority enqueues
	// it onto the worker queue, falling back to inline execution if the
	// queue is full. onCompletion, if non-nil, is recorded and later
	// delivered via FlushCallbackQueue once the task finishes (never
	// invoked cross-goroutine directly); with PriorityRealtime it is ignored.
	Start(t *Task, priority Priority, onCompletion func()) error

	// Wait blocks until t is finished, cooperatively running other queued
	// tasks (ThreadWaiting) while it spins, with a short bounded wait
	// between checks to avoid busy-burning a core when the queue is empty.
	Wait(t *Task)

	// WaitForAll blocks until every outstanding task has completed. Must
	// only be called from the pool's owning/driver goroutine. If
	// flushCallbacks is true, FlushCallbackQueue is invoked once draining
	// completes.
	WaitForAll(flushCallbacks bool)

	// FlushCallbackQueue drains completed-task IDs and invokes their
	// registered completion callbacks on the calling goroutine. Returns
	// the number of callbacks invoked.
	FlushCallbackQueue() int

	// ParallelFor partitions [0, iterCount) into chunks of partitionSize
	// and issues one Task per partition, per ParallelForOptions.
	ParallelFor(iterCount, partitionSize int, opts ParallelForOptions, body func(start, end int))

	// ThreadWaiting attempts to execute one queued task in cooperative
	// reentry mode, returning true if a task was picked up (whether or
	// not it could make progress). Used internally by Wait and exposed so
	// ParallelFor's pool-idle wait path can share it.
	ThreadWaiting() bool

	// RunningCount returns the number of tasks currently in flight.
	RunningCount() int32

	// Shutdown waits for the running counter to reach zero, flushes the
	// completion callbacks, then stops and joins all worker goroutines.
	// Later Start and CreateTask calls are not rejected.
	Shutdown()
}

var _ Pool = &pool{}

// New creates a Pool with workerCount worker goroutines. Options configure
// the slot-ring size, queue capacity, and a thread-naming hook (mirrors the
// teacher/original's worker thread-name prefixing).
func New(workerCount int, opts ...PoolOption) Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	p := &pool{
		queue:       make(chan job, 4096),
		closeCh:     make(chan struct{}),
		callbacks:   make(map[uint64]func()),
		completedID: make(chan uint64, 4096),
		workerCount: workerCount,
	}
	p.doneCond = sync.NewCond(&p.doneMu)
	for _, opt := range opts {
		opt(p)
	}
	if p.ring == nil {
		p.ring = newSlotRing(4096)
	}

	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.workerLoop(i)
	}
	return p
}

func (p *pool) workerLoop(index int) {
	defer p.wg.Done()
	if p.threadNamer != nil {
		p.threadNamer(index)
	}
	for {
		select {
		case <-p.closeCh:
			return
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			if !j(false) {
				p.reschedule(j)
			}
		}
	}
}

// reschedule puts a job that declined to run (because it was invoked in
// thread-waiting mode and its children aren't finished yet) back on the
// queue. The non-blocking path covers the overwhelmingly common case; the
// fallback goroutine only fires if the queue happens to be momentarily full.
func (p *pool) reschedule(j job) {
	select {
	case p.queue <- j:
	default:
		go func() { p.queue <- j }()
	}
}

func (p *pool) CreateTask(parent *Task, payload func(*Task), allowInIdle bool) (*Task, error) {
	if parent != nil {
		parent.children.Add(1)
	}
	t, err := p.ring.claim()
	if err != nil {
		if parent != nil {
			parent.children.Add(-1)
		}
		return nil, err
	}
	t.id = p.idCounter.Add(1)
	t.parent = parent
	t.allowInIdle = allowInIdle
	t.callback = payload
	return t, nil
}

func (p *pool) Start(t *Task, priority Priority, onCompletion func()) error {
	isRealtime := priority == PriorityRealtime
	hasCallback := !isRealtime && onCompletion != nil

	poolJob := func(threadWaitingCall bool) bool {
		for t.children.Load() > 1 {
			if threadWaitingCall {
				return false
			}
			p.ThreadWaiting()
		}
		if !threadWaitingCall || t.allowInIdle {
			if t.callback != nil {
				t.callback(t)
			}
			p.taskCompleted(t, hasCallback)
			return true
		}
		return false
	}

	p.running.Add(1)

	if !isRealtime {
		if hasCallback {
			p.callbacksMu.Lock()
			p.callbacks[t.id] = onCompletion
			p.callbacksMu.Unlock()
		}
		select {
		case p.queue <- poolJob:
			return nil
		default:
			// Queue momentarily full: fall back to inline execution per
			// spec.md §4.C1 failure semantics rather than block the caller
			// or drop the task.
		}
	}

	if !poolJob(false) {
		// Only reachable if a realtime/fallback task's children aren't
		// finished yet, which can't happen for a freshly started task.
		p.reschedule(poolJob)
	}
	return nil
}

func (p *pool) taskCompleted(t *Task, hasCallback bool) {
	t.callback = nil
	if hasCallback {
		select {
		case p.completedID <- t.id:
		default:
			go func(id uint64) { p.completedID <- id }(t.id)
		}
	}

	if t.parent != nil {
		t.parent.children.Add(-1)
	}
	t.children.Add(-1)
	p.running.Add(-1)

	p.doneMu.Lock()
	p.doneCond.Broadcast()
	p.doneMu.Unlock()
}

func (p *pool) ThreadWaiting() bool {
	select {
	case j := <-p.queue:
		if !j(true) {
			p.reschedule(j)
		}
		return true
	default:
		return false
	}
}

func (p *pool) Wait(t *Task) {
	for !t.Finished() {
		p.ThreadWaiting()
		p.condWaitTimeout(2 * time.Millisecond)
	}
}

// condWaitTimeout blocks on doneCond for at most d, so a missed Broadcast
// (e.g. the completion happened between the Finished() check and the Wait
// call) can never deadlock Wait.
func (p *pool) condWaitTimeout(d time.Duration) {
	p.doneMu.Lock()
	timer := time.AfterFunc(d, func() {
		p.doneMu.Lock()
		p.doneCond.Broadcast()
		p.doneMu.Unlock()
	})
	p.doneCond.Wait()
	timer.Stop()
	p.doneMu.Unlock()
}

func (p *pool) WaitForAll(flushCallbacks bool) {
	p.doneMu.Lock()
	for p.running.Load() != 0 {
		p.doneCond.Wait()
	}
	p.doneMu.Unlock()

	if flushCallbacks {
		p.FlushCallbackQueue()
	}
}

func (p *pool) FlushCallbackQueue() int {
	count := 0
	for {
		select {
		case id := <-p.completedID:
			p.callbacksMu.Lock()
			cb := p.callbacks[id]
			delete(p.callbacks, id)
			p.callbacksMu.Unlock()
			if cb != nil {
				cb()
			}
			count++
		default:
			return count
		}
	}
}

func (p *pool) RunningCount() int32 {
	return p.running.Load()
}

func (p *pool) Shutdown() {
	p.WaitForAll(true)
	close(p.closeCh)
	p.wg.Wait()
}
