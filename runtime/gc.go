package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Heap owns every live Object and runs mark-and-sweep collection on a
// background goroutine (spec §5.2). The evaluator's main thread keeps
// running while a collection is in progress; it does not pause for the
// collector. Roster access is mutex-protected since the main thread
// inserts and the collector goroutine sweeps concurrently.
type Heap struct {
	mu      sync.Mutex
	objects map[uuid.UUID]*Object

	gcRequested atomic.Bool
	stopGC      chan struct{}
	wake        chan struct{}
	wg          sync.WaitGroup

	roots func() []*Object
}

func NewHeap() *Heap {
	return &Heap{
		objects: make(map[uuid.UUID]*Object),
		stopGC:  make(chan struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// Start launches the collector goroutine. roots must return every Object
// currently reachable from live environments and tracked globals.
func (h *Heap) Start(roots func() []*Object) {
	h.roots = roots
	h.wg.Add(1)
	go h.loop()
}

func (h *Heap) Stop() {
	close(h.stopGC)
	h.wg.Wait()
}

func (h *Heap) loop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.stopGC:
			return
		case <-h.wake:
			h.collect()
		}
	}
}

// RequestGC is called by `destroy`; it wakes the collector without
// blocking the caller (spec §5.2: gc_requested is advisory, not a hard
// stop-the-world signal).
func (h *Heap) RequestGC() {
	if h.gcRequested.CompareAndSwap(false, true) {
		select {
		case h.wake <- struct{}{}:
		default:
		}
	}
}

func (h *Heap) Register(o *Object) {
	h.mu.Lock()
	h.objects[o.ID] = o
	h.mu.Unlock()
}

func (h *Heap) collect() {
	defer h.gcRequested.Store(false)
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, o := range h.objects {
		o.marked = false
	}
	var mark func(o *Object)
	visited := make(map[uuid.UUID]bool)
	mark = func(o *Object) {
		if o == nil || visited[o.ID] {
			return
		}
		visited[o.ID] = true
		o.marked = true
		for _, v := range o.Fields {
			if v.Kind == KindObject && v.Obj != nil {
				mark(v.Obj)
			}
			if v.Kind == KindArray {
				for _, e := range v.Arr {
					if e.Kind == KindObject {
						mark(e.Obj)
					}
				}
			}
		}
	}
	for _, root := range h.roots() {
		mark(root)
	}
	for id, o := range h.objects {
		if !o.marked && !o.Class.HasTrackedFields {
			o.skipDtor = true
			o.Fields = map[string]Value{}
			delete(h.objects, id)
		}
	}
}

// Count returns the number of live tracked objects (used by tests).
func (h *Heap) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects)
}

// AllObjects returns every object still registered in the heap, used by
// the evaluator's end-of-shot finalization pass (spec §4.3.7).
func (h *Heap) AllObjects() []*Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Object, 0, len(h.objects))
	for _, o := range h.objects {
		out = append(out, o)
	}
	return out
}
