package draw

import (
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot timers. Tests swap in a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler fires timers on the wall clock.
var SystemScheduler Scheduler = systemScheduler{}

// ownedTimers is the exclusive set of pending timers of one state machine.
// Callbacks run with lock held and are dropped if cancelAll ran after they
// were armed.
type ownedTimers struct {
	sched   Scheduler
	lock    sync.Locker
	pending map[*timerEntry]struct{}
	gen     uint64
}

type timerEntry struct {
	t Timer
}

func newOwnedTimers(sched Scheduler, lock sync.Locker) *ownedTimers {
	if sched == nil {
		sched = SystemScheduler
	}
	return &ownedTimers{sched: sched, lock: lock, pending: make(map[*timerEntry]struct{})}
}

// after must be called with lock held.
func (o *ownedTimers) after(d time.Duration, fn func()) {
	gen := o.gen
	e := &timerEntry{}
	e.t = o.sched.AfterFunc(d, func() {
		o.lock.Lock()
		defer o.lock.Unlock()
		if o.gen != gen {
			return
		}
		delete(o.pending, e)
		fn()
	})
	o.pending[e] = struct{}{}
}

// cancelAll must be called with lock held.
func (o *ownedTimers) cancelAll() {
	for e := range o.pending {
		e.t.Stop()
	}
	clear(o.pending)
	o.gen++
}

func (o *ownedTimers) count() int {
	return len(o.pending)
}
