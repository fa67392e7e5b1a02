// Package drawtest holds fakes for driving draws deterministically in tests.
package drawtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/championship-draw/draw"
)

// ManualScheduler is a draw.Scheduler whose clock only moves on Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) draw.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing due timers earliest first.
// Timers armed by callbacks fire too if they fall within the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// RunAll fires timers until none remain, up to limit callbacks. It returns
// the number fired.
func (s *ManualScheduler) RunAll(limit int) int {
	n := 0
	for n < limit {
		s.mu.Lock()
		live := s.liveLocked()
		if len(live) == 0 {
			s.mu.Unlock()
			return n
		}
		target := live[0].at
		s.mu.Unlock()

		t := s.nextDue(target)
		if t == nil {
			continue
		}
		t.fn()
		n++
	}
	return n
}

// Pending reports armed timers that have neither fired nor been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.liveLocked())
}

func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// nextDue pops the earliest live timer due by target and moves the clock to it.
func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.liveLocked()
	if len(live) == 0 || live[0].at > target {
		return nil
	}
	t := live[0]
	t.fired = true
	if t.at > s.now {
		s.now = t.at
	}
	return t
}

func (s *ManualScheduler) liveLocked() []*manualTimer {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			kept = append(kept, t)
		}
	}
	s.timers = kept
	live := append([]*manualTimer(nil), kept...)
	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	return live
}

// Recorder is a draw.Channel that keeps every published event.
type Recorder struct {
	*draw.MemoryChannel

	mu     sync.Mutex
	events []draw.Event
	// Err, when set, is returned from Publish after recording the event.
	Err error
}

func NewRecorder() *Recorder {
	return &Recorder{MemoryChannel: draw.NewMemoryChannel()}
}

func (r *Recorder) Publish(ctx context.Context, ev draw.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	err := r.Err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.MemoryChannel.Publish(ctx, ev)
}

func (r *Recorder) Events() []draw.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]draw.Event(nil), r.events...)
}

func (r *Recorder) Types() []draw.EventType {
	events := r.Events()
	types := make([]draw.EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

// SnapshotStore is an in-memory draw.SnapshotStore.
type SnapshotStore struct {
	mu       sync.Mutex
	sessions map[string]draw.Session
	saves    int
	deletes  int
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{sessions: make(map[string]draw.Session)}
}

func (s *SnapshotStore) SaveDrawState(_ context.Context, tournamentID string, session draw.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tournamentID] = session
	s.saves++
	return nil
}

func (s *SnapshotStore) DeleteDrawState(_ context.Context, tournamentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tournamentID)
	s.deletes++
	return nil
}

func (s *SnapshotStore) LoadDrawState(_ context.Context, tournamentID string) (*draw.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[tournamentID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *SnapshotStore) Counts() (saves, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves, s.deletes
}
