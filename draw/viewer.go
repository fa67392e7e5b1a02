package draw

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Dosada05/championship-draw/brackets"
)

const (
	DefaultRevealCycles = 14
	defaultCycleTick    = 60 * time.Millisecond
)

// ViewState is what a viewer renders.
type ViewState struct {
	Phase Phase
	// Teams is the spinning display: the pool as announced, re-shuffled locally.
	Teams []TeamRef
	Order []TeamRef
	// Revealed holds locked-in teams in the order team_drawn events arrived.
	Revealed []TeamRef
	// Flicker is the name currently shown by the slot-machine animation.
	Flicker   string
	Revealing bool
	Total     int
	Bracket   []RoundPayload
	ByeTeams  []TeamRef
	Queued    int
}

type ViewerConfig struct {
	Scheduler Scheduler
	Rand      *rand.Rand
	// SpinTick paces the cosmetic shuffle while the presenter spins.
	SpinTick time.Duration
	// RevealCycles bounds the slot-machine animation per revealed team.
	// Zero means DefaultRevealCycles; negative reveals immediately.
	RevealCycles int
	CycleTick    time.Duration
	// OnChange is called with lock held after every visible change; it must
	// not call back into the Viewer.
	OnChange func(ViewState)
	Logger   *slog.Logger
}

// Viewer replays a presenter's broadcast. Events are applied strictly in
// arrival order: a team_drawn holds the queue until its animation locks.
type Viewer struct {
	cfg    ViewerConfig
	logger *slog.Logger

	mu     sync.Mutex
	state  ViewState
	queue  []Event
	busy   bool
	timers *ownedTimers
}

func NewViewer(cfg ViewerConfig) *Viewer {
	if cfg.SpinTick <= 0 {
		cfg.SpinTick = DefaultTiming.SpinTick
	}
	if cfg.RevealCycles == 0 {
		cfg.RevealCycles = DefaultRevealCycles
	}
	if cfg.CycleTick <= 0 {
		cfg.CycleTick = defaultCycleTick
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &Viewer{cfg: cfg, logger: logger, state: ViewState{Phase: PhaseIdle}}
	v.timers = newOwnedTimers(cfg.Scheduler, &v.mu)
	return v
}

// Attach subscribes the viewer to ch. The returned func unsubscribes and
// tears the viewer down.
func (v *Viewer) Attach(ch Channel) func() {
	unsubscribe := ch.Subscribe(v.Handle)
	return func() {
		unsubscribe()
		v.Teardown()
	}
}

// Handle accepts one event from the channel.
func (v *Viewer) Handle(ev Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Type {
	case EventDrawEnd:
		v.teardownLocked()
		return
	case EventDrawState:
		if p, ok := ev.Payload.(DrawStatePayload); ok {
			v.resumeLocked(p.Session)
		}
		return
	}

	v.queue = append(v.queue, ev)
	v.state.Queued = len(v.queue)
	v.drainLocked()
}

// Resume restores a late joiner from a persisted snapshot.
func (v *Viewer) Resume(s Session) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resumeLocked(s)
}

// Teardown clears timers, queued events and the rendered state.
func (v *Viewer) Teardown() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.teardownLocked()
}

func (v *Viewer) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyStateLocked()
}

func (v *Viewer) teardownLocked() {
	v.timers.cancelAll()
	v.queue = nil
	v.busy = false
	v.state = ViewState{Phase: PhaseIdle}
	v.notifyLocked()
}

func (v *Viewer) resumeLocked(s Session) {
	v.timers.cancelAll()
	v.queue = nil
	v.busy = false

	st := ViewState{
		Phase:    s.Phase,
		Total:    s.TotalTeams,
		Revealed: append([]TeamRef(nil), s.DrawnTeams...),
		Bracket:  s.Bracket,
		ByeTeams: s.ByeTeams,
	}
	switch s.Phase {
	case PhaseSpinning:
		st.Teams = append([]TeamRef(nil), s.Pool...)
		v.state = st
		v.timers.after(v.cfg.SpinTick, v.spinLocked)
	case PhaseDrawing, PhaseComplete:
		st.Order = append(append([]TeamRef(nil), s.DrawnTeams...), s.Pool...)
		v.state = st
	default:
		st.Teams = append([]TeamRef(nil), s.Pool...)
		v.state = st
	}
	v.notifyLocked()
}

func (v *Viewer) drainLocked() {
	for !v.busy && len(v.queue) > 0 {
		ev := v.queue[0]
		v.queue = v.queue[1:]
		v.state.Queued = len(v.queue)
		v.applyLocked(ev)
	}
}

func (v *Viewer) applyLocked(ev Event) {
	switch p := ev.Payload.(type) {
	case DrawStartPayload:
		v.timers.cancelAll()
		v.state = ViewState{
			Phase:  PhaseSpinning,
			Teams:  append([]TeamRef(nil), p.Teams...),
			Total:  p.TotalTeams,
			Queued: len(v.queue),
		}
		v.notifyLocked()
		v.timers.after(v.cfg.SpinTick, v.spinLocked)

	case ShuffleDonePayload:
		v.timers.cancelAll()
		v.state.Phase = PhaseDrawing
		v.state.Order = append([]TeamRef(nil), p.OrderedTeams...)
		v.state.Teams = append([]TeamRef(nil), p.OrderedTeams...)
		if v.state.Total == 0 {
			v.state.Total = len(p.OrderedTeams)
		}
		v.notifyLocked()

	case TeamDrawnPayload:
		if p.Index != len(v.state.Revealed) {
			v.logger.Warn("team drawn out of sequence", slog.Int("index", p.Index), slog.Int("revealed", len(v.state.Revealed)))
		}
		v.state.Phase = PhaseDrawing
		if p.Total > 0 {
			v.state.Total = p.Total
		}
		if v.cfg.RevealCycles < 0 {
			v.lockRevealLocked(p.Team)
			return
		}
		v.busy = true
		v.state.Revealing = true
		v.cycleLocked(p.Team, 0)

	case BracketCompletePayload:
		v.timers.cancelAll()
		v.state.Phase = PhaseComplete
		v.state.Bracket = p.Bracket
		v.state.ByeTeams = p.ByeTeams
		if len(p.AllTeams) > 0 {
			v.state.Order = append([]TeamRef(nil), p.AllTeams...)
		}
		v.state.Flicker = ""
		v.notifyLocked()

	default:
		v.logger.Warn("viewer ignored event", slog.String("event", string(ev.Type)))
	}
}

// cycleLocked runs one slot-machine frame. After RevealCycles frames the
// team is locked in and the queue resumes.
func (v *Viewer) cycleLocked(team TeamRef, n int) {
	if n >= v.cfg.RevealCycles {
		v.lockRevealLocked(team)
		v.busy = false
		v.drainLocked()
		return
	}
	v.state.Flicker = v.randomCandidateLocked(team)
	v.notifyLocked()
	v.timers.after(v.cfg.CycleTick, func() { v.cycleLocked(team, n+1) })
}

func (v *Viewer) lockRevealLocked(team TeamRef) {
	v.state.Revealed = append(v.state.Revealed, team)
	v.state.Flicker = team.Name
	v.state.Revealing = false
	v.notifyLocked()
}

// randomCandidateLocked picks a not yet revealed name to flash.
func (v *Viewer) randomCandidateLocked(team TeamRef) string {
	revealed := make(map[string]struct{}, len(v.state.Revealed))
	for _, t := range v.state.Revealed {
		revealed[t.ID] = struct{}{}
	}
	var names []string
	for _, t := range v.state.Order {
		if _, ok := revealed[t.ID]; !ok {
			names = append(names, t.Name)
		}
	}
	if len(names) == 0 {
		return team.Name
	}
	return brackets.Shuffle(names, v.cfg.Rand)[0]
}

func (v *Viewer) spinLocked() {
	if v.state.Phase != PhaseSpinning {
		return
	}
	v.state.Teams = brackets.Shuffle(v.state.Teams, v.cfg.Rand)
	v.notifyLocked()
	v.timers.after(v.cfg.SpinTick, v.spinLocked)
}

func (v *Viewer) notifyLocked() {
	if v.cfg.OnChange != nil {
		v.cfg.OnChange(v.copyStateLocked())
	}
}

func (v *Viewer) copyStateLocked() ViewState {
	s := v.state
	s.Teams = append([]TeamRef(nil), s.Teams...)
	s.Order = append([]TeamRef(nil), s.Order...)
	s.Revealed = append([]TeamRef(nil), s.Revealed...)
	return s
}
