package draw

import (
	"fmt"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/models"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSpinning Phase = "spinning"
	PhaseDrawing  Phase = "drawing"
	PhaseComplete Phase = "complete"
)

// State is one phase of a draw. Each concrete type carries only the fields
// valid in that phase.
type State interface {
	Phase() Phase
	isState()
}

// Idle shows the approved pool as fetched, before any shuffling. Broadcast
// is set when the session went live earlier, as after a redraw, so viewers
// may still be showing its last bracket.
type Idle struct {
	Pool      []models.Team
	Broadcast bool
}

// Spinning re-shuffles the whole pool for show. Tick counts cosmetic shuffles.
type Spinning struct {
	Pool []models.Team
	Tick int
}

// Drawing reveals Order one team at a time. Order[:Drawn] are revealed and
// Order[Drawn:] is the remaining pool.
type Drawing struct {
	Order []models.Team
	Drawn int
}

// Complete holds the final draw order and the bracket built from it.
type Complete struct {
	Order   []models.Team
	Bracket *brackets.Bracket
}

func (Idle) Phase() Phase     { return PhaseIdle }
func (Spinning) Phase() Phase { return PhaseSpinning }
func (Drawing) Phase() Phase  { return PhaseDrawing }
func (Complete) Phase() Phase { return PhaseComplete }

func (Idle) isState()     {}
func (Spinning) isState() {}
func (Drawing) isState()  {}
func (Complete) isState() {}

// Input drives Step.
type Input interface {
	isInput()
}

type (
	StartDraw  struct{}
	SpinTick   struct{ Pool []models.Team }
	FinishSpin struct{ Order []models.Team }
	RevealNext struct{}
	Settle     struct{}
	Redraw     struct{ Pool []models.Team }
	Close      struct{}
)

func (StartDraw) isInput()  {}
func (SpinTick) isInput()   {}
func (FinishSpin) isInput() {}
func (RevealNext) isInput() {}
func (Settle) isInput()     {}
func (Redraw) isInput()     {}
func (Close) isInput()      {}

// Step is the pure transition function of a draw. It returns the next state
// and the events to broadcast. On error the caller keeps the current state.
func Step(st State, in Input) (State, []Event, error) {
	if _, ok := in.(Close); ok {
		if idle, ok := st.(Idle); st == nil || (ok && !idle.Broadcast) {
			return Idle{}, nil, nil
		}
		return Idle{}, []Event{{Type: EventDrawEnd, Payload: DrawEndPayload{}}}, nil
	}

	switch s := st.(type) {
	case Idle:
		if _, ok := in.(StartDraw); ok {
			if len(s.Pool) < 2 {
				return st, nil, fmt.Errorf("%w: pool has %d", ErrInsufficientPool, len(s.Pool))
			}
			pool := cloneTeams(s.Pool)
			return Spinning{Pool: pool}, []Event{{
				Type:    EventDrawStart,
				Payload: DrawStartPayload{Teams: Refs(pool), TotalTeams: len(pool)},
			}}, nil
		}

	case Spinning:
		switch in := in.(type) {
		case SpinTick:
			if !samePool(s.Pool, in.Pool) {
				return st, nil, fmt.Errorf("%w: spin tick changed the pool", ErrInvalidTransition)
			}
			return Spinning{Pool: cloneTeams(in.Pool), Tick: s.Tick + 1}, nil, nil
		case FinishSpin:
			if !samePool(s.Pool, in.Order) {
				return st, nil, fmt.Errorf("%w: draw order is not a permutation of the pool", ErrInvalidTransition)
			}
			order := cloneTeams(in.Order)
			return Drawing{Order: order}, []Event{{
				Type:    EventShuffleDone,
				Payload: ShuffleDonePayload{OrderedTeams: Refs(order)},
			}}, nil
		}

	case Drawing:
		switch in.(type) {
		case RevealNext:
			if s.Drawn >= len(s.Order) {
				return st, nil, fmt.Errorf("%w: every team is already drawn", ErrInvalidTransition)
			}
			ev := Event{Type: EventTeamDrawn, Payload: TeamDrawnPayload{
				Team:  Ref(s.Order[s.Drawn]),
				Index: s.Drawn,
				Total: len(s.Order),
			}}
			return Drawing{Order: s.Order, Drawn: s.Drawn + 1}, []Event{ev}, nil
		case Settle:
			if s.Drawn < len(s.Order) {
				return st, nil, fmt.Errorf("%w: %d of %d teams still undrawn", ErrInvalidTransition, len(s.Order)-s.Drawn, len(s.Order))
			}
			b, err := brackets.BuildKnockout(s.Order)
			if err != nil {
				return st, nil, err
			}
			return Complete{Order: s.Order, Bracket: b}, []Event{{
				Type: EventBracketComplete,
				Payload: BracketCompletePayload{
					Bracket:  BracketPayload(b),
					ByeTeams: Refs(b.ByeTeams),
					AllTeams: Refs(s.Order),
				},
			}}, nil
		}

	case Complete:
		if in, ok := in.(Redraw); ok {
			return Idle{Pool: cloneTeams(in.Pool), Broadcast: true}, nil, nil
		}
	}

	phase := Phase("closed")
	if st != nil {
		phase = st.Phase()
	}
	return st, nil, fmt.Errorf("%w: %T in phase %s", ErrInvalidTransition, in, phase)
}

// Session is the DrawSession view of a state, as mirrored for late joiners.
type Session struct {
	TournamentID string         `json:"tournamentId,omitempty"`
	Phase        Phase          `json:"phase"`
	Pool         []TeamRef      `json:"pool"`
	DrawnTeams   []TeamRef      `json:"drawnTeams"`
	CurrentIndex int            `json:"currentIndex"`
	TotalTeams   int            `json:"totalTeams"`
	Bracket      []RoundPayload `json:"bracket,omitempty"`
	ByeTeams     []TeamRef      `json:"byeTeams"`
	Version      uint64         `json:"version"`
}

// Snapshot projects st onto a Session.
func Snapshot(st State) Session {
	s := Session{Phase: PhaseIdle, Pool: []TeamRef{}, DrawnTeams: []TeamRef{}}
	switch st := st.(type) {
	case Idle:
		s.Pool = Refs(st.Pool)
		s.TotalTeams = len(st.Pool)
	case Spinning:
		s.Phase = PhaseSpinning
		s.Pool = Refs(st.Pool)
		s.TotalTeams = len(st.Pool)
	case Drawing:
		s.Phase = PhaseDrawing
		s.Pool = Refs(st.Order[st.Drawn:])
		s.DrawnTeams = Refs(st.Order[:st.Drawn])
		s.CurrentIndex = st.Drawn
		s.TotalTeams = len(st.Order)
	case Complete:
		s.Phase = PhaseComplete
		s.DrawnTeams = Refs(st.Order)
		s.CurrentIndex = len(st.Order)
		s.TotalTeams = len(st.Order)
		s.Bracket = BracketPayload(st.Bracket)
		if st.Bracket != nil && len(st.Bracket.ByeTeams) > 0 {
			s.ByeTeams = Refs(st.Bracket.ByeTeams)
		}
	}
	return s
}

func cloneTeams(teams []models.Team) []models.Team {
	return append([]models.Team(nil), teams...)
}

// samePool reports whether a and b hold the same teams, by id, ignoring order.
func samePool(a, b []models.Team) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t.ID]++
	}
	for _, t := range b {
		counts[t.ID]--
		if counts[t.ID] < 0 {
			return false
		}
	}
	return true
}
