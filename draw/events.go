package draw

import (
	"encoding/json"
	"fmt"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/models"
)

type EventType string

const (
	EventDrawStart       EventType = "draw_start"
	EventShuffleDone     EventType = "draw_shuffle_done"
	EventTeamDrawn       EventType = "team_drawn"
	EventBracketComplete EventType = "bracket_complete"
	EventDrawEnd         EventType = "draw_end"
	// EventDrawState carries a Session snapshot to a single late joiner.
	EventDrawState EventType = "draw_state"
)

// Event is one broadcast from the presenter. Payload is one of the *Payload
// types below, matching Type.
type Event struct {
	Type    EventType
	Payload any
}

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DrawStartPayload struct {
	Teams      []TeamRef `json:"teams"`
	TotalTeams int       `json:"totalTeams"`
}

type ShuffleDonePayload struct {
	OrderedTeams []TeamRef `json:"orderedTeams"`
}

type TeamDrawnPayload struct {
	Team  TeamRef `json:"team"`
	Index int     `json:"index"`
	Total int     `json:"total"`
}

type MatchPayload struct {
	MatchNum  int      `json:"match_num"`
	TeamA     *TeamRef `json:"team_a"`
	TeamB     *TeamRef `json:"team_b"`
	RoundName string   `json:"round_name"`
	IsBye     bool     `json:"is_bye"`
}

type RoundPayload struct {
	Name    string         `json:"name"`
	Matches []MatchPayload `json:"matches"`
}

type BracketCompletePayload struct {
	Bracket  []RoundPayload `json:"bracket"`
	ByeTeams []TeamRef      `json:"byeTeams"`
	AllTeams []TeamRef      `json:"allTeams"`
}

type DrawEndPayload struct{}

type DrawStatePayload struct {
	Session Session `json:"session"`
}

// Envelope is the wire frame sent to websocket subscribers.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
	RoomID  string          `json:"room_id,omitempty"`
}

func Ref(t models.Team) TeamRef {
	return TeamRef{ID: t.ID, Name: t.Name}
}

func Refs(teams []models.Team) []TeamRef {
	refs := make([]TeamRef, len(teams))
	for i, t := range teams {
		refs[i] = Ref(t)
	}
	return refs
}

func refPtr(t *models.Team) *TeamRef {
	if t == nil {
		return nil
	}
	r := Ref(*t)
	return &r
}

// BracketPayload converts a built bracket into its broadcast form.
func BracketPayload(b *brackets.Bracket) []RoundPayload {
	if b == nil {
		return nil
	}
	rounds := make([]RoundPayload, len(b.Rounds))
	for i, r := range b.Rounds {
		rp := RoundPayload{Name: r.Name, Matches: make([]MatchPayload, len(r.Matches))}
		for j, m := range r.Matches {
			rp.Matches[j] = MatchPayload{
				MatchNum:  m.MatchNumber,
				TeamA:     refPtr(m.TeamA),
				TeamB:     refPtr(m.TeamB),
				RoundName: m.RoundName,
				IsBye:     m.IsBye,
			}
		}
		rounds[i] = rp
	}
	return rounds
}

// SlotLabel labels a slot of a broadcast bracket the way brackets.SlotLabel
// labels a built one. The wire form has no round numbers, so a leading
// "Play-in Round" is taken as round 0.
func SlotLabel(rounds []RoundPayload, roundPos, matchIdx int, slot brackets.Slot) string {
	first := 1
	if len(rounds) > 0 && rounds[0].Name == brackets.PlayInRoundName {
		first = brackets.PlayInRound
	}
	built := make([]brackets.Round, len(rounds))
	for i, r := range rounds {
		br := brackets.Round{Number: first + i, Name: r.Name, Matches: make([]brackets.Match, len(r.Matches))}
		for j, m := range r.Matches {
			br.Matches[j] = brackets.Match{
				MatchNumber: m.MatchNum,
				TeamA:       teamPtr(m.TeamA),
				TeamB:       teamPtr(m.TeamB),
				Round:       br.Number,
				RoundName:   m.RoundName,
				IsBye:       m.IsBye,
			}
		}
		built[i] = br
	}
	return brackets.SlotLabel(built, roundPos, matchIdx, slot)
}

func teamPtr(r *TeamRef) *models.Team {
	if r == nil {
		return nil
	}
	return &models.Team{ID: r.ID, Name: r.Name}
}

// Encode frames ev for the given room.
func Encode(ev Event, roomID string) ([]byte, error) {
	payload := ev.Payload
	if payload == nil {
		payload = struct{}{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Type, err)
	}
	return json.Marshal(Envelope{Type: ev.Type, Payload: raw, RoomID: roomID})
}

// Decode parses a wire frame back into a typed Event.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decode envelope: %w", err)
	}

	var payload any
	switch env.Type {
	case EventDrawStart:
		payload = &DrawStartPayload{}
	case EventShuffleDone:
		payload = &ShuffleDonePayload{}
	case EventTeamDrawn:
		payload = &TeamDrawnPayload{}
	case EventBracketComplete:
		payload = &BracketCompletePayload{}
	case EventDrawEnd:
		return Event{Type: EventDrawEnd, Payload: DrawEndPayload{}}, nil
	case EventDrawState:
		payload = &DrawStatePayload{}
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return Event{}, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}

	// hand back values, not pointers, so decoded events compare equal to
	// the ones the presenter built
	switch p := payload.(type) {
	case *DrawStartPayload:
		return Event{Type: env.Type, Payload: *p}, nil
	case *ShuffleDonePayload:
		return Event{Type: env.Type, Payload: *p}, nil
	case *TeamDrawnPayload:
		return Event{Type: env.Type, Payload: *p}, nil
	case *BracketCompletePayload:
		return Event{Type: env.Type, Payload: *p}, nil
	case *DrawStatePayload:
		return Event{Type: env.Type, Payload: *p}, nil
	}
	return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
}
