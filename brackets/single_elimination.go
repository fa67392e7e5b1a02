package brackets

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Dosada05/championship-draw/models"
)

// ErrBracketInputInvalid is returned when a bracket is requested for fewer
// than two teams. Callers are expected to guard against this before building.
var ErrBracketInputInvalid = errors.New("bracket requires at least two teams")

const (
	PlayInRound     = 0
	PlayInRoundName = "Play-in Round"
)

type Slot int

const (
	SlotA Slot = iota
	SlotB
)

type Match struct {
	MatchNumber int          `json:"match_num"`
	TeamA       *models.Team `json:"team_a"`
	TeamB       *models.Team `json:"team_b"`
	Round       int          `json:"round"`
	RoundName   string       `json:"round_name"`
	IsBye       bool         `json:"is_bye"`
}

type Round struct {
	Number  int     `json:"round"`
	Name    string  `json:"name"`
	Matches []Match `json:"matches"`
}

// Bracket is the shape of a single-elimination knockout. Rounds are ordered:
// the play-in round first when present, then round 1 up to the Final.
type Bracket struct {
	Rounds   []Round       `json:"rounds"`
	ByeTeams []models.Team `json:"bye_teams"`
}

// RoundName labels a round by how many teams enter it.
func RoundName(teamCount int) string {
	switch {
	case teamCount <= 2:
		return "Final"
	case teamCount <= 4:
		return "Semifinals"
	case teamCount <= 8:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round of %d", teamCount)
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// ByeCount reports how many teams skip the play-in round for a pool of total.
func ByeCount(total int) int {
	if total < 2 || isPowerOfTwo(total) {
		return 0
	}
	half := nextPowerOfTwo(total) / 2
	return half - (total - half)
}

// BuildKnockout seeds teams, in the order given, into a single-elimination
// bracket. Non power-of-two pools get a play-in round (round 0); the first
// ByeCount(len(teams)) teams skip it and are placed straight into round 1.
func BuildKnockout(teams []models.Team) (*Bracket, error) {
	total := len(teams)
	if total < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrBracketInputInvalid, total)
	}

	b := &Bracket{}
	matchNumber := 0
	next := func() int {
		matchNumber++
		return matchNumber
	}

	if isPowerOfTwo(total) {
		first := Round{Number: 1, Name: RoundName(total)}
		for i := 0; i < total; i += 2 {
			a, c := teams[i], teams[i+1]
			first.Matches = append(first.Matches, Match{
				MatchNumber: next(),
				TeamA:       &a,
				TeamB:       &c,
				Round:       1,
				RoundName:   first.Name,
			})
		}
		b.Rounds = append(b.Rounds, first)
		b.Rounds = append(b.Rounds, placeholderRounds(total/2, 2, next)...)
		return b, nil
	}

	half := nextPowerOfTwo(total) / 2
	byes := ByeCount(total)

	playIn := Round{Number: PlayInRound, Name: PlayInRoundName}
	for i := byes; i < total; i += 2 {
		a, c := teams[i], teams[i+1]
		playIn.Matches = append(playIn.Matches, Match{
			MatchNumber: next(),
			TeamA:       &a,
			TeamB:       &c,
			Round:       PlayInRound,
			RoundName:   PlayInRoundName,
		})
	}

	first := Round{Number: 1, Name: RoundName(half)}
	first.Matches = make([]Match, half/2)
	for i := range first.Matches {
		first.Matches[i] = Match{MatchNumber: next(), Round: 1, RoundName: first.Name}
	}
	// Bye teams take the A slots first; only pools far from a power of two
	// spill over into B slots.
	for i := 0; i < byes; i++ {
		t := teams[i]
		m := &first.Matches[i%len(first.Matches)]
		if i < len(first.Matches) {
			m.TeamA = &t
		} else {
			m.TeamB = &t
		}
	}
	for i := range first.Matches {
		m := &first.Matches[i]
		m.IsBye = m.TeamA != nil && m.TeamB == nil
	}

	b.Rounds = append(b.Rounds, playIn, first)
	b.Rounds = append(b.Rounds, placeholderRounds(half/2, 2, next)...)
	b.ByeTeams = append([]models.Team(nil), teams[:byes]...)
	return b, nil
}

// placeholderRounds builds the rounds after round 1, halving teamCount until
// the Final. Every slot is left empty for the winner of an earlier match.
func placeholderRounds(teamCount, firstNumber int, next func() int) []Round {
	var rounds []Round
	for k, r := teamCount, firstNumber; k >= 2; k, r = k/2, r+1 {
		round := Round{Number: r, Name: RoundName(k)}
		for i := 0; i < k/2; i++ {
			round.Matches = append(round.Matches, Match{MatchNumber: next(), Round: r, RoundName: round.Name})
		}
		rounds = append(rounds, round)
	}
	return rounds
}

// Matches flattens the bracket in match-number order.
func (b *Bracket) Matches() []Match {
	var out []Match
	for _, r := range b.Rounds {
		out = append(out, r.Matches...)
	}
	return out
}

// Round returns the round with the given number, if present.
func (b *Bracket) Round(number int) (Round, bool) {
	for _, r := range b.Rounds {
		if r.Number == number {
			return r, true
		}
	}
	return Round{}, false
}

// Feeder returns the match whose winner fills slot of match matchIdx in
// rounds[roundPos]. Round 2 onward is fed by previous.matches[2*idx(+1)];
// round 1 empty slots are fed by play-in matches in reading order.
func Feeder(rounds []Round, roundPos, matchIdx int, slot Slot) (*Match, bool) {
	if roundPos <= 0 || roundPos >= len(rounds) {
		return nil, false
	}
	current := rounds[roundPos]
	if matchIdx < 0 || matchIdx >= len(current.Matches) {
		return nil, false
	}
	prev := rounds[roundPos-1]

	if prev.Number == PlayInRound {
		k := 0
		for i := 0; i <= matchIdx; i++ {
			m := current.Matches[i]
			for _, s := range []Slot{SlotA, SlotB} {
				if i == matchIdx && s == slot {
					if m.team(s) != nil || k >= len(prev.Matches) {
						return nil, false
					}
					return &prev.Matches[k], true
				}
				if m.team(s) == nil {
					k++
				}
			}
		}
		return nil, false
	}

	idx := matchIdx * 2
	if slot == SlotB {
		idx++
	}
	if idx >= len(prev.Matches) {
		return nil, false
	}
	return &prev.Matches[idx], true
}

// SlotLabel is the display text for a match slot: the team name when known,
// otherwise "Winner of Match N" or "TBD" when no feeder exists.
func SlotLabel(rounds []Round, roundPos, matchIdx int, slot Slot) string {
	if roundPos >= 0 && roundPos < len(rounds) && matchIdx >= 0 && matchIdx < len(rounds[roundPos].Matches) {
		if t := rounds[roundPos].Matches[matchIdx].team(slot); t != nil {
			return t.Name
		}
	}
	if f, ok := Feeder(rounds, roundPos, matchIdx, slot); ok {
		return fmt.Sprintf("Winner of Match %d", f.MatchNumber)
	}
	return "TBD"
}

func (m Match) team(s Slot) *models.Team {
	if s == SlotA {
		return m.TeamA
	}
	return m.TeamB
}
