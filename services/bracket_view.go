package services

import (
	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/models"
)

// BracketView is a bracket ready to render: every slot carries its label.
type BracketView struct {
	TournamentID string        `json:"tournament_id"`
	Rounds       []RoundView   `json:"rounds"`
	ByeTeams     []models.Team `json:"bye_teams"`
}

type RoundView struct {
	Number  int         `json:"round"`
	Name    string      `json:"name"`
	Matches []MatchView `json:"matches"`
}

type MatchView struct {
	MatchNumber int          `json:"match_num"`
	TeamA       *models.Team `json:"team_a"`
	TeamB       *models.Team `json:"team_b"`
	LabelA      string       `json:"label_a"`
	LabelB      string       `json:"label_b"`
	IsBye       bool         `json:"is_bye"`
}

func NewBracketView(tournamentID string, b *brackets.Bracket) *BracketView {
	view := &BracketView{
		TournamentID: tournamentID,
		Rounds:       make([]RoundView, len(b.Rounds)),
		ByeTeams:     append([]models.Team{}, b.ByeTeams...),
	}
	for ri, r := range b.Rounds {
		rv := RoundView{Number: r.Number, Name: r.Name, Matches: make([]MatchView, len(r.Matches))}
		for mi, m := range r.Matches {
			rv.Matches[mi] = MatchView{
				MatchNumber: m.MatchNumber,
				TeamA:       m.TeamA,
				TeamB:       m.TeamB,
				LabelA:      brackets.SlotLabel(b.Rounds, ri, mi, brackets.SlotA),
				LabelB:      brackets.SlotLabel(b.Rounds, ri, mi, brackets.SlotB),
				IsBye:       m.IsBye,
			}
		}
		view.Rounds[ri] = rv
	}
	return view
}

// OpeningMatches converts the playable first layer of a bracket into rows:
// every play-in match, plus round 1 matches with at least one known team.
// Later rounds only hold winner placeholders and are not persisted.
func OpeningMatches(tournamentID string, b *brackets.Bracket) []models.ScheduledMatch {
	var out []models.ScheduledMatch
	for _, r := range b.Rounds {
		if r.Number != brackets.PlayInRound && r.Number != 1 {
			continue
		}
		for _, m := range r.Matches {
			if m.TeamA == nil && m.TeamB == nil {
				continue
			}
			row := models.ScheduledMatch{
				TournamentID: tournamentID,
				TeamAID:      teamID(m.TeamA),
				TeamBID:      teamID(m.TeamB),
				Round:        r.Number,
				MatchNumber:  m.MatchNumber,
				Status:       models.StatusScheduled,
			}
			if m.IsBye {
				row.Status = models.StatusBye
			}
			out = append(out, row)
		}
	}
	return out
}

func teamID(t *models.Team) *string {
	if t == nil {
		return nil
	}
	id := t.ID
	return &id
}
