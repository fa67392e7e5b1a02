package models

import "time"

type MatchStatus string

const (
	StatusScheduled      MatchStatus = "scheduled"
	StatusBye            MatchStatus = "bye"
	StatusInProgress     MatchStatus = "in_progress"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

// ScheduledMatch is the persisted form of a generated bracket match.
// A nil team id means the slot waits for the winner of an earlier match.
type ScheduledMatch struct {
	ID           string      `json:"id" db:"id"`
	TournamentID string      `json:"tournament_id" db:"tournament_id"`
	TeamAID      *string     `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID      *string     `json:"team_b_id,omitempty" db:"team_b_id"`
	Round        int         `json:"round" db:"round"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Status       MatchStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
