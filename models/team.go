package models

import "time"

type TeamStatus string

const (
	TeamStatusPending  TeamStatus = "pending"
	TeamStatusApproved TeamStatus = "approved"
	TeamStatusRejected TeamStatus = "rejected"
)

// Team is an immutable value for the duration of a draw. CreatedAt is the
// registration time and breaks ties when byes go to the earliest registrants.
type Team struct {
	ID           string     `json:"id" db:"id"`
	TournamentID string     `json:"tournament_id,omitempty" db:"tournament_id"`
	Name         string     `json:"name" db:"name"`
	Status       TeamStatus `json:"status,omitempty" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
