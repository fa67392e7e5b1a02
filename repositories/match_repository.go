package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/models"
)

var (
	ErrMatchTeamInvalid    = errors.New("match references an unknown team")
	ErrMatchNumberConflict = errors.New("match number already used in this tournament")
)

// openingRounds are the rounds replaced when a draw is saved.
var openingRounds = []int{brackets.PlayInRound, 1}

type MatchRepository interface {
	// ReplaceOpeningMatches atomically swaps the play-in and first-round
	// matches of a tournament for matches.
	ReplaceOpeningMatches(ctx context.Context, tournamentID string, matches []models.ScheduledMatch) error
	ListByTournament(ctx context.Context, tournamentID string) ([]models.ScheduledMatch, error)
}

type sqlMatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

func (r *sqlMatchRepository) ReplaceOpeningMatches(ctx context.Context, tournamentID string, matches []models.ScheduledMatch) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		del, args, err := sqlx.In(`DELETE FROM scheduled_matches WHERE tournament_id = ? AND round IN (?)`, tournamentID, openingRounds)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(del), args...); err != nil {
			return fmt.Errorf("failed to clear opening matches of tournament %s: %w", tournamentID, err)
		}

		now := time.Now().UTC()
		insert := `
			INSERT INTO scheduled_matches (id, tournament_id, team_a_id, team_b_id, round, match_number, status, created_at)
			VALUES (:id, :tournament_id, :team_a_id, :team_b_id, :round, :match_number, :status, :created_at)`
		for i := range matches {
			m := &matches[i]
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.TournamentID = tournamentID
			if m.CreatedAt.IsZero() {
				m.CreatedAt = now
			}
			if _, err := tx.NamedExecContext(ctx, insert, m); err != nil {
				return fmt.Errorf("failed to insert match %d: %w", m.MatchNumber, r.handleMatchError(err))
			}
		}
		return nil
	})
}

func (r *sqlMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.ScheduledMatch, error) {
	query := r.db.Rebind(`
		SELECT id, tournament_id, team_a_id, team_b_id, round, match_number, status, created_at
		FROM scheduled_matches
		WHERE tournament_id = ?
		ORDER BY match_number ASC`)

	matches := make([]models.ScheduledMatch, 0)
	if err := r.db.SelectContext(ctx, &matches, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *sqlMatchRepository) handleMatchError(err error) error {
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			switch pqErr.Constraint {
			case "scheduled_matches_team_a_id_fkey", "scheduled_matches_team_b_id_fkey":
				return ErrMatchTeamInvalid
			}
		case pqUniqueViolation:
			if pqErr.Constraint == "scheduled_matches_number_key" {
				return ErrMatchNumberConflict
			}
		}
	}
	return err
}
