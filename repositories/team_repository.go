package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/championship-draw/models"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameConflict  = errors.New("team name already registered for this tournament")
	ErrTeamStatusInvalid = errors.New("invalid team status")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	// ListApproved returns the approved pool in registration order.
	ListApproved(ctx context.Context, tournamentID string) ([]models.Team, error)
	UpdateStatus(ctx context.Context, id string, status models.TeamStatus) error
}

type sqlTeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) TeamRepository {
	return &sqlTeamRepository{db: db}
}

func (r *sqlTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.Status == "" {
		team.Status = models.TeamStatusPending
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO teams (id, tournament_id, name, status, created_at)
		VALUES (:id, :tournament_id, :name, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, team); err != nil {
		return r.handleTeamError(err)
	}
	return nil
}

func (r *sqlTeamRepository) ListApproved(ctx context.Context, tournamentID string) ([]models.Team, error) {
	query := r.db.Rebind(`
		SELECT id, tournament_id, name, status, created_at
		FROM teams
		WHERE tournament_id = ? AND status = ?
		ORDER BY created_at ASC, id ASC`)

	teams := make([]models.Team, 0)
	if err := r.db.SelectContext(ctx, &teams, query, tournamentID, models.TeamStatusApproved); err != nil {
		return nil, fmt.Errorf("failed to list approved teams for tournament %s: %w", tournamentID, err)
	}
	return teams, nil
}

func (r *sqlTeamRepository) UpdateStatus(ctx context.Context, id string, status models.TeamStatus) error {
	query := r.db.Rebind(`UPDATE teams SET status = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqlTeamRepository) handleTeamError(err error) error {
	if pqErr, ok := asPQError(err); ok {
		switch {
		case pqErr.Code == pqUniqueViolation && pqErr.Constraint == "teams_tournament_name_key":
			return ErrTeamNameConflict
		case pqErr.Code == pqCheckViolation && pqErr.Constraint == "chk_team_status":
			return ErrTeamStatusInvalid
		}
	}
	return err
}
