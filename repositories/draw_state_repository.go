package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/championship-draw/draw"
)

// DrawStateRepository keeps the latest session of each live draw so that
// viewers joining late can resume. It implements draw.SnapshotStore.
type DrawStateRepository struct {
	db *sqlx.DB
}

var _ draw.SnapshotStore = (*DrawStateRepository)(nil)

func NewDrawStateRepository(db *sqlx.DB) *DrawStateRepository {
	return &DrawStateRepository{db: db}
}

type drawStateRow struct {
	TournamentID string    `db:"tournament_id"`
	Phase        string    `db:"phase"`
	Version      int64     `db:"version"`
	Session      string    `db:"session"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *DrawStateRepository) SaveDrawState(ctx context.Context, tournamentID string, s draw.Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode draw state: %w", err)
	}
	row := drawStateRow{
		TournamentID: tournamentID,
		Phase:        string(s.Phase),
		Version:      int64(s.Version),
		Session:      string(body),
		UpdatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO draw_states (tournament_id, phase, version, session, updated_at)
		VALUES (:tournament_id, :phase, :version, :session, :updated_at)
		ON CONFLICT (tournament_id) DO UPDATE
		SET phase = excluded.phase, version = excluded.version, session = excluded.session, updated_at = excluded.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save draw state for tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (r *DrawStateRepository) LoadDrawState(ctx context.Context, tournamentID string) (*draw.Session, error) {
	query := r.db.Rebind(`
		SELECT tournament_id, phase, version, session, updated_at
		FROM draw_states
		WHERE tournament_id = ?`)

	var row drawStateRow
	if err := r.db.GetContext(ctx, &row, query, tournamentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load draw state for tournament %s: %w", tournamentID, err)
	}

	var s draw.Session
	if err := json.Unmarshal([]byte(row.Session), &s); err != nil {
		return nil, fmt.Errorf("failed to decode draw state for tournament %s: %w", tournamentID, err)
	}
	return &s, nil
}

func (r *DrawStateRepository) DeleteDrawState(ctx context.Context, tournamentID string) error {
	query := r.db.Rebind(`DELETE FROM draw_states WHERE tournament_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete draw state for tournament %s: %w", tournamentID, err)
	}
	return nil
}
