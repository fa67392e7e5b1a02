package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-draw/db"
	"github.com/Dosada05/championship-draw/models"
)

// setupTestDB opens an in-memory sqlite database with the schema applied.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "failed to connect to in-memory DB")
	// every connection to :memory: is a separate database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "failed to create migrate driver instance")
	require.NoError(t, db.MigrateUp(driver, "sqlite3"))

	return database
}

func seedTeams(t *testing.T, repo TeamRepository, tournamentID string, n int) []models.Team {
	t.Helper()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{
			ID:           fmt.Sprintf("%s-team-%02d", tournamentID, i+1),
			TournamentID: tournamentID,
			Name:         fmt.Sprintf("College XI %d", i+1),
			Status:       models.TeamStatusApproved,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(context.Background(), &teams[i]))
	}
	return teams
}
