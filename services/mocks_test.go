package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Dosada05/championship-draw/models"
)

type mockTeamRepository struct {
	mock.Mock
}

func (m *mockTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return m.Called(ctx, team).Error(0)
}

func (m *mockTeamRepository) ListApproved(ctx context.Context, tournamentID string) ([]models.Team, error) {
	args := m.Called(ctx, tournamentID)
	teams, _ := args.Get(0).([]models.Team)
	return teams, args.Error(1)
}

func (m *mockTeamRepository) UpdateStatus(ctx context.Context, id string, status models.TeamStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockMatchRepository struct {
	mock.Mock
}

func (m *mockMatchRepository) ReplaceOpeningMatches(ctx context.Context, tournamentID string, matches []models.ScheduledMatch) error {
	return m.Called(ctx, tournamentID, matches).Error(0)
}

func (m *mockMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.ScheduledMatch, error) {
	args := m.Called(ctx, tournamentID)
	matches, _ := args.Get(0).([]models.ScheduledMatch)
	return matches, args.Error(1)
}

func makeTeams(n int) []models.Team {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{
			ID:           fmt.Sprintf("team-%02d", i+1),
			TournamentID: "t1",
			Name:         fmt.Sprintf("College XI %d", i+1),
			Status:       models.TeamStatusApproved,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}
	}
	return teams
}
