package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/repositories"
)

func TestTeamService_Register(t *testing.T) {
	repo := new(mockTeamRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(team *models.Team) bool {
		return team.Name == "College XI" && team.TournamentID == "t1" && team.Status == models.TeamStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Team).ID = "team-new"
	}).Return(nil)
	svc := NewTeamService(repo, nil)

	team, err := svc.Register(context.Background(), "t1", "  College XI ")

	require.NoError(t, err)
	assert.Equal(t, "team-new", team.ID)
	repo.AssertExpectations(t)
}

func TestTeamService_RegisterValidation(t *testing.T) {
	svc := NewTeamService(new(mockTeamRepository), nil)

	_, err := svc.Register(context.Background(), "t1", "   ")
	assert.ErrorIs(t, err, ErrTeamNameRequired)

	_, err = svc.Register(context.Background(), "t1", strings.Repeat("x", maxTeamNameLength+1))
	assert.ErrorIs(t, err, ErrTeamNameTooLong)
}

func TestTeamService_RegisterConflict(t *testing.T) {
	repo := new(mockTeamRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrTeamNameConflict)
	svc := NewTeamService(repo, nil)

	_, err := svc.Register(context.Background(), "t1", "College XI")

	assert.ErrorIs(t, err, repositories.ErrTeamNameConflict)
}

func TestTeamService_SetStatus(t *testing.T) {
	repo := new(mockTeamRepository)
	repo.On("UpdateStatus", mock.Anything, "team-01", models.TeamStatusApproved).Return(nil)
	svc := NewTeamService(repo, nil)

	require.NoError(t, svc.SetStatus(context.Background(), "team-01", models.TeamStatusApproved))

	err := svc.SetStatus(context.Background(), "team-01", models.TeamStatus("paid"))
	assert.ErrorIs(t, err, ErrValidationFailed)
	repo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}
