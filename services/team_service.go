package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/repositories"
)

const maxTeamNameLength = 100

var (
	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameTooLong  = fmt.Errorf("team name must be at most %d characters", maxTeamNameLength)
)

// TeamService enters teams into a tournament's draw pool. Only approved teams
// are drawn.
type TeamService interface {
	Register(ctx context.Context, tournamentID, name string) (*models.Team, error)
	SetStatus(ctx context.Context, teamID string, status models.TeamStatus) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, logger *slog.Logger) TeamService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &teamService{teamRepo: teamRepo, logger: logger}
}

func (s *teamService) Register(ctx context.Context, tournamentID, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if utf8.RuneCountInString(name) > maxTeamNameLength {
		return nil, ErrTeamNameTooLong
	}

	team := &models.Team{TournamentID: tournamentID, Name: name, Status: models.TeamStatusPending}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("team registered", slog.String("tournament_id", tournamentID), slog.String("team_id", team.ID))
	return team, nil
}

func (s *teamService) SetStatus(ctx context.Context, teamID string, status models.TeamStatus) error {
	switch status {
	case models.TeamStatusPending, models.TeamStatusApproved, models.TeamStatusRejected:
	default:
		return fmt.Errorf("%w: %w: %q", ErrValidationFailed, repositories.ErrTeamStatusInvalid, status)
	}
	return s.teamRepo.UpdateStatus(ctx, teamID, status)
}
