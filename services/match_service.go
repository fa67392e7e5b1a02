package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/repositories"
)

// DrawChecker reports whether a live draw owns a tournament's bracket.
type DrawChecker interface {
	IsOpen(tournamentID string) bool
}

type MatchService interface {
	// Generate builds and saves a bracket without a live show.
	Generate(ctx context.Context, tournamentID string) (*GenerateResult, error)
	List(ctx context.Context, tournamentID string) ([]models.ScheduledMatch, error)
}

type GenerateResult struct {
	Bracket *BracketView            `json:"bracket"`
	Matches []models.ScheduledMatch `json:"matches"`
}

type matchService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	generator brackets.BracketGenerator
	policy    brackets.ByePolicy
	draws     DrawChecker
	rng       *rand.Rand
	logger    *slog.Logger
}

func NewMatchService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.BracketGenerator,
	policy brackets.ByePolicy,
	draws DrawChecker,
	rng *rand.Rand,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &matchService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		generator: generator,
		policy:    policy,
		draws:     draws,
		rng:       rng,
		logger:    logger,
	}
}

func (s *matchService) Generate(ctx context.Context, tournamentID string) (*GenerateResult, error) {
	if s.draws != nil && s.draws.IsOpen(tournamentID) {
		return nil, ErrDrawInProgress
	}

	teams, err := s.teamRepo.ListApproved(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved teams: %w", err)
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: pool has %d", ErrInsufficientPool, len(teams))
	}

	b, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		Teams:        teams,
		Policy:       s.policy,
		Rand:         s.rng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket for tournament %s: %w", tournamentID, err)
	}

	matches := OpeningMatches(tournamentID, b)
	if err := s.matchRepo.ReplaceOpeningMatches(ctx, tournamentID, matches); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceWriteFailure, err)
	}

	s.logger.Info("bracket generated",
		slog.String("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.String("bye_policy", string(s.policy)),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))
	return &GenerateResult{Bracket: NewBracketView(tournamentID, b), Matches: matches}, nil
}

func (s *matchService) List(ctx context.Context, tournamentID string) ([]models.ScheduledMatch, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}
