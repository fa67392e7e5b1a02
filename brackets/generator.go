package brackets

import (
	"context"
	"math/rand/v2"

	"github.com/Dosada05/championship-draw/models"
)

type GenerateBracketParams struct {
	TournamentID string
	Teams        []models.Team
	Policy       ByePolicy
	Rand         *rand.Rand
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error)

	GetName() string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket seeds the pool according to the bye policy and builds the
// knockout in one step, for admins who schedule matches without a live show.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(params.Teams) < 2 {
		return nil, ErrBracketInputInvalid
	}
	return BuildKnockout(SeedOrder(params.Teams, params.Policy, params.Rand))
}
