package brackets

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedOrderByRegistrationKeepsEarliestAsByes(t *testing.T) {
	teams := makeTeams(6)
	base := teams[0].CreatedAt
	for i := range teams {
		teams[i].CreatedAt = base.Add(time.Duration(len(teams)-i) * time.Hour)
	}
	rng := rand.New(rand.NewPCG(3, 4))

	order := SeedOrder(teams, ByeByRegistration, rng)

	require.Len(t, order, 6)
	assert.Equal(t, 2, ByeCount(6))
	assert.Equal(t, []string{"team-06", "team-05"}, teamIDs(order[:2]))
	for _, later := range order[2:] {
		assert.True(t, order[1].CreatedAt.Before(later.CreatedAt))
	}
	assert.ElementsMatch(t, teamIDs(teams), teamIDs(order))
}

func TestSeedOrderByDrawOrderIsPermutation(t *testing.T) {
	teams := makeTeams(9)
	order := SeedOrder(teams, ByeByDrawOrder, rand.New(rand.NewPCG(1, 1)))
	assert.ElementsMatch(t, teamIDs(teams), teamIDs(order))
}

func TestParseByePolicy(t *testing.T) {
	p, err := ParseByePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ByeByDrawOrder, p)

	p, err = ParseByePolicy("registration")
	require.NoError(t, err)
	assert.Equal(t, ByeByRegistration, p)

	_, err = ParseByePolicy("seeded")
	assert.Error(t, err)
}

func TestSingleEliminationGenerator(t *testing.T) {
	g := NewSingleEliminationGenerator()
	assert.Equal(t, "SingleElimination", g.GetName())

	b, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
		Teams:  makeTeams(6),
		Policy: ByeByRegistration,
		Rand:   rand.New(rand.NewPCG(5, 6)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"team-01", "team-02"}, teamIDs(b.ByeTeams))

	_, err = g.GenerateBracket(context.Background(), GenerateBracketParams{Teams: makeTeams(1)})
	assert.ErrorIs(t, err, ErrBracketInputInvalid)
}
