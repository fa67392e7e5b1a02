package brackets

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/Dosada05/championship-draw/models"
)

// ByePolicy decides which teams skip the play-in round.
type ByePolicy string

const (
	// ByeByDrawOrder gives byes to whoever lands first after shuffling.
	ByeByDrawOrder ByePolicy = "draw"
	// ByeByRegistration gives byes to the earliest registered teams and
	// shuffles only the rest.
	ByeByRegistration ByePolicy = "registration"
)

func ParseByePolicy(s string) (ByePolicy, error) {
	switch ByePolicy(s) {
	case ByeByDrawOrder, ByeByRegistration:
		return ByePolicy(s), nil
	case "":
		return ByeByDrawOrder, nil
	default:
		return "", fmt.Errorf("unknown bye policy %q", s)
	}
}

// SeedOrder produces the ordered list BuildKnockout consumes.
func SeedOrder(teams []models.Team, policy ByePolicy, rng *rand.Rand) []models.Team {
	if policy != ByeByRegistration {
		return Shuffle(teams, rng)
	}

	byRegistration := make([]models.Team, len(teams))
	copy(byRegistration, teams)
	sort.SliceStable(byRegistration, func(i, j int) bool {
		return byRegistration[i].CreatedAt.Before(byRegistration[j].CreatedAt)
	})

	byes := ByeCount(len(teams))
	order := append([]models.Team(nil), byRegistration[:byes]...)
	return append(order, Shuffle(byRegistration[byes:], rng)...)
}
