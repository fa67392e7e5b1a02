package draw_test

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/championship-draw/models"
)

func makeTeams(n int) []models.Team {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{
			ID:        fmt.Sprintf("team-%02d", i+1),
			Name:      fmt.Sprintf("College XI %d", i+1),
			Status:    models.TeamStatusApproved,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return teams
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}
