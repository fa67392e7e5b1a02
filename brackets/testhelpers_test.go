package brackets

import (
	"fmt"
	"time"

	"github.com/Dosada05/championship-draw/models"
)

func makeTeams(n int) []models.Team {
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{
			ID:        fmt.Sprintf("team-%02d", i+1),
			Name:      fmt.Sprintf("College XI %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return teams
}

func teamIDs(teams []models.Team) []string {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
