package draw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/models"
)

func assertSessionInvariants(t *testing.T, st draw.State) {
	t.Helper()
	s := draw.Snapshot(st)
	assert.Equal(t, s.TotalTeams, len(s.Pool)+len(s.DrawnTeams), "pool and drawn must partition the teams in %s", s.Phase)
	assert.Equal(t, len(s.DrawnTeams), s.CurrentIndex)
}

func TestStep_FullDraw(t *testing.T) {
	teams := makeTeams(7)
	var st draw.State = draw.Idle{Pool: teams}
	assertSessionInvariants(t, st)

	st, events, err := draw.Step(st, draw.StartDraw{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, draw.EventDrawStart, events[0].Type)
	assert.Equal(t, draw.DrawStartPayload{Teams: draw.Refs(teams), TotalTeams: 7}, events[0].Payload)
	assertSessionInvariants(t, st)

	st, events, err = draw.Step(st, draw.SpinTick{Pool: brackets.Shuffle(teams, seeded())})
	require.NoError(t, err)
	assert.Empty(t, events, "spin ticks are not broadcast")
	assert.Equal(t, 1, st.(draw.Spinning).Tick)

	order := brackets.Shuffle(teams, seeded())
	st, events, err = draw.Step(st, draw.FinishSpin{Order: order})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, draw.ShuffleDonePayload{OrderedTeams: draw.Refs(order)}, events[0].Payload)

	for i := range order {
		st, events, err = draw.Step(st, draw.RevealNext{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, draw.TeamDrawnPayload{Team: draw.Ref(order[i]), Index: i, Total: 7}, events[0].Payload)
		assertSessionInvariants(t, st)
	}

	_, _, err = draw.Step(st, draw.RevealNext{})
	assert.ErrorIs(t, err, draw.ErrInvalidTransition)

	st, events, err = draw.Step(st, draw.Settle{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	done := events[0].Payload.(draw.BracketCompletePayload)
	assert.Equal(t, draw.Refs(order[:1]), done.ByeTeams)
	assert.Equal(t, draw.Refs(order), done.AllTeams)
	assert.Equal(t, brackets.PlayInRoundName, done.Bracket[0].Name)

	s := draw.Snapshot(st)
	assert.Equal(t, draw.PhaseComplete, s.Phase)
	assert.Empty(t, s.Pool)
	assert.Equal(t, draw.Refs(order), s.DrawnTeams)
	assert.Equal(t, draw.Refs(order[:1]), s.ByeTeams)
}

func TestStep_InsufficientPool(t *testing.T) {
	for _, n := range []int{0, 1} {
		st := draw.Idle{Pool: makeTeams(n)}
		next, events, err := draw.Step(st, draw.StartDraw{})
		require.ErrorIs(t, err, draw.ErrInsufficientPool)
		assert.Empty(t, events)
		assert.Equal(t, draw.PhaseIdle, next.Phase())
	}
}

func TestStep_RejectsInvalidTransitions(t *testing.T) {
	teams := makeTeams(4)
	tests := []struct {
		name  string
		state draw.State
		input draw.Input
	}{
		{"reveal while idle", draw.Idle{Pool: teams}, draw.RevealNext{}},
		{"redraw while idle", draw.Idle{Pool: teams}, draw.Redraw{Pool: teams}},
		{"start while spinning", draw.Spinning{Pool: teams}, draw.StartDraw{}},
		{"spin tick with foreign team", draw.Spinning{Pool: teams}, draw.SpinTick{Pool: append(teams[:3:3], makeTeams(5)[4])}},
		{"finish spin dropping a team", draw.Spinning{Pool: teams}, draw.FinishSpin{Order: teams[:3]}},
		{"settle before all drawn", draw.Drawing{Order: teams, Drawn: 2}, draw.Settle{}},
		{"redraw mid drawing", draw.Drawing{Order: teams, Drawn: 2}, draw.Redraw{Pool: teams}},
		{"start from complete", draw.Complete{Order: teams}, draw.StartDraw{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, events, err := draw.Step(tt.state, tt.input)
			require.ErrorIs(t, err, draw.ErrInvalidTransition)
			assert.Empty(t, events)
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestStep_Close(t *testing.T) {
	teams := makeTeams(4)

	next, events, err := draw.Step(draw.Idle{Pool: teams}, draw.Close{})
	require.NoError(t, err)
	assert.Empty(t, events, "an idle session never broadcast, so it has nothing to end")
	assert.Equal(t, draw.PhaseIdle, next.Phase())

	for _, st := range []draw.State{
		draw.Idle{Pool: teams, Broadcast: true},
		draw.Spinning{Pool: teams},
		draw.Drawing{Order: teams, Drawn: 1},
		draw.Complete{Order: teams},
	} {
		next, events, err := draw.Step(st, draw.Close{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, draw.EventDrawEnd, events[0].Type)
		assert.Equal(t, draw.Idle{}, next)
	}
}

func TestStep_RedrawFromComplete(t *testing.T) {
	teams := makeTeams(4)
	fresh := append(makeTeams(4), models.Team{ID: "late", Name: "Late Entry"})

	next, events, err := draw.Step(draw.Complete{Order: teams}, draw.Redraw{Pool: fresh})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, draw.Idle{Pool: fresh, Broadcast: true}, next)
}

func TestStep_DoesNotAliasInput(t *testing.T) {
	teams := makeTeams(4)
	st, _, err := draw.Step(draw.Idle{Pool: teams}, draw.StartDraw{})
	require.NoError(t, err)

	teams[0].Name = "changed"
	assert.Equal(t, "College XI 1", st.(draw.Spinning).Pool[0].Name)
}
