package draw_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/draw"
)

func TestEncode_WireShape(t *testing.T) {
	teams := makeTeams(3)
	ev := draw.Event{Type: draw.EventTeamDrawn, Payload: draw.TeamDrawnPayload{Team: draw.Ref(teams[1]), Index: 1, Total: 3}}

	data, err := draw.Encode(ev, "draw_t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "team_drawn",
		"room_id": "draw_t1",
		"payload": {"team": {"id": "team-02", "name": "College XI 2"}, "index": 1, "total": 3}
	}`, string(data))

	decoded, err := draw.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)
}

func TestEncode_BracketComplete(t *testing.T) {
	teams := makeTeams(3)
	b, err := brackets.BuildKnockout(teams)
	require.NoError(t, err)

	ev := draw.Event{Type: draw.EventBracketComplete, Payload: draw.BracketCompletePayload{
		Bracket:  draw.BracketPayload(b),
		ByeTeams: draw.Refs(b.ByeTeams),
		AllTeams: draw.Refs(teams),
	}}
	data, err := draw.Encode(ev, "")
	require.NoError(t, err)

	var raw struct {
		Payload struct {
			Bracket []struct {
				Name    string           `json:"name"`
				Matches []map[string]any `json:"matches"`
			} `json:"bracket"`
			ByeTeams []map[string]string `json:"byeTeams"`
			AllTeams []map[string]string `json:"allTeams"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Payload.Bracket, 2)
	assert.Equal(t, "Play-in Round", raw.Payload.Bracket[0].Name)
	assert.Equal(t, "Final", raw.Payload.Bracket[1].Name)

	final := raw.Payload.Bracket[1].Matches[0]
	assert.EqualValues(t, 2, final["match_num"])
	assert.Equal(t, map[string]any{"id": "team-01", "name": "College XI 1"}, final["team_a"])
	assert.Nil(t, final["team_b"])
	assert.Equal(t, true, final["is_bye"])
	assert.Len(t, raw.Payload.AllTeams, 3)

	decoded, err := draw.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)
}

func TestDecode(t *testing.T) {
	ev, err := draw.Decode([]byte(`{"type":"draw_end","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, draw.Event{Type: draw.EventDrawEnd, Payload: draw.DrawEndPayload{}}, ev)

	_, err = draw.Decode([]byte(`{"type":"score_update","payload":{}}`))
	assert.ErrorIs(t, err, draw.ErrUnknownEvent)

	_, err = draw.Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestSlotLabel_MatchesBuiltBracket(t *testing.T) {
	for n := 2; n <= 12; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			b, err := brackets.BuildKnockout(makeTeams(n))
			require.NoError(t, err)
			rounds := draw.BracketPayload(b)

			for ri, r := range b.Rounds {
				for mi := range r.Matches {
					for _, slot := range []brackets.Slot{brackets.SlotA, brackets.SlotB} {
						assert.Equal(t,
							brackets.SlotLabel(b.Rounds, ri, mi, slot),
							draw.SlotLabel(rounds, ri, mi, slot),
							"round %d match %d", ri, mi)
					}
				}
			}
		})
	}
}

func TestSlotLabel_FeedsFromPlayIn(t *testing.T) {
	b, err := brackets.BuildKnockout(makeTeams(3))
	require.NoError(t, err)
	rounds := draw.BracketPayload(b)
	require.Equal(t, brackets.PlayInRoundName, rounds[0].Name)

	assert.Equal(t, "Winner of Match 1", draw.SlotLabel(rounds, 1, 0, brackets.SlotB))
	assert.Equal(t, "TBD", draw.SlotLabel(rounds, 0, 5, brackets.SlotA))
}
