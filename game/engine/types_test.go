package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_Opposite(t *testing.T) {
	tests := []struct {
		in, want Direction
	}{
		{Up, Down},
		{Down, Up},
		{Left, Right},
		{Right, Left},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Opposite())
			assert.Equal(t, tt.in, tt.in.Opposite().Opposite())
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		got, ok := ParseDirection(d.String())
		require.True(t, ok, d.String())
		assert.Equal(t, d, got)
	}

	for _, token := range []string{"", "top", "UP", "NORTH"} {
		_, ok := ParseDirection(token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestPosition_Less(t *testing.T) {
	a := Position{X: 5, Y: 0}
	b := Position{X: 0, Y: 1}
	c := Position{X: 1, Y: 1}

	assert.True(t, a.Less(b), "row comes first")
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(b))
	assert.False(t, a.Less(a))
}

func TestPosition_Step(t *testing.T) {
	p := Position{X: 2, Y: 2}
	assert.Equal(t, Position{X: 2, Y: 1}, p.Step(Up))
	assert.Equal(t, Position{X: 3, Y: 2}, p.Step(Right))
	assert.Equal(t, Position{X: 2, Y: 3}, p.Step(Down))
	assert.Equal(t, Position{X: 1, Y: 2}, p.Step(Left))
}

func TestTurnInput_DecodesProtocolTokens(t *testing.T) {
	data := `{"player":{"pos":{"x":1,"y":0},"entry":"TOP"},"hazards":[{"pos":{"x":4,"y":2},"entry":"RIGHT"}]}`

	var in TurnInput
	require.NoError(t, json.Unmarshal([]byte(data), &in))
	assert.Equal(t, PathNode{Pos: Position{X: 1, Y: 0}, Entry: Up}, in.Player)
	require.Len(t, in.Hazards, 1)
	assert.Equal(t, Right, in.Hazards[0].Entry)

	bad := `{"player":{"pos":{"x":1,"y":0},"entry":"SIDEWAYS"}}`
	assert.Error(t, json.Unmarshal([]byte(bad), &in))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "WAIT", Decision{Wait: true}.String())
	assert.Equal(t, "3 4 LEFT", Decision{Pos: Position{X: 3, Y: 4}, Action: RotateLeft}.String())
	assert.Equal(t, "0 1 RIGHT", Decision{Pos: Position{X: 0, Y: 1}, Action: RotateRight}.String())
}
