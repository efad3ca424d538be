package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Engine = (*GameEngine)(nil)

func createTestEngine(t *testing.T, l *LevelConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(l)
	require.NoError(t, err)
	return e
}

func TestNewEngine_InvalidLevel(t *testing.T) {
	_, err := NewEngine(&LevelConfig{Name: "bad"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestEngine_CorridorWaits(t *testing.T) {
	e := createTestEngine(t, DefaultLevel())

	for y := 0; y < 3; y++ {
		d, err := e.Turn(TurnInput{Player: start(1, y, Up)})
		require.NoError(t, err)
		assert.True(t, d.Wait)
		assert.Equal(t, "WAIT", d.String())
	}
	assert.Len(t, e.GetTurnHistory(), 3)
	assert.True(t, e.GetState().Solved)
}

func TestEngine_BuildsRouteInOrder(t *testing.T) {
	e := createTestEngine(t, bendLevel())

	turns := []TurnInput{
		{Player: start(1, 0, Up)},
		{Player: start(1, 1, Up)},
		{Player: start(2, 1, Left)},
		{Player: start(2, 2, Up)},
	}
	var got []string
	for _, in := range turns {
		d, err := e.Turn(in)
		require.NoError(t, err)
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"1 1 LEFT", "2 1 LEFT", "2 2 LEFT", "WAIT"}, got)

	last := e.GetLastTurn()
	require.NotNil(t, last)
	assert.Equal(t, 4, last.Turn)
	assert.Empty(t, e.GetState().Pending)
}

func TestEngine_NoPath(t *testing.T) {
	e := createTestEngine(t, level(3, 3, 1, "0 3 0", "0 0 0", "0 3 0"))

	for i := 0; i < 2; i++ {
		d, err := e.Turn(TurnInput{Player: start(1, 0, Up)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoPath))
		assert.True(t, d.Wait)
	}

	state := e.GetState()
	assert.True(t, state.NoPath)
	assert.False(t, state.Solved)
	assert.NotEmpty(t, state.Warnings)
	assert.NotEmpty(t, e.GetLastTurn().Error)
}

func TestEngine_DivertsHazard(t *testing.T) {
	e := createTestEngine(t, crossingLevel("-11 8 -2 -2 -2 -2"))

	d, err := e.Turn(TurnInput{
		Player:  start(0, 0, Up),
		Hazards: []PathNode{start(5, 0, Right)},
	})
	require.NoError(t, err)
	assert.Equal(t, "1 0 RIGHT", d.String())
	assert.Equal(t, "hazard", d.Source)

	// the diverted hazard now crashes into (1,0) and is not tracked again
	d, err = e.Turn(TurnInput{
		Player:  start(1, 0, Left),
		Hazards: []PathNode{start(4, 0, Right)},
	})
	require.NoError(t, err)
	assert.True(t, d.Wait)
	assert.Zero(t, e.Planner().Active())
}

func TestEngine_IgnoresHazardsOnRoute(t *testing.T) {
	e := createTestEngine(t, crossingLevel("-11 8 -2 -2 -2 -2"))

	_, err := e.Turn(TurnInput{
		Player:  start(0, 0, Up),
		Hazards: []PathNode{start(1, 1, Up)},
	})
	require.NoError(t, err)
	assert.Zero(t, e.Planner().Active())
}

func TestEngine_ReplayIsDeterministic(t *testing.T) {
	turns := []TurnInput{
		{Player: start(1, 0, Up)},
		{Player: start(1, 1, Up)},
		{Player: start(2, 1, Left)},
	}

	first := createTestEngine(t, bendLevel())
	want := first.Replay(turns)

	second := createTestEngine(t, bendLevel())
	got := second.Replay(first.Inputs())

	assert.Equal(t, want, got)
	if diff := cmp.Diff(first.GetState(), second.GetState()); diff != "" {
		t.Errorf("state mismatch (-first +second):\n%s", diff)
	}
}

func TestEngine_Reset(t *testing.T) {
	e := createTestEngine(t, bendLevel())
	before := e.GetState().Grid

	_, err := e.Turn(TurnInput{Player: start(1, 0, Up)})
	require.NoError(t, err)
	require.NotEqual(t, before, e.GetState().Grid, "solving rotates the model")

	state := e.Reset()
	assert.Equal(t, before, state.Grid)
	assert.Zero(t, state.Turn)
	assert.False(t, state.Solved)
	assert.Nil(t, e.Solution())
	assert.Empty(t, e.GetTurnHistory())
}

func TestPreview(t *testing.T) {
	sol, rows, err := Preview(bendLevel(), start(1, 0, Up))
	require.NoError(t, err)
	assert.Len(t, sol.Instructions, 3)
	assert.Equal(t, []string{"0 -3 0 0", "0 11 13 0", "0 0 3 0", "0 0 X 0"}, rows)

	_, _, err = Preview(level(3, 3, 1, "0 3 0", "0 0 0", "0 3 0"), start(1, 0, Up))
	assert.ErrorIs(t, err, ErrNoPath)
}
