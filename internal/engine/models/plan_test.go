package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeWalls(t *testing.T) {
	walls := []Wall{
		{ID: "ok", Start: Point{X: 0, Y: 0}, End: Point{X: 100, Y: 0}},
		{ID: "nan", Start: Point{X: math.NaN(), Y: 0}, End: Point{X: 100, Y: 0}},
		{ID: "inf", Start: Point{X: 0, Y: 0}, End: Point{X: math.Inf(1), Y: 0}},
	}

	out := SanitizeWalls(walls)

	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].ID)
}

func TestCloneWallIsDeep(t *testing.T) {
	w := Wall{
		ID:             "w",
		Openings:       []Opening{{ID: "o1", Kind: "door", Offset: 100}},
		ConnectedStart: []string{"a"},
		ConnectedEnd:   []string{"b"},
	}

	cp := CloneWall(w)
	cp.Openings[0].Offset = 999
	cp.ConnectedStart[0] = "x"

	assert.InDelta(t, 100, w.Openings[0].Offset, 1e-9)
	assert.Equal(t, "a", w.ConnectedStart[0])
}

func TestPlanCloneIsDeep(t *testing.T) {
	p := Plan{
		Walls:  []Wall{{ID: "w", Openings: []Opening{{ID: "o"}}}},
		Rooms:  []Room{{ID: "r", WallIDs: []string{"w"}, Vertices: []Point{{X: 1}}}},
		Chains: []Chain{{WallIDs: []string{"w"}}},
	}

	cp := p.Clone()
	cp.Walls[0].ID = "changed"
	cp.Rooms[0].WallIDs[0] = "changed"
	cp.Chains[0].WallIDs[0] = "changed"

	assert.Equal(t, "w", p.Walls[0].ID)
	assert.Equal(t, "w", p.Rooms[0].WallIDs[0])
	assert.Equal(t, "w", p.Chains[0].WallIDs[0])
}

func TestWallLengthAndDirection(t *testing.T) {
	w := Wall{Start: Point{X: 0, Y: 0}, End: Point{X: 3, Y: 4}}

	assert.InDelta(t, 5, w.Length(), 1e-9)
	assert.InDelta(t, 0.6, w.Direction().X, 1e-9)
	assert.InDelta(t, 0.8, w.Direction().Y, 1e-9)

	degenerate := Wall{Start: Point{X: 1, Y: 1}, End: Point{X: 1, Y: 1}}
	assert.Equal(t, Point{}, degenerate.Direction())
}

func TestWallSameBuild(t *testing.T) {
	a := Wall{Material: "brick", Layer: "default", Thickness: 10, Height: 270}
	b := a
	assert.True(t, a.SameBuild(b))

	b.Thickness = 25
	assert.False(t, a.SameBuild(b))
}
