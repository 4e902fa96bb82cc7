package bevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

func cornerWalls() []models.Wall {
	return []models.Wall{
		{
			ID:        "a",
			Start:     models.Point{X: 0, Y: 0},
			End:       models.Point{X: 1000, Y: 0},
			Thickness: 200,
			Height:    270,
			Material:  "brick",
			Layer:     "default",
		},
		{
			ID:        "b",
			Start:     models.Point{X: 0, Y: 0},
			End:       models.Point{X: 0, Y: 1000},
			Thickness: 200,
			Height:    250,
			Material:  "concrete",
			Layer:     "default",
		},
	}
}

func TestGeometryPerpendicularCorner(t *testing.T) {
	walls := cornerWalls()

	g, ok := Geometry(walls[0], walls[1], 0)
	require.True(t, ok)

	assert.InDelta(t, 0, g.Node.X, 1e-9)
	assert.InDelta(t, 0, g.Node.Y, 1e-9)
	assert.InDelta(t, 90, g.InteriorAngle, 1e-9)
	assert.InDelta(t, 1000, g.LenA, 1e-9)
	assert.InDelta(t, 1000, g.LenB, 1e-9)

	assert.InDelta(t, -100, g.OuterVertex.X, 1e-9)
	assert.InDelta(t, -100, g.OuterVertex.Y, 1e-9)
	assert.InDelta(t, 50, g.InnerVertex.X, 1e-9)
	assert.InDelta(t, 50, g.InnerVertex.Y, 1e-9)

	outerDist := geometry.Distance(g.OuterVertex, g.Node)
	innerDist := geometry.Distance(g.InnerVertex, g.Node)
	assert.Greater(t, outerDist, innerDist)
}

func TestGeometryRecoversTrimmedNode(t *testing.T) {
	walls := cornerWalls()
	walls[0].Start = models.Point{X: 150, Y: 0}
	walls[1].Start = models.Point{X: 0, Y: 150}

	g, ok := Geometry(walls[0], walls[1], 0)
	require.True(t, ok)

	// узел восстановлен пересечением осевых прямых
	assert.InDelta(t, 0, g.Node.X, 1e-9)
	assert.InDelta(t, 0, g.Node.Y, 1e-9)
	assert.InDelta(t, 1000, g.LenA, 1e-9)
}

func TestGeometryParallelWallsFail(t *testing.T) {
	a := models.Wall{ID: "a", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 100, Y: 0}, Thickness: 10}
	b := models.Wall{ID: "b", Start: models.Point{X: 0, Y: 50}, End: models.Point{X: 100, Y: 50}, Thickness: 10}

	_, ok := Geometry(a, b, 0)
	assert.False(t, ok)
}

func TestApplyInsertsConnector(t *testing.T) {
	out, diags := Apply(cornerWalls(), "a", "b", HandleOuter, models.Point{X: -80, Y: -80}, 0)
	require.Empty(t, diags)
	require.Len(t, out, 3)

	trim := 80 * 2 / 1.4142135623730951 // проекция указателя на наружный луч

	assert.InDelta(t, trim, out[0].Start.X, 1e-6)
	assert.InDelta(t, 0, out[0].Start.Y, 1e-6)
	assert.InDelta(t, 0, out[1].Start.X, 1e-6)
	assert.InDelta(t, trim, out[1].Start.Y, 1e-6)

	conn := out[2]
	assert.True(t, conn.Connector)
	assert.NotEmpty(t, conn.ID)
	assert.NotEmpty(t, conn.BevelNode)
	assert.InDelta(t, trim, conn.Start.X, 1e-6)
	assert.InDelta(t, trim, conn.End.Y, 1e-6)

	// параметры от более тонкого родителя, высота минимальная
	assert.InDelta(t, 200, conn.Thickness, 1e-9)
	assert.InDelta(t, 250, conn.Height, 1e-9)
	assert.Empty(t, conn.Openings)
}

func TestApplyReplacesExistingConnector(t *testing.T) {
	out, diags := Apply(cornerWalls(), "a", "b", HandleOuter, models.Point{X: -80, Y: -80}, 0)
	require.Empty(t, diags)
	connID := out[2].ID

	out, diags = Apply(out, "a", "b", HandleOuter, models.Point{X: -120, Y: -120}, 0)
	require.Empty(t, diags)
	require.Len(t, out, 3, "повторное применение не плодит соединители")
	assert.Equal(t, connID, out[2].ID)
}

func TestApplyClampsTrim(t *testing.T) {
	out, diags := Apply(cornerWalls(), "a", "b", HandleOuter, models.Point{X: -5000, Y: -5000}, 0)
	require.Empty(t, diags)
	require.Len(t, out, 3)

	// подрезка не длиннее трети короткой стены
	assert.InDelta(t, 1000.0/3, out[0].Start.X, 1e-6)
	assert.InDelta(t, 1000.0/3, out[1].Start.Y, 1e-6)
}

func TestApplyZeroTrimRemovesConnector(t *testing.T) {
	out, diags := Apply(cornerWalls(), "a", "b", HandleOuter, models.Point{X: -80, Y: -80}, 0)
	require.Empty(t, diags)
	require.Len(t, out, 3)

	// указатель позади узла откатывает фаску и возвращает узел
	out, diags = Apply(out, "a", "b", HandleOuter, models.Point{X: 50, Y: 50}, 0)
	require.Empty(t, diags)
	require.Len(t, out, 2)

	assert.InDelta(t, 0, out[0].Start.X, 1e-6)
	assert.InDelta(t, 0, out[0].Start.Y, 1e-6)
	assert.InDelta(t, 0, out[1].Start.X, 1e-6)
	assert.InDelta(t, 0, out[1].Start.Y, 1e-6)
	for _, w := range out {
		assert.False(t, w.Connector)
	}
}

func TestApplyUnknownHandle(t *testing.T) {
	_, diags := Apply(cornerWalls(), "a", "b", "sideways", models.Point{}, 0)
	require.Len(t, diags, 1)
	assert.Equal(t, models.SeverityError, diags[0].Severity)
}

func TestApplyUnknownWall(t *testing.T) {
	_, diags := Apply(cornerWalls(), "a", "nope", HandleOuter, models.Point{}, 0)
	require.Len(t, diags, 1)
	assert.Equal(t, "nope", diags[0].Scope)
}

func TestDragCenterMovesNode(t *testing.T) {
	out, ok := DragCenter(cornerWalls(), "a", "b", models.Point{X: -50, Y: -50}, 0)
	require.True(t, ok)
	require.Len(t, out, 2)

	assert.InDelta(t, -50, out[0].Start.X, 1e-6)
	assert.InDelta(t, -50, out[0].Start.Y, 1e-6)
	assert.Equal(t, out[0].Start, out[1].Start)

	// дальние концы не тронуты
	assert.InDelta(t, 1000, out[0].End.X, 1e-9)
	assert.InDelta(t, 1000, out[1].End.Y, 1e-9)
}

func TestDragCenterRejectsDegenerateAngle(t *testing.T) {
	// ход внутрь угла вытягивает стены в линию
	out, ok := DragCenter(cornerWalls(), "a", "b", models.Point{X: 500, Y: 500}, 0)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	walls := cornerWalls()
	_, _ = Apply(walls, "a", "b", HandleOuter, models.Point{X: -80, Y: -80}, 0)

	assert.Equal(t, models.Point{X: 0, Y: 0}, walls[0].Start)
	assert.Len(t, walls, 2)
}
