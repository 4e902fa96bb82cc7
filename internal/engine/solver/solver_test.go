package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-engine/internal/engine/models"
)

func hwall(id string, length float64) models.Wall {
	return models.Wall{
		ID:        id,
		Start:     models.Point{X: 0, Y: 0},
		End:       models.Point{X: length, Y: 0},
		Thickness: 10,
	}
}

func fptr(v float64) *float64 {
	return &v
}

func wallByID(t *testing.T, walls []models.Wall, id string) models.Wall {
	t.Helper()
	for _, w := range walls {
		if w.ID == id {
			return w
		}
	}
	t.Fatalf("wall %q not found", id)
	return models.Wall{}
}

func TestSolveLiteralTarget(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	dims := []models.Dimension{{WallID: "w1", Target: fptr(3000)}}

	res := Solve(walls, dims, nil, nil, nil)

	require.Empty(t, res.Diagnostics)
	w := wallByID(t, res.Walls, "w1")
	assert.Equal(t, models.Point{X: 0, Y: 0}, w.Start, "начало неподвижно")
	assert.InDelta(t, 3000, w.End.X, 1e-9)
	assert.InDelta(t, 0, w.End.Y, 1e-9)
}

func TestSolvePreservesDirection(t *testing.T) {
	walls := []models.Wall{{
		ID:        "d",
		Start:     models.Point{X: 100, Y: 100},
		End:       models.Point{X: 100 + 300, Y: 100 + 400},
		Thickness: 10,
	}}
	dims := []models.Dimension{{WallID: "d", Target: fptr(1000)}}

	res := Solve(walls, dims, nil, nil, nil)

	w := wallByID(t, res.Walls, "d")
	assert.InDelta(t, 1000, w.Length(), 1e-9)
	assert.InDelta(t, 100+600, w.End.X, 1e-9)
	assert.InDelta(t, 100+800, w.End.Y, 1e-9)
}

func TestSolveExpressionOverWallLength(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000), hwall("w2", 500)}
	dims := []models.Dimension{{WallID: "w2", Expr: "2*(wall.w1.length)+50"}}

	res := Solve(walls, dims, nil, nil, nil)

	require.Empty(t, res.Diagnostics)
	assert.InDelta(t, 2050, wallByID(t, res.Walls, "w2").Length(), 1e-9)
}

func TestSolveClampMinMax(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	dims := []models.Dimension{{WallID: "w1", Target: fptr(3000), Max: fptr(2000)}}

	res := Solve(walls, dims, nil, nil, nil)
	assert.InDelta(t, 2000, wallByID(t, res.Walls, "w1").Length(), 1e-9)

	dims = []models.Dimension{{WallID: "w1", Target: fptr(100), Min: fptr(500)}}
	res = Solve(walls, dims, nil, nil, nil)
	assert.InDelta(t, 500, wallByID(t, res.Walls, "w1").Length(), 1e-9)
}

func TestSolveEqualityGroup(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000), hwall("w2", 1200), hwall("w3", 1400)}
	dims := []models.Dimension{
		{WallID: "w1", Group: "g"},
		{WallID: "w2", Group: "g"},
		{WallID: "w3", Group: "g"},
	}

	res := Solve(walls, dims, nil, nil, nil)

	for _, id := range []string{"w1", "w2", "w3"} {
		assert.InDelta(t, 1200, wallByID(t, res.Walls, id).Length(), 1e-9)
	}

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, models.SeverityWarning, res.Diagnostics[0].Severity)
	assert.Equal(t, "g", res.Diagnostics[0].Scope)
}

func TestSolveChainEqualSegments(t *testing.T) {
	walls := []models.Wall{hwall("w1", 600), hwall("w2", 900), hwall("w3", 1500)}
	chains := []models.Chain{{
		WallIDs:       []string{"w1", "w2", "w3"},
		Total:         fptr(3000),
		EqualSegments: true,
	}}

	res := Solve(walls, nil, chains, nil, nil)

	require.Empty(t, res.Diagnostics)
	for _, id := range []string{"w1", "w2", "w3"} {
		assert.InDelta(t, 1000, wallByID(t, res.Walls, id).Length(), 1e-9)
	}
}

func TestSolveChainProportionalTotal(t *testing.T) {
	walls := []models.Wall{hwall("w1", 100), hwall("w2", 300)}
	chains := []models.Chain{{WallIDs: []string{"w1", "w2"}, Total: fptr(800)}}

	res := Solve(walls, nil, chains, nil, nil)

	require.Empty(t, res.Diagnostics)
	assert.InDelta(t, 200, wallByID(t, res.Walls, "w1").Length(), 1e-9)
	assert.InDelta(t, 600, wallByID(t, res.Walls, "w2").Length(), 1e-9)
}

func TestSolveChainRespectsPerWallClamp(t *testing.T) {
	walls := []models.Wall{hwall("w1", 600), hwall("w2", 900)}
	dims := []models.Dimension{{WallID: "w1", Max: fptr(500)}}
	chains := []models.Chain{{
		WallIDs:       []string{"w1", "w2"},
		Total:         fptr(2000),
		EqualSegments: true,
	}}

	res := Solve(walls, dims, chains, nil, nil)

	assert.InDelta(t, 500, wallByID(t, res.Walls, "w1").Length(), 1e-9)
	assert.InDelta(t, 1000, wallByID(t, res.Walls, "w2").Length(), 1e-9)
}

func TestSolveDuplicateDimensionClampsMerged(t *testing.T) {
	walls := []models.Wall{hwall("w1", 600), hwall("w2", 900)}
	// две записи на одну стену: итоговый интервал [100, 500],
	// порядок объявления не влияет
	dims := []models.Dimension{
		{WallID: "w1", Min: fptr(100)},
		{WallID: "w1", Max: fptr(500)},
	}
	chains := []models.Chain{{
		WallIDs:       []string{"w1", "w2"},
		Total:         fptr(2000),
		EqualSegments: true,
	}}

	res := Solve(walls, dims, chains, nil, nil)

	assert.InDelta(t, 500, wallByID(t, res.Walls, "w1").Length(), 1e-9)
	assert.InDelta(t, 1000, wallByID(t, res.Walls, "w2").Length(), 1e-9)

	found := false
	for _, d := range res.Diagnostics {
		if d.Severity == models.SeverityWarning && d.Scope == "w1" &&
			strings.Contains(d.Message, "multiple dimensions") {
			found = true
		}
	}
	assert.True(t, found, "нет предупреждения о дубликате: %v", res.Diagnostics)
}

func TestSolveParameters(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	params := []models.Parameter{
		{Name: "grid", Value: fptr(250)},
		{Name: "width", Expr: "grid*4"},
	}
	dims := []models.Dimension{{WallID: "w1", Expr: "width/2"}}

	res := Solve(walls, dims, nil, params, nil)

	require.Empty(t, res.Diagnostics)
	assert.InDelta(t, 500, wallByID(t, res.Walls, "w1").Length(), 1e-9)
	assert.InDelta(t, 250, res.ParameterValues["grid"], 1e-9)
	assert.InDelta(t, 1000, res.ParameterValues["width"], 1e-9)
}

func TestSolveContextSeedsVariables(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	params := []models.Parameter{{Name: "span", Expr: "unit*3"}}
	ctx := map[string]float64{"unit": 400}
	dims := []models.Dimension{{WallID: "w1", Expr: "span"}}

	res := Solve(walls, dims, nil, params, ctx)

	require.Empty(t, res.Diagnostics)
	assert.InDelta(t, 1200, wallByID(t, res.Walls, "w1").Length(), 1e-9)

	// наружу уходят только объявленные параметры
	assert.NotContains(t, res.ParameterValues, "unit")
	assert.InDelta(t, 1200, res.ParameterValues["span"], 1e-9)
}

func TestSolveCyclicParameters(t *testing.T) {
	params := []models.Parameter{
		{Name: "a", Expr: "b + 1"},
		{Name: "b", Expr: "a + 1"},
	}

	res := Solve(nil, nil, nil, params, nil)

	assert.Empty(t, res.ParameterValues, "циклические параметры остаются без значений")

	found := false
	for _, d := range res.Diagnostics {
		if d.Severity == models.SeverityError && strings.Contains(d.Message, "cyclic parameter dependency") {
			found = true
		}
	}
	assert.True(t, found, "нет диагностики цикла: %v", res.Diagnostics)
}

func TestSolveMalformedExpressionKeepsWall(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	dims := []models.Dimension{{WallID: "w1", Expr: "2*+"}}

	res := Solve(walls, dims, nil, nil, nil)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, models.SeverityError, res.Diagnostics[0].Severity)
	assert.Equal(t, "w1", res.Diagnostics[0].Scope)
	assert.InDelta(t, 1000, wallByID(t, res.Walls, "w1").Length(), 1e-9)
}

func TestSolveUnknownWallDiagnostic(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	dims := []models.Dimension{{WallID: "ghost", Target: fptr(500)}}

	res := Solve(walls, dims, nil, nil, nil)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "ghost", res.Diagnostics[0].Scope)
	assert.InDelta(t, 1000, wallByID(t, res.Walls, "w1").Length(), 1e-9)
}

func TestSolveDegenerateWallDiagnostic(t *testing.T) {
	walls := []models.Wall{{ID: "z", Start: models.Point{X: 5, Y: 5}, End: models.Point{X: 5, Y: 5}}}
	dims := []models.Dimension{{WallID: "z", Target: fptr(100)}}

	res := Solve(walls, dims, nil, nil, nil)

	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "degenerate")
}

func TestSolveDoesNotMutateInput(t *testing.T) {
	walls := []models.Wall{hwall("w1", 1000)}
	dims := []models.Dimension{{WallID: "w1", Target: fptr(3000)}}

	_ = Solve(walls, dims, nil, nil, nil)

	assert.InDelta(t, 1000, walls[0].Length(), 1e-9)
}

func TestResolveParametersCycleDiagnostic(t *testing.T) {
	params := []models.Parameter{
		{Name: "a", Expr: "b + 1"},
		{Name: "b", Expr: "a + 1"},
	}

	values, diags := ResolveParameters(params, nil)

	assert.NotContains(t, values, "a")
	assert.NotContains(t, values, "b")

	var cycleMsg string
	for _, d := range diags {
		if d.Severity == models.SeverityError {
			cycleMsg += d.Message + "\n"
		}
	}
	assert.Contains(t, cycleMsg, "cyclic parameter dependency")
	assert.Contains(t, cycleMsg, "a -> b -> a")
}

func TestResolveParametersMissingBody(t *testing.T) {
	params := []models.Parameter{{Name: "empty"}}

	values, diags := ResolveParameters(params, nil)

	assert.NotContains(t, values, "empty")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "neither value nor expression")
}
