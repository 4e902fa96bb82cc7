package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-engine/internal/engine/models"
)

func pt(x, y float64) models.Point {
	return models.Point{X: x, Y: y}
}

func TestDistanceAndVectors(t *testing.T) {
	assert.InDelta(t, 5, Distance(pt(0, 0), pt(3, 4)), 1e-9)
	assert.Equal(t, pt(1, 1), Add(pt(0, 1), pt(1, 0)))
	assert.Equal(t, pt(2, -2), Sub(pt(3, 0), pt(1, 2)))
	assert.Equal(t, pt(6, 8), Scale(pt(3, 4), 2))
	assert.InDelta(t, 1, Norm(Normalize(pt(10, -7))), 1e-9)
	assert.Equal(t, models.Point{}, Normalize(models.Point{}))
}

func TestLeftNormalAndAngle(t *testing.T) {
	assert.Equal(t, pt(0, 1), LeftNormal(pt(1, 0)))
	assert.InDelta(t, 90, AngleBetween(pt(1, 0), pt(0, 1)), 1e-9)
	assert.InDelta(t, 180, AngleBetween(pt(1, 0), pt(-1, 0)), 1e-9)
	assert.InDelta(t, 0, AngleBetween(pt(1, 0), pt(5, 0)), 1e-9)
}

func TestPointToSegment(t *testing.T) {
	d, tp := PointToSegment(pt(5, 3), pt(0, 0), pt(10, 0))
	assert.InDelta(t, 3, d, 1e-9)
	assert.InDelta(t, 0.5, tp, 1e-9)

	// проекция за концом зажимается
	d, tp = PointToSegment(pt(-4, 0), pt(0, 0), pt(10, 0))
	assert.InDelta(t, 4, d, 1e-9)
	assert.InDelta(t, 0, tp, 1e-9)
}

func TestSegmentIntersection(t *testing.T) {
	p, tt, u, ok := SegmentIntersection(pt(0, 0), pt(10, 0), pt(5, -5), pt(5, 5))
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 0.5, tt, 1e-9)
	assert.InDelta(t, 0.5, u, 1e-9)

	_, _, _, ok = SegmentIntersection(pt(0, 0), pt(10, 0), pt(0, 1), pt(10, 1))
	assert.False(t, ok, "параллельные отрезки не пересекаются")

	_, _, _, ok = SegmentIntersection(pt(0, 0), pt(10, 0), pt(20, -5), pt(20, 5))
	assert.False(t, ok, "пересечение прямых вне отрезков")
}

func TestLineIntersection(t *testing.T) {
	p, ok := LineIntersection(pt(0, 0), pt(1, 0), pt(5, -3), pt(5, 7))
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)

	_, ok = LineIntersection(pt(0, 0), pt(1, 0), pt(0, 1), pt(1, 1))
	assert.False(t, ok)
}

func TestOffsetSegment(t *testing.T) {
	a, b := OffsetSegment(pt(0, 0), pt(10, 0), 2)
	assert.InDelta(t, 2, a.Y, 1e-9)
	assert.InDelta(t, 2, b.Y, 1e-9)
	assert.InDelta(t, 0, a.X, 1e-9)
	assert.InDelta(t, 10, b.X, 1e-9)
}

func TestPolygonMetrics(t *testing.T) {
	square := []models.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}

	assert.InDelta(t, 100, SignedArea(square), 1e-9)
	assert.InDelta(t, 100, Area(square), 1e-9)
	assert.InDelta(t, 40, Perimeter(square), 1e-9)

	c := Centroid(square)
	assert.InDelta(t, 5, c.X, 1e-9)
	assert.InDelta(t, 5, c.Y, 1e-9)

	reversed := []models.Point{pt(0, 10), pt(10, 10), pt(10, 0), pt(0, 0)}
	assert.InDelta(t, -100, SignedArea(reversed), 1e-9)
}

func TestPointInPolygon(t *testing.T) {
	square := []models.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}

	assert.True(t, PointInPolygon(pt(5, 5), square))
	assert.False(t, PointInPolygon(pt(15, 5), square))
	assert.False(t, PointInPolygon(pt(5, -1), square))
}

func TestPolygonContains(t *testing.T) {
	outer := []models.Point{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)}
	inner := []models.Point{pt(40, 40), pt(60, 40), pt(60, 60), pt(40, 60)}
	shifted := []models.Point{pt(90, 90), pt(110, 90), pt(110, 110), pt(90, 110)}

	assert.True(t, PolygonContains(outer, inner))
	assert.False(t, PolygonContains(outer, shifted))
	assert.False(t, PolygonContains(inner, outer))
}

func TestWallBounds(t *testing.T) {
	w := models.Wall{Start: pt(0, 0), End: pt(100, 0), Thickness: 20}
	b := WallBounds(w)

	assert.InDelta(t, -10, b.MinX, 1e-9)
	assert.InDelta(t, -10, b.MinY, 1e-9)
	assert.InDelta(t, 110, b.MaxX, 1e-9)
	assert.InDelta(t, 10, b.MaxY, 1e-9)
}

func TestBoxesOverlap(t *testing.T) {
	a := models.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := models.Box{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}
	c := models.Box{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}

	assert.True(t, BoxesOverlap(a, b))
	assert.False(t, BoxesOverlap(a, c))
}
