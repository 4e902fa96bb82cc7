package geometry

import (
	"math"

	"plan-engine/internal/engine/models"
)

// ============================================================
// Scalar helpers
// ============================================================

const Epsilon = 1e-9

func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ============================================================
// Vector operations
// ============================================================

func Distance(p1, p2 models.Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func Sub(a, b models.Point) models.Point {
	return models.Point{X: a.X - b.X, Y: a.Y - b.Y}
}

func Add(a, b models.Point) models.Point {
	return models.Point{X: a.X + b.X, Y: a.Y + b.Y}
}

func Scale(p models.Point, k float64) models.Point {
	return models.Point{X: p.X * k, Y: p.Y * k}
}

func Dot(a, b models.Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

func Cross(a, b models.Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func Norm(p models.Point) float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Normalize возвращает единичный вектор (ноль для нулевого вектора)
func Normalize(p models.Point) models.Point {
	l := Norm(p)
	if l < Epsilon {
		return models.Point{}
	}
	return models.Point{X: p.X / l, Y: p.Y / l}
}

func Midpoint(a, b models.Point) models.Point {
	return models.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// LeftNormal — нормаль слева от направления вектора
func LeftNormal(dir models.Point) models.Point {
	return models.Point{X: -dir.Y, Y: dir.X}
}

// AngleBetween — угол между векторами в градусах, [0, 180]
func AngleBetween(a, b models.Point) float64 {
	na, nb := Norm(a), Norm(b)
	if na < Epsilon || nb < Epsilon {
		return 0
	}
	cos := Clamp(Dot(a, b)/(na*nb), -1, 1)
	return math.Acos(cos) * 180 / math.Pi
}

// ============================================================
// Point / segment
// ============================================================

// PointToSegment возвращает расстояние от точки до отрезка и
// параметр t проекции, зажатый в [0,1]
func PointToSegment(p, a, b models.Point) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy

	if lenSq < Epsilon {
		return Distance(p, a), 0
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = Clamp(t, 0, 1)

	proj := models.Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return Distance(p, proj), t
}

// ProjectOnRay — длина проекции вектора origin→p на единичный луч dir
func ProjectOnRay(p, origin, dir models.Point) float64 {
	return Dot(Sub(p, origin), dir)
}

// ============================================================
// Segment / segment
// ============================================================

// SegmentIntersection ищет точку пересечения отрезков a1-a2 и b1-b2.
// Возвращает точку и параметры t,u вдоль обоих отрезков.
func SegmentIntersection(a1, a2, b1, b2 models.Point) (models.Point, float64, float64, bool) {
	d1 := Sub(a2, a1)
	d2 := Sub(b2, b1)

	denom := Cross(d1, d2)
	if math.Abs(denom) < Epsilon {
		return models.Point{}, 0, 0, false // параллельны или коллинеарны
	}

	diff := Sub(b1, a1)
	t := Cross(diff, d2) / denom
	u := Cross(diff, d1) / denom

	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return models.Point{}, 0, 0, false
	}

	return models.Point{X: a1.X + t*d1.X, Y: a1.Y + t*d1.Y}, t, u, true
}

// LineIntersection — пересечение бесконечных прямых через a1-a2 и b1-b2
func LineIntersection(a1, a2, b1, b2 models.Point) (models.Point, bool) {
	d1 := Sub(a2, a1)
	d2 := Sub(b2, b1)

	denom := Cross(d1, d2)
	if math.Abs(denom) < Epsilon {
		return models.Point{}, false
	}

	t := Cross(Sub(b1, a1), d2) / denom
	return models.Point{X: a1.X + t*d1.X, Y: a1.Y + t*d1.Y}, true
}

// OffsetSegment сдвигает отрезок на dist вдоль его левой нормали
func OffsetSegment(a, b models.Point, dist float64) (models.Point, models.Point) {
	n := LeftNormal(Normalize(Sub(b, a)))
	shift := Scale(n, dist)
	return Add(a, shift), Add(b, shift)
}

// ============================================================
// Polygons
// ============================================================

// SignedArea — площадь по формуле шнурования, положительная для CCW
func SignedArea(points []models.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(points); i++ {
		j := (i + 1) % len(points)
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

func Area(points []models.Point) float64 {
	return math.Abs(SignedArea(points))
}

func Perimeter(points []models.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < len(points); i++ {
		sum += Distance(points[i], points[(i+1)%len(points)])
	}
	return sum
}

// Centroid — центр тяжести полигона (среднее вершин для вырожденных)
func Centroid(points []models.Point) models.Point {
	if len(points) == 0 {
		return models.Point{}
	}
	a := SignedArea(points)
	if math.Abs(a) < Epsilon {
		var sx, sy float64
		for _, p := range points {
			sx += p.X
			sy += p.Y
		}
		n := float64(len(points))
		return models.Point{X: sx / n, Y: sy / n}
	}

	var cx, cy float64
	for i := 0; i < len(points); i++ {
		j := (i + 1) % len(points)
		f := points[i].X*points[j].Y - points[j].X*points[i].Y
		cx += (points[i].X + points[j].X) * f
		cy += (points[i].Y + points[j].Y) * f
	}
	return models.Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// PointInPolygon — тест четности пересечений луча
func PointInPolygon(p models.Point, polygon []models.Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PolygonContains — лежит ли полигон inner целиком внутри outer
func PolygonContains(outer, inner []models.Point) bool {
	if len(outer) < 3 || len(inner) < 3 {
		return false
	}
	ob := BoundsOf(outer)
	ib := BoundsOf(inner)
	if ib.MinX < ob.MinX || ib.MinY < ob.MinY || ib.MaxX > ob.MaxX || ib.MaxY > ob.MaxY {
		return false
	}
	for _, p := range inner {
		if !PointInPolygon(p, outer) {
			return false
		}
	}
	return true
}

func BoundsOf(points []models.Point) models.Box {
	if len(points) == 0 {
		return models.Box{}
	}
	b := models.Box{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// WallBounds — бокс стены, расширенный на половину толщины
func WallBounds(w models.Wall) models.Box {
	b := BoundsOf([]models.Point{w.Start, w.End})
	half := w.Thickness / 2
	b.MinX -= half
	b.MinY -= half
	b.MaxX += half
	b.MaxY += half
	return b
}

func BoxesOverlap(a, b models.Box) bool {
	return a.MinX <= b.MaxX && b.MinX <= a.MaxX &&
		a.MinY <= b.MaxY && b.MinY <= a.MaxY
}
