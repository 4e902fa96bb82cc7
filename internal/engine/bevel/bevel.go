package bevel

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Corner bevel geometry
// ============================================================

const (
	HandleOuter = "outer"
	HandleInner = "inner"

	defaultTolerance = 0.5
	lengthEpsilon    = 1e-6

	maxTrimFraction = 3.0 // фаска не длиннее min(lenA, lenB)/3

	minInteriorAngle = 15.0
	maxInteriorAngle = 165.0
)

// PairGeometry — управляющая геометрия угла двух стен в общем узле
type PairGeometry struct {
	Node          models.Point    `json:"node"`
	DirA          models.Point    `json:"dirA"` // от узла вдоль стены A
	DirB          models.Point    `json:"dirB"`
	LenA          float64         `json:"lenA"`
	LenB          float64         `json:"lenB"`
	OuterLineA    [2]models.Point `json:"outerLineA"`
	OuterLineB    [2]models.Point `json:"outerLineB"`
	InnerLineA    [2]models.Point `json:"innerLineA"`
	InnerLineB    [2]models.Point `json:"innerLineB"`
	OuterVertex   models.Point    `json:"outerVertex"`
	InnerVertex   models.Point    `json:"innerVertex"`
	Center        models.Point    `json:"center"`
	InteriorAngle float64         `json:"interiorAngle"` // градусы
}

// Geometry строит контрольную геометрию пары стен, делящих узел
func Geometry(a, b models.Wall, tol float64) (PairGeometry, bool) {
	if tol <= 0 {
		tol = defaultTolerance
	}

	node, ok := findNode(a, b, tol)
	if !ok {
		return PairGeometry{}, false
	}

	farA := farEndpoint(a, node)
	farB := farEndpoint(b, node)

	g := PairGeometry{
		Node: node,
		DirA: geometry.Normalize(geometry.Sub(farA, node)),
		DirB: geometry.Normalize(geometry.Sub(farB, node)),
		LenA: geometry.Distance(node, farA),
		LenB: geometry.Distance(node, farB),
	}
	g.InteriorAngle = geometry.AngleBetween(g.DirA, g.DirB)

	bisector := geometry.Normalize(geometry.Add(g.DirA, g.DirB))
	if geometry.Norm(bisector) < geometry.Epsilon {
		bisector = geometry.LeftNormal(g.DirA) // стены напротив друг друга
	}

	// внешняя нормаль смотрит прочь от биссектрисы угла
	outerA := pickNormal(g.DirA, bisector, false)
	innerA := pickNormal(g.DirA, bisector, true)
	outerB := pickNormal(g.DirB, bisector, false)
	innerB := pickNormal(g.DirB, bisector, true)

	halfA := a.Thickness / 2
	halfB := b.Thickness / 2

	g.OuterLineA = offsetAlong(node, g.DirA, g.LenA, outerA, halfA)
	g.InnerLineA = offsetAlong(node, g.DirA, g.LenA, innerA, halfA)
	g.OuterLineB = offsetAlong(node, g.DirB, g.LenB, outerB, halfB)
	g.InnerLineB = offsetAlong(node, g.DirB, g.LenB, innerB, halfB)

	// наружная вершина — усовое пересечение внешних офсетов;
	// внутренняя — фаска между внутренними офсетами у узла, она
	// всегда строго ближе к узлу, чем наружная
	g.OuterVertex = intersectOrMid(g.OuterLineA, g.OuterLineB)
	g.InnerVertex = geometry.Midpoint(g.InnerLineA[0], g.InnerLineB[0])
	g.Center = geometry.Midpoint(g.OuterVertex, g.InnerVertex)

	return g, true
}

// findNode — общий конец в допуске; для уже подрезанных стен
// узел восстанавливается пересечением осевых прямых
func findNode(a, b models.Wall, tol float64) (models.Point, bool) {
	for _, pa := range []models.Point{a.Start, a.End} {
		for _, pb := range []models.Point{b.Start, b.End} {
			if geometry.Distance(pa, pb) < tol {
				return geometry.Midpoint(pa, pb), true
			}
		}
	}
	if p, ok := geometry.LineIntersection(a.Start, a.End, b.Start, b.End); ok {
		return p, true
	}
	return models.Point{}, false
}

func farEndpoint(w models.Wall, node models.Point) models.Point {
	if geometry.Distance(w.Start, node) >= geometry.Distance(w.End, node) {
		return w.Start
	}
	return w.End
}

func nearEnd(w models.Wall, node models.Point) int {
	if geometry.Distance(w.Start, node) <= geometry.Distance(w.End, node) {
		return 0
	}
	return 1
}

func pickNormal(dir, bisector models.Point, inner bool) models.Point {
	n := geometry.LeftNormal(dir)
	toward := geometry.Dot(n, bisector) > 0
	if toward != inner {
		n = geometry.Scale(n, -1)
	}
	return n
}

func offsetAlong(node, dir models.Point, length float64, normal models.Point, dist float64) [2]models.Point {
	shift := geometry.Scale(normal, dist)
	return [2]models.Point{
		geometry.Add(node, shift),
		geometry.Add(geometry.Add(node, geometry.Scale(dir, length)), shift),
	}
}

func intersectOrMid(la, lb [2]models.Point) models.Point {
	if p, ok := geometry.LineIntersection(la[0], la[1], lb[0], lb[1]); ok {
		return p
	}
	return geometry.Midpoint(la[0], lb[0]) // параллельные офсеты
}

// ============================================================
// Bevel application
// ============================================================

// Apply подрезает обе стены от узла и вставляет (или заменяет,
// ключ — узел) синтетическую соединительную стену; длина ≤ epsilon
// убирает соединитель.
func Apply(walls []models.Wall, aID, bID, handle string, pointer models.Point, tol float64) ([]models.Wall, []models.Diagnostic) {
	out := models.CloneWalls(walls)

	ai, bi, diags := findPair(out, aID, bID)
	if diags != nil {
		return out, diags
	}

	g, ok := Geometry(out[ai], out[bi], tol)
	if !ok {
		return out, []models.Diagnostic{models.ErrorDiag(aID, "walls do not share a node")}
	}

	var vertex models.Point
	switch handle {
	case HandleOuter:
		vertex = g.OuterVertex
	case HandleInner:
		vertex = g.InnerVertex
	default:
		return out, []models.Diagnostic{models.ErrorDiag(aID, fmt.Sprintf("unknown bevel handle %q", handle))}
	}

	radial := geometry.Normalize(geometry.Sub(vertex, g.Node))
	trim := geometry.ProjectOnRay(pointer, g.Node, radial)
	trim = geometry.Clamp(trim, 0, math.Min(g.LenA, g.LenB)/maxTrimFraction)

	key := nodeKey(g.Node, tol)

	if trim <= lengthEpsilon {
		// откат фаски: концы назад в узел, соединитель прочь
		setEnd(&out[ai], nearEnd(out[ai], g.Node), g.Node)
		setEnd(&out[bi], nearEnd(out[bi], g.Node), g.Node)
		return removeConnector(out, key), nil
	}

	trimA := geometry.Add(g.Node, geometry.Scale(g.DirA, trim))
	trimB := geometry.Add(g.Node, geometry.Scale(g.DirB, trim))
	setEnd(&out[ai], nearEnd(out[ai], g.Node), trimA)
	setEnd(&out[bi], nearEnd(out[bi], g.Node), trimB)

	conn := connectorFor(out[ai], out[bi], key)
	conn.Start = trimA
	conn.End = trimB

	replaced := false
	for i := range out {
		if out[i].Connector && out[i].BevelNode == key {
			conn.ID = out[i].ID
			out[i] = conn
			replaced = true
			break
		}
	}
	if !replaced {
		out = append(out, conn)
	}

	return out, nil
}

// DragCenter смещает общий узел вдоль луча узел→центр; ход вне
// [15°, 165°] отклоняется.
func DragCenter(walls []models.Wall, aID, bID string, pointer models.Point, tol float64) ([]models.Wall, bool) {
	out := models.CloneWalls(walls)

	ai, bi, diags := findPair(out, aID, bID)
	if diags != nil {
		return nil, false
	}

	g, ok := Geometry(out[ai], out[bi], tol)
	if !ok {
		return nil, false
	}

	radial := geometry.Normalize(geometry.Sub(g.Center, g.Node))
	if geometry.Norm(radial) < geometry.Epsilon {
		return nil, false
	}

	shift := geometry.ProjectOnRay(pointer, g.Node, radial)
	newNode := geometry.Add(g.Node, geometry.Scale(radial, shift))

	farA := farEndpoint(out[ai], g.Node)
	farB := farEndpoint(out[bi], g.Node)
	angle := geometry.AngleBetween(geometry.Sub(farA, newNode), geometry.Sub(farB, newNode))
	if angle < minInteriorAngle || angle > maxInteriorAngle {
		return nil, false // вырожденный угол
	}

	setEnd(&out[ai], nearEnd(out[ai], g.Node), newNode)
	setEnd(&out[bi], nearEnd(out[bi], g.Node), newNode)
	return out, true
}

// ============================================================
// Helpers
// ============================================================

func findPair(walls []models.Wall, aID, bID string) (int, int, []models.Diagnostic) {
	ai, bi := -1, -1
	for i, w := range walls {
		switch w.ID {
		case aID:
			ai = i
		case bID:
			bi = i
		}
	}
	if ai < 0 {
		return 0, 0, []models.Diagnostic{models.ErrorDiag(aID, "wall not found")}
	}
	if bi < 0 {
		return 0, 0, []models.Diagnostic{models.ErrorDiag(bID, "wall not found")}
	}
	return ai, bi, nil
}

func setEnd(w *models.Wall, end int, p models.Point) {
	if end == 0 {
		w.Start = p
	} else {
		w.End = p
	}
}

func nodeKey(p models.Point, tol float64) string {
	g := tol
	if g < 1e-6 {
		g = 1e-6
	}
	return fmt.Sprintf("%d:%d", int(math.Round(p.X/g)), int(math.Round(p.Y/g)))
}

// connectorFor — соединительная стена без проемов, параметры от
// более тонкого родителя, высота минимальная
func connectorFor(a, b models.Wall, key string) models.Wall {
	thin := a
	if b.Thickness < a.Thickness {
		thin = b
	}
	return models.Wall{
		ID:        uuid.NewString(),
		Thickness: math.Min(a.Thickness, b.Thickness),
		Height:    math.Min(a.Height, b.Height),
		Material:  thin.Material,
		Layer:     thin.Layer,
		Connector: true,
		BevelNode: key,
	}
}

func removeConnector(walls []models.Wall, key string) []models.Wall {
	out := walls[:0]
	for _, w := range walls {
		if w.Connector && w.BevelNode == key {
			continue
		}
		out = append(out, w)
	}
	return out
}
