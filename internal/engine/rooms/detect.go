package rooms

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Room detection
// ============================================================

const (
	defaultNodeTolerance = 0.5
	defaultMinRoomArea   = 10000 // 1 м² при сантиметрах
	minFaceArea          = 1e-6
)

type Options struct {
	NodeTolerance float64 `json:"nodeTolerance"`
	MinRoomArea   float64 `json:"minRoomArea"`
}

func DefaultOptions() Options {
	return Options{
		NodeTolerance: defaultNodeTolerance,
		MinRoomArea:   defaultMinRoomArea,
	}
}

func (o Options) normalized() Options {
	if o.NodeTolerance <= 0 {
		o.NodeTolerance = defaultNodeTolerance
	}
	if o.MinRoomArea <= 0 {
		o.MinRoomArea = defaultMinRoomArea
	}
	return o
}

// минимальная сторона по типу комнаты
var minSideByKind = map[string]float64{
	"room":    150,
	"balcony": 80,
}

const defaultMinSide = 90

// Detect извлекает замкнутые грани графа стен и сопоставляет их с
// предыдущими комнатами по множеству id стен.
func Detect(walls []models.Wall, previous []models.Room, opts Options) ([]models.Room, []models.Diagnostic) {
	opts = opts.normalized()
	walls = models.SanitizeWalls(walls)

	var diags []models.Diagnostic
	diags = append(diags, validatePrevious(previous)...)

	faces, outerWalls := traceFaces(walls, opts.NodeTolerance)

	prevBySig := make(map[uint64]models.Room, len(previous))
	for _, r := range previous {
		prevBySig[signature(r.WallIDs)] = r
	}

	taken := make(map[string]bool)
	rooms := make([]models.Room, 0, len(faces))

	for _, f := range faces {
		room := models.Room{
			Vertices:  f.vertices,
			WallIDs:   f.wallIDs,
			Area:      geometry.Area(f.vertices),
			Perimeter: geometry.Perimeter(f.vertices),
			Centroid:  geometry.Centroid(f.vertices),
		}

		if prev, ok := prevBySig[signature(f.wallIDs)]; ok {
			room.ID = prev.ID
			room.Name = prev.Name
			room.Kind = prev.Kind
		} else {
			room.ID = uuid.NewString()
			room.Kind = "room"
		}

		for _, wid := range room.WallIDs {
			if outerWalls[wid] {
				room.Exterior = true
				break
			}
		}

		rooms = append(rooms, room)
		if room.Name != "" {
			taken[room.Name] = true
		}
	}

	// авто-имена для новых граней, без повторов
	next := 1
	for i := range rooms {
		if rooms[i].Name != "" {
			continue
		}
		for {
			name := fmt.Sprintf("Room %d", next)
			next++
			if !taken[name] {
				rooms[i].Name = name
				taken[name] = true
				break
			}
		}
	}

	linkNesting(rooms)

	// вложенная комната целиком внутри родителя и наружу не выходит,
	// даже если обход ее компоненты пометил ее стены как внешние
	for i := range rooms {
		if rooms[i].ParentID != "" {
			rooms[i].Exterior = false
		}
	}

	diags = append(diags, validateRooms(rooms, walls, opts)...)

	return rooms, diags
}

// Adjacent — смежны ли комнаты (общая стена)
func Adjacent(a, b models.Room) bool {
	set := make(map[string]bool, len(a.WallIDs))
	for _, id := range a.WallIDs {
		set[id] = true
	}
	for _, id := range b.WallIDs {
		if set[id] {
			return true
		}
	}
	return false
}

// signature — независимая от порядка подпись набора стен
func signature(wallIDs []string) uint64 {
	ids := append([]string(nil), wallIDs...)
	sort.Strings(ids)
	return xxhash.Sum64String(strings.Join(ids, "|"))
}

// ============================================================
// Face tracing
// ============================================================

type face struct {
	vertices []models.Point
	wallIDs  []string
}

type halfEdge struct {
	wallID   string
	from, to int
	angle    float64
}

// traceFaces обходит полуребра графа; ограниченные грани имеют
// положительную площадь, внешняя — отрицательную.
func traceFaces(walls []models.Wall, tol float64) ([]face, map[string]bool) {
	var nodes []models.Point
	nodeOf := func(p models.Point) int {
		for i, n := range nodes {
			if geometry.Distance(n, p) < tol {
				return i
			}
		}
		nodes = append(nodes, p)
		return len(nodes) - 1
	}

	var edges []halfEdge
	for _, w := range walls {
		n1 := nodeOf(w.Start)
		n2 := nodeOf(w.End)
		if n1 == n2 {
			continue
		}
		a1 := math.Atan2(nodes[n2].Y-nodes[n1].Y, nodes[n2].X-nodes[n1].X)
		a2 := math.Atan2(nodes[n1].Y-nodes[n2].Y, nodes[n1].X-nodes[n2].X)
		edges = append(edges, halfEdge{wallID: w.ID, from: n1, to: n2, angle: a1})
		edges = append(edges, halfEdge{wallID: w.ID, from: n2, to: n1, angle: a2})
	}

	// исходящие полуребра узла против часовой стрелки
	outgoing := make([][]int, len(nodes))
	for i, he := range edges {
		outgoing[he.from] = append(outgoing[he.from], i)
	}
	for n := range outgoing {
		sort.Slice(outgoing[n], func(i, j int) bool {
			return edges[outgoing[n][i]].angle < edges[outgoing[n][j]].angle
		})
	}

	twin := func(i int) int {
		if i%2 == 0 {
			return i + 1
		}
		return i - 1
	}

	// следующее ребро грани: предыдущее по CCW от обратного
	next := func(i int) int {
		rev := twin(i)
		list := outgoing[edges[rev].from]
		for k, idx := range list {
			if idx == rev {
				return list[(k-1+len(list))%len(list)]
			}
		}
		return rev
	}

	visited := make([]bool, len(edges))
	var bounded []face
	outerWalls := make(map[string]bool)

	for start := range edges {
		if visited[start] {
			continue
		}

		var pts []models.Point
		var wallIDs []string
		cur := start
		for {
			visited[cur] = true
			pts = append(pts, nodes[edges[cur].from])
			wallIDs = append(wallIDs, edges[cur].wallID)
			cur = next(cur)
			if cur == start {
				break
			}
		}

		area := geometry.SignedArea(pts)
		distinct := distinctCount(wallIDs)

		if area > minFaceArea && distinct >= 3 {
			bounded = append(bounded, face{vertices: pts, wallIDs: dedupe(wallIDs)})
			continue
		}
		if area < -minFaceArea {
			for _, id := range wallIDs {
				outerWalls[id] = true
			}
		}
	}

	return bounded, outerWalls
}

func distinctCount(ids []string) int {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return len(set)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ============================================================
// Nesting
// ============================================================

// linkNesting связывает вложенные полигоны: родитель — наименьшая
// строго содержащая комната, площадь ребенка строго меньше
func linkNesting(rooms []models.Room) {
	for i := range rooms {
		rooms[i].ParentID = ""
		rooms[i].ChildIDs = nil
	}

	for i := range rooms {
		best := -1
		for j := range rooms {
			if i == j || rooms[j].Area <= rooms[i].Area {
				continue
			}
			if !geometry.PolygonContains(rooms[j].Vertices, rooms[i].Vertices) {
				continue
			}
			if best == -1 || rooms[j].Area < rooms[best].Area {
				best = j
			}
		}
		if best >= 0 {
			rooms[i].ParentID = rooms[best].ID
		}
	}

	byID := make(map[string]int, len(rooms))
	for i, r := range rooms {
		byID[r.ID] = i
	}
	for i, r := range rooms {
		if r.ParentID == "" {
			continue
		}
		p := byID[r.ParentID]
		rooms[p].ChildIDs = append(rooms[p].ChildIDs, rooms[i].ID)
	}
	for i := range rooms {
		sort.Strings(rooms[i].ChildIDs)
	}
}

// ============================================================
// Validation
// ============================================================

func validatePrevious(previous []models.Room) []models.Diagnostic {
	var diags []models.Diagnostic
	ids := make(map[string]bool, len(previous))
	for _, r := range previous {
		ids[r.ID] = true
	}
	for _, r := range previous {
		if len(r.Vertices) < 3 {
			diags = append(diags, models.ErrorDiag(r.ID, "room has fewer than 3 vertices"))
		}
		if len(r.WallIDs) < 3 {
			diags = append(diags, models.ErrorDiag(r.ID, "room is bounded by fewer than 3 walls"))
		}
		if r.ParentID != "" && !ids[r.ParentID] {
			diags = append(diags, models.ErrorDiag(r.ID, fmt.Sprintf("dangling parent reference %q", r.ParentID)))
		}
	}
	return diags
}

func validateRooms(rooms []models.Room, walls []models.Wall, opts Options) []models.Diagnostic {
	wallByID := make(map[string]models.Wall, len(walls))
	for _, w := range walls {
		wallByID[w.ID] = w
	}

	var diags []models.Diagnostic
	for _, r := range rooms {
		if r.Area < opts.MinRoomArea {
			diags = append(diags, models.WarningDiag(r.ID,
				fmt.Sprintf("room area %.1f below minimum %.1f", r.Area, opts.MinRoomArea)))
		}

		hasWindow := false
		for _, wid := range r.WallIDs {
			for _, o := range wallByID[wid].Openings {
				if o.Kind == "window" {
					hasWindow = true
				}
			}
		}
		if !hasWindow {
			diags = append(diags, models.WarningDiag(r.ID, "room has no bound windows"))
		}

		minSide := minSideByKind[r.Kind]
		if minSide == 0 {
			minSide = defaultMinSide
		}
		b := geometry.BoundsOf(r.Vertices)
		side := math.Min(b.MaxX-b.MinX, b.MaxY-b.MinY)
		if side < minSide {
			diags = append(diags, models.WarningDiag(r.ID,
				fmt.Sprintf("room dimension %.1f below minimum %.1f for kind %q", side, minSide, r.Kind)))
		}
	}
	return diags
}
