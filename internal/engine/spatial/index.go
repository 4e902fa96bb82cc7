package spatial

import (
	"sort"

	"github.com/peterstace/simplefeatures/rtree"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Spatial index
// ============================================================

const (
	defaultVertexTolerance = 0.5
	defaultCellSize        = 100.0 // шаг сетки ведер вершин
)

type Options struct {
	VertexTolerance float64 `json:"vertexTolerance"`
	CellSize        float64 `json:"cellSize"`
}

func DefaultOptions() Options {
	return Options{VertexTolerance: defaultVertexTolerance, CellSize: defaultCellSize}
}

func (o Options) normalized() Options {
	if o.VertexTolerance <= 0 {
		o.VertexTolerance = defaultVertexTolerance
	}
	if o.CellSize <= 0 {
		o.CellSize = defaultCellSize
	}
	return o
}

type cellKey struct {
	x, y int
}

// Index только читается после Rebuild; любое изменение стен
// требует полного перестроения.
type Index struct {
	opts     Options
	wallIDs  []string
	boxes    []models.Box
	tree     *rtree.RTree
	vertices []models.Point
	cells    map[cellKey][]int
}

func New(opts Options) *Index {
	return &Index{opts: opts.normalized()}
}

// Rebuild полностью пересобирает дерево боксов стен и сетку вершин
func (idx *Index) Rebuild(walls []models.Wall) {
	walls = models.SanitizeWalls(walls)

	idx.wallIDs = idx.wallIDs[:0]
	idx.boxes = idx.boxes[:0]

	items := make([]rtree.BulkItem, 0, len(walls))
	for i, w := range walls {
		b := geometry.WallBounds(w)
		idx.wallIDs = append(idx.wallIDs, w.ID)
		idx.boxes = append(idx.boxes, b)
		items = append(items, rtree.BulkItem{
			Box:      rtree.Box{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY},
			RecordID: i,
		})
	}
	idx.tree = rtree.BulkLoad(items)

	idx.vertices = clusterVertices(walls, idx.opts.VertexTolerance)
	idx.cells = make(map[cellKey][]int, len(idx.vertices))
	for i, v := range idx.vertices {
		k := idx.cellOf(v)
		idx.cells[k] = append(idx.cells[k], i)
	}
}

func (idx *Index) cellOf(p models.Point) cellKey {
	return cellKey{
		x: int(p.X / idx.opts.CellSize),
		y: int(p.Y / idx.opts.CellSize),
	}
}

// clusterVertices собирает уникальные вершины по допуску (бегущий центроид)
func clusterVertices(walls []models.Wall, tol float64) []models.Point {
	type cl struct {
		centroid models.Point
		count    int
	}
	var clusters []*cl

	add := func(p models.Point) {
		for _, c := range clusters {
			if geometry.Distance(c.centroid, p) < tol {
				n := float64(c.count)
				c.centroid.X = (c.centroid.X*n + p.X) / (n + 1)
				c.centroid.Y = (c.centroid.Y*n + p.Y) / (n + 1)
				c.count++
				return
			}
		}
		clusters = append(clusters, &cl{centroid: p, count: 1})
	}

	for _, w := range walls {
		add(w.Start)
		add(w.End)
	}

	out := make([]models.Point, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, c.centroid)
	}
	return out
}

// ============================================================
// Queries
// ============================================================

// Range возвращает id стен, чьи боксы пересекают запрос
func (idx *Index) Range(box models.Box) []string {
	if idx.tree == nil {
		return nil
	}
	var ids []string
	_ = idx.tree.RangeSearch(
		rtree.Box{MinX: box.MinX, MinY: box.MinY, MaxX: box.MaxX, MaxY: box.MaxY},
		func(recordID int) error {
			ids = append(ids, idx.wallIDs[recordID])
			return nil
		})
	sort.Strings(ids)
	return ids
}

// CullViewport — фильтр видимости по боксу вьюпорта
func (idx *Index) CullViewport(viewport models.Box) []string {
	return idx.Range(viewport)
}

type VertexHit struct {
	Point    models.Point `json:"point"`
	Distance float64      `json:"distance"`
}

// Nearest возвращает вершины в радиусе, отсортированные по расстоянию
func (idx *Index) Nearest(p models.Point, radius float64) []VertexHit {
	if radius <= 0 || idx.cells == nil {
		return nil
	}

	minCell := idx.cellOf(models.Point{X: p.X - radius, Y: p.Y - radius})
	maxCell := idx.cellOf(models.Point{X: p.X + radius, Y: p.Y + radius})

	var hits []VertexHit
	for cx := minCell.x - 1; cx <= maxCell.x+1; cx++ {
		for cy := minCell.y - 1; cy <= maxCell.y+1; cy++ {
			for _, vi := range idx.cells[cellKey{x: cx, y: cy}] {
				v := idx.vertices[vi]
				d := geometry.Distance(p, v)
				if d <= radius {
					hits = append(hits, VertexHit{Point: v, Distance: d})
				}
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// ============================================================
// Level of detail
// ============================================================

const (
	DetailCoarse = "coarse"
	DetailMedium = "medium"
	DetailFine   = "fine"
)

type Detail struct {
	Level      string `json:"level"`
	Fill       bool   `json:"fill"`
	Layering   bool   `json:"layering"`
	Dimensions bool   `json:"dimensions"`
}

// LevelOfDetail — чистое отображение зума на уровень детализации
func LevelOfDetail(zoom float64) Detail {
	switch {
	case zoom < 0.4:
		return Detail{Level: DetailCoarse}
	case zoom < 1.2:
		return Detail{Level: DetailMedium, Fill: true, Dimensions: true}
	default:
		return Detail{Level: DetailFine, Fill: true, Layering: true, Dimensions: true}
	}
}
