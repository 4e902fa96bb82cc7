package cleanup

import (
	"fmt"
	"math"
	"sort"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Cleanup pipeline
// ============================================================

const (
	defaultEndpointTolerance = 0.5 // допуск совпадения концов
	defaultCollinearAngleDeg = 1.5 // допуск коллинеарности в градусах

	shortWallFactor = 0.2 // стены короче shortWallFactor*tolerance отбрасываются
	maxPasses       = 32  // защитный потолок для fixpoint-циклов
)

type Options struct {
	EndpointTolerance  float64 `json:"endpointTolerance"`
	CollinearAngleDeg  float64 `json:"collinearAngleToleranceDeg"`
	SplitTJunctions    bool    `json:"splitTJunctions"`
	SplitIntersections bool    `json:"splitIntersections"`
	MergeCollinear     bool    `json:"mergeCollinear"`
	HealGaps           bool    `json:"healGaps"`
}

// DefaultOptions — все стадии включены, допуски по умолчанию
func DefaultOptions() Options {
	return Options{
		EndpointTolerance:  defaultEndpointTolerance,
		CollinearAngleDeg:  defaultCollinearAngleDeg,
		SplitTJunctions:    true,
		SplitIntersections: true,
		MergeCollinear:     true,
		HealGaps:           true,
	}
}

func (o Options) normalized() Options {
	if o.EndpointTolerance <= 0 {
		o.EndpointTolerance = defaultEndpointTolerance
	}
	if o.CollinearAngleDeg <= 0 {
		o.CollinearAngleDeg = defaultCollinearAngleDeg
	}
	return o
}

type Report struct {
	ShortRemoved       int `json:"shortRemoved"`
	DuplicatesRemoved  int `json:"duplicatesRemoved"`
	VerticesMerged     int `json:"verticesMerged"`
	GapsHealed         int `json:"gapsHealed"`
	TJunctionSplits    int `json:"tJunctionSplits"`
	IntersectionSplits int `json:"intersectionSplits"`
	CollinearMerges    int `json:"collinearMerges"`
}

// Empty — все счетчики нулевые (повторный прогон на чистом графе)
func (r Report) Empty() bool {
	return r == Report{}
}

type cleaner struct {
	walls     []models.Wall
	opts      Options
	report    Report
	splitSeen map[string]bool
	splitSeq  map[string]int
}

// Clean прогоняет стадии нормализации в фиксированном порядке и
// возвращает новый список стен; вход не изменяется.
func Clean(walls []models.Wall, opts Options) ([]models.Wall, Report) {
	c := &cleaner{
		walls:     models.SanitizeWalls(models.CloneWalls(walls)),
		opts:      opts.normalized(),
		splitSeen: make(map[string]bool),
		splitSeq:  make(map[string]int),
	}

	c.removeDuplicates()
	c.dedupeVertices()
	if c.opts.HealGaps {
		c.healGaps()
	}
	if c.opts.SplitTJunctions {
		c.splitTJunctions()
	}
	if c.opts.SplitIntersections {
		c.splitIntersections()
	}
	if c.opts.MergeCollinear {
		c.mergeCollinear()
	}
	c.rebuildAdjacency()

	return c.walls, c.report
}

// ============================================================
// Stage 1: duplicates and degenerate walls
// ============================================================

func (c *cleaner) removeDuplicates() {
	tol := c.opts.EndpointTolerance
	minLen := shortWallFactor * tol

	kept := c.walls[:0]
	for _, w := range c.walls {
		if w.Length() < minLen {
			c.report.ShortRemoved++
			continue
		}
		kept = append(kept, w)
	}
	c.walls = kept

	removed := make([]bool, len(c.walls))
	for i := 0; i < len(c.walls); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(c.walls); j++ {
			if removed[j] {
				continue
			}
			if sameEndpoints(c.walls[i], c.walls[j], tol) && c.walls[i].SameBuild(c.walls[j]) {
				removed[j] = true // более поздняя из двух
				c.report.DuplicatesRemoved++
			}
		}
	}

	kept = c.walls[:0]
	for i, w := range c.walls {
		if !removed[i] {
			kept = append(kept, w)
		}
	}
	c.walls = kept
}

func sameEndpoints(a, b models.Wall, tol float64) bool {
	forward := geometry.Distance(a.Start, b.Start) < tol && geometry.Distance(a.End, b.End) < tol
	reversed := geometry.Distance(a.Start, b.End) < tol && geometry.Distance(a.End, b.Start) < tol
	return forward || reversed
}

// ============================================================
// Stage 2: vertex clustering
// ============================================================

type cluster struct {
	centroid models.Point
	count    int
}

func (cl *cluster) add(p models.Point) {
	n := float64(cl.count)
	cl.centroid.X = (cl.centroid.X*n + p.X) / (n + 1)
	cl.centroid.Y = (cl.centroid.Y*n + p.Y) / (n + 1)
	cl.count++
}

type endpointRef struct {
	wall    int
	end     int // 0 = Start, 1 = End
	cluster int
}

func (c *cleaner) dedupeVertices() {
	tol := c.opts.EndpointTolerance

	var clusters []*cluster
	var refs []endpointRef

	assign := func(wi, end int, p models.Point) {
		for ci, cl := range clusters {
			if geometry.Distance(cl.centroid, p) < tol {
				cl.add(p)
				refs = append(refs, endpointRef{wall: wi, end: end, cluster: ci})
				return
			}
		}
		clusters = append(clusters, &cluster{centroid: p, count: 1})
		refs = append(refs, endpointRef{wall: wi, end: end, cluster: len(clusters) - 1})
	}

	for i, w := range c.walls {
		assign(i, 0, w.Start)
		assign(i, 1, w.End)
	}

	for _, ref := range refs {
		target := clusters[ref.cluster].centroid
		p := c.endpoint(ref.wall, ref.end)
		if geometry.Distance(p, target) > geometry.Epsilon {
			c.setEndpoint(ref.wall, ref.end, target)
			c.report.VerticesMerged++
		}
	}
}

func (c *cleaner) endpoint(wall, end int) models.Point {
	if end == 0 {
		return c.walls[wall].Start
	}
	return c.walls[wall].End
}

func (c *cleaner) setEndpoint(wall, end int, p models.Point) {
	if end == 0 {
		c.walls[wall].Start = p
	} else {
		c.walls[wall].End = p
	}
}

// ============================================================
// Stage 3: gap healing
// ============================================================

func (c *cleaner) healGaps() {
	tol := c.opts.EndpointTolerance

	for pass := 0; pass < maxPasses; pass++ {
		healed := false

		for i := 0; i < len(c.walls); i++ {
			for ei := 0; ei < 2; ei++ {
				p := c.endpoint(i, ei)
				for j := i + 1; j < len(c.walls); j++ {
					for ej := 0; ej < 2; ej++ {
						q := c.endpoint(j, ej)
						d := geometry.Distance(p, q)
						if d <= geometry.Epsilon || d >= tol {
							continue
						}
						mid := geometry.Midpoint(p, q)
						c.snapCoincident(p, mid)
						c.snapCoincident(q, mid)
						c.report.GapsHealed++
						healed = true
						p = mid
					}
				}
			}
		}

		if !healed {
			return
		}
	}
}

// snapCoincident переносит в target все концы, совпадающие с from
func (c *cleaner) snapCoincident(from, target models.Point) {
	for i := range c.walls {
		for e := 0; e < 2; e++ {
			if geometry.Distance(c.endpoint(i, e), from) <= geometry.Epsilon {
				c.setEndpoint(i, e, target)
			}
		}
	}
}

// ============================================================
// Stage 7: adjacency
// ============================================================

func (c *cleaner) rebuildAdjacency() {
	tol := c.opts.EndpointTolerance

	for i := range c.walls {
		c.walls[i].ConnectedStart = nil
		c.walls[i].ConnectedEnd = nil
	}

	for i := range c.walls {
		for j := range c.walls {
			if i == j {
				continue
			}
			for ei := 0; ei < 2; ei++ {
				p := c.endpoint(i, ei)
				if geometry.Distance(p, c.walls[j].Start) < tol ||
					geometry.Distance(p, c.walls[j].End) < tol {
					if ei == 0 {
						c.walls[i].ConnectedStart = appendUnique(c.walls[i].ConnectedStart, c.walls[j].ID)
					} else {
						c.walls[i].ConnectedEnd = appendUnique(c.walls[i].ConnectedEnd, c.walls[j].ID)
					}
				}
			}
		}
	}

	for i := range c.walls {
		sort.Strings(c.walls[i].ConnectedStart)
		sort.Strings(c.walls[i].ConnectedEnd)
	}
}

// ============================================================
// Helpers
// ============================================================

func appendUnique(dst []string, src ...string) []string {
	for _, s := range src {
		if !contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

// quantKey — ключ точки на сетке допуска, гасит повторные сплиты
// на границе допуска
func quantKey(p models.Point, tol float64) string {
	g := tol
	if g < 1e-6 {
		g = 1e-6
	}
	return fmt.Sprintf("%d:%d", int(math.Round(p.X/g)), int(math.Round(p.Y/g)))
}
