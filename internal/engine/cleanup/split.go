package cleanup

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Stage 4: T-junctions
// ============================================================

func (c *cleaner) splitTJunctions() {
	tol := c.opts.EndpointTolerance

	for pass := 0; pass < maxPasses; pass++ {
		changed := false

	scan:
		for h := 0; h < len(c.walls); h++ {
			host := c.walls[h]
			for j := 0; j < len(c.walls); j++ {
				if j == h {
					continue
				}
				for e := 0; e < 2; e++ {
					p := c.endpoint(j, e)
					// конец должен лежать внутри пролета, не у концов хоста
					if geometry.Distance(p, host.Start) < tol || geometry.Distance(p, host.End) < tol {
						continue
					}
					dist, _ := geometry.PointToSegment(p, host.Start, host.End)
					if dist >= tol {
						continue
					}
					key := host.ID + "@" + quantKey(p, tol)
					if c.splitSeen[key] {
						continue
					}
					c.splitSeen[key] = true

					c.splitWallAt(h, p)
					c.report.TJunctionSplits++
					changed = true
					break scan // срез изменился, сканируем заново
				}
			}
		}

		if !changed {
			return
		}
	}
}

// ============================================================
// Stage 5: crossings
// ============================================================

func (c *cleaner) splitIntersections() {
	tol := c.opts.EndpointTolerance

	for pass := 0; pass < maxPasses; pass++ {
		changed := false

	scan:
		for i := 0; i < len(c.walls); i++ {
			for j := i + 1; j < len(c.walls); j++ {
				a, b := c.walls[i], c.walls[j]
				ip, _, _, ok := geometry.SegmentIntersection(a.Start, a.End, b.Start, b.End)
				if !ok {
					continue
				}

				endsA := geometry.Distance(ip, a.Start) < tol || geometry.Distance(ip, a.End) < tol
				endsB := geometry.Distance(ip, b.Start) < tol || geometry.Distance(ip, b.End) < tol
				if endsA && endsB {
					continue // уже общий узел
				}

				keyA := a.ID + "@" + quantKey(ip, tol)
				keyB := b.ID + "@" + quantKey(ip, tol)
				split := false

				// сначала больший индекс, иначе сдвинутся позиции
				if !endsB && !c.splitSeen[keyB] {
					c.splitSeen[keyB] = true
					c.splitWallAt(j, ip)
					c.report.IntersectionSplits++
					split = true
				}
				if !endsA && !c.splitSeen[keyA] {
					c.splitSeen[keyA] = true
					c.splitWallAt(i, ip)
					c.report.IntersectionSplits++
					split = true
				}
				if split {
					changed = true
					break scan
				}
			}
		}

		if !changed {
			return
		}
	}
}

// splitWallAt режет стену idx в точке p на две, раскладывая проемы
// по содержащим их частям
func (c *cleaner) splitWallAt(idx int, p models.Point) {
	host := c.walls[idx]
	splitOffset := geometry.Distance(host.Start, p)

	c.splitSeq[host.ID]++
	first := models.CloneWall(host)
	first.ID = fmt.Sprintf("%s_%d", host.ID, c.splitSeq[host.ID])
	first.End = p
	first.BevelEnd = models.BevelControl{}
	first.Openings = nil

	c.splitSeq[host.ID]++
	second := models.CloneWall(host)
	second.ID = fmt.Sprintf("%s_%d", host.ID, c.splitSeq[host.ID])
	second.Start = p
	second.BevelStart = models.BevelControl{}
	second.Openings = nil

	for _, o := range host.Openings {
		if o.Offset <= splitOffset {
			first.Openings = append(first.Openings, o)
		} else {
			o.Offset -= splitOffset
			second.Openings = append(second.Openings, o)
		}
	}

	c.walls[idx] = first
	c.walls = append(c.walls, models.Wall{})
	copy(c.walls[idx+2:], c.walls[idx+1:])
	c.walls[idx+1] = second
}

// ============================================================
// Stage 6: collinear merge
// ============================================================

func (c *cleaner) mergeCollinear() {
	tol := c.opts.EndpointTolerance
	angleTol := c.opts.CollinearAngleDeg

	for pass := 0; pass < maxPasses; pass++ {
		changed := false

	scan:
		for i := 0; i < len(c.walls); i++ {
			for j := i + 1; j < len(c.walls); j++ {
				a, b := c.walls[i], c.walls[j]
				if a.Connector || b.Connector || !a.SameBuild(b) {
					continue
				}

				shared, ok := sharedEndpoint(a, b, tol)
				if !ok {
					continue
				}
				// в узле никого третьего, иначе слияние вернет Т-стык
				if c.degreeAt(shared, tol) != 2 {
					continue
				}

				angle := geometry.AngleBetween(a.Direction(), b.Direction())
				if angle > angleTol && 180-angle > angleTol {
					continue
				}

				c.walls[i] = fuseWalls(a, b, shared, tol)
				c.walls = append(c.walls[:j], c.walls[j+1:]...)
				c.report.CollinearMerges++
				changed = true
				break scan
			}
		}

		if !changed {
			return
		}
	}
}

// sharedEndpoint возвращает общий узел, если стены делят ровно один конец
func sharedEndpoint(a, b models.Wall, tol float64) (models.Point, bool) {
	var hits []models.Point
	for _, pa := range []models.Point{a.Start, a.End} {
		for _, pb := range []models.Point{b.Start, b.End} {
			if geometry.Distance(pa, pb) < tol {
				hits = append(hits, pa)
			}
		}
	}
	if len(hits) != 1 {
		return models.Point{}, false
	}
	return hits[0], true
}

func (c *cleaner) degreeAt(p models.Point, tol float64) int {
	n := 0
	for i := range c.walls {
		if geometry.Distance(c.walls[i].Start, p) < tol {
			n++
		}
		if geometry.Distance(c.walls[i].End, p) < tol {
			n++
		}
	}
	return n
}

// fuseWalls сращивает две коллинеарные стены в одну от дальнего конца
// a до дальнего конца b; проемы объединяются с новыми id
func fuseWalls(a, b models.Wall, shared models.Point, tol float64) models.Wall {
	farA := a.Start
	bevelA := a.BevelStart
	if geometry.Distance(a.End, shared) >= tol {
		farA = a.End
		bevelA = a.BevelEnd
	}
	farB := b.Start
	bevelB := b.BevelStart
	if geometry.Distance(b.End, shared) >= tol {
		farB = b.End
		bevelB = b.BevelEnd
	}

	merged := models.CloneWall(a)
	merged.Start = farA
	merged.End = farB
	merged.BevelStart = bevelA
	merged.BevelEnd = bevelB
	merged.Openings = nil

	dir := merged.Direction()
	reproject := func(w models.Wall) {
		wdir := w.Direction()
		for _, o := range w.Openings {
			world := geometry.Add(w.Start, geometry.Scale(wdir, o.Offset))
			o.ID = uuid.NewString()
			o.Offset = geometry.ProjectOnRay(world, merged.Start, dir)
			merged.Openings = append(merged.Openings, o)
		}
	}
	reproject(a)
	reproject(b)

	sort.Slice(merged.Openings, func(i, j int) bool {
		return merged.Openings[i].Offset < merged.Openings[j].Offset
	})

	return merged
}
