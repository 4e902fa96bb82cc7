package solver

import (
	"fmt"

	"plan-engine/internal/engine/geometry"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Parametric dimension solver
// ============================================================

// Result — новый снимок стен плюс таблица параметров и диагностика
type Result struct {
	Walls           []models.Wall       `json:"walls"`
	ParameterValues map[string]float64  `json:"parameterValues"`
	Diagnostics     []models.Diagnostic `json:"diagnostics"`
}

// Solve применяет ограничения в порядке: параметры, одиночные
// размеры, группы равенства, цепочки. Ошибка одного ограничения
// не прерывает решение, стена остается с прежней длиной.
func Solve(walls []models.Wall, dims []models.Dimension, chains []models.Chain, params []models.Parameter, ctx map[string]float64) Result {
	out := models.SanitizeWalls(models.CloneWalls(walls))

	index := make(map[string]int, len(out))
	for i, w := range out {
		index[w.ID] = i
	}

	values, diags := ResolveParameters(params, ctx)

	vars := make(map[string]float64, len(values)+len(out))
	for k, v := range values {
		vars[k] = v
	}
	for _, w := range out {
		vars[wallLengthVar(w.ID)] = w.Length()
	}

	// ------------------------------------------------------------
	// Одиночные ограничения
	// ------------------------------------------------------------

	for _, d := range dims {
		wi, ok := index[d.WallID]
		if !ok {
			diags = append(diags, models.ErrorDiag(d.WallID, "dimension references unknown wall"))
			continue
		}

		var target float64
		switch {
		case d.Target != nil:
			target = *d.Target
		case d.Expr != "":
			v, err := Evaluate(d.Expr, vars)
			if err != nil {
				diags = append(diags, models.ErrorDiag(d.WallID, fmt.Sprintf("dimension expression: %v", err)))
				continue
			}
			target = v
		default:
			continue // только группа, длину не задает
		}

		target = clampTarget(target, d)
		if !setWallLength(&out[wi], target) {
			diags = append(diags, models.ErrorDiag(d.WallID, "cannot resize degenerate wall"))
			continue
		}
		vars[wallLengthVar(d.WallID)] = target
	}

	// ------------------------------------------------------------
	// Группы равенства
	// ------------------------------------------------------------

	groups := make(map[string][]int)
	var groupOrder []string
	for _, d := range dims {
		if d.Group == "" {
			continue
		}
		wi, ok := index[d.WallID]
		if !ok {
			continue
		}
		if _, seen := groups[d.Group]; !seen {
			groupOrder = append(groupOrder, d.Group)
		}
		groups[d.Group] = append(groups[d.Group], wi)
	}

	for _, name := range groupOrder {
		members := groups[name]
		var sum float64
		for _, wi := range members {
			sum += out[wi].Length()
		}
		mean := sum / float64(len(members))
		for _, wi := range members {
			if setWallLength(&out[wi], mean) {
				vars[wallLengthVar(out[wi].ID)] = mean
			}
		}
		diags = append(diags, models.WarningDiag(name,
			fmt.Sprintf("equality group forced %d walls to %.3f", len(members), mean)))
	}

	// ------------------------------------------------------------
	// Цепочки
	// ------------------------------------------------------------

	clampByWall := make(map[string]models.Dimension, len(dims))
	for _, d := range dims {
		prev, seen := clampByWall[d.WallID]
		if !seen {
			clampByWall[d.WallID] = d
			continue
		}
		// несколько ограничений на одну стену: сужаем до самого
		// тесного интервала, порядок объявления не важен
		if d.Min != nil && (prev.Min == nil || *d.Min > *prev.Min) {
			prev.Min = d.Min
		}
		if d.Max != nil && (prev.Max == nil || *d.Max < *prev.Max) {
			prev.Max = d.Max
		}
		clampByWall[d.WallID] = prev
		diags = append(diags, models.WarningDiag(d.WallID,
			"wall is constrained by multiple dimensions, clamps merged"))
	}

	for _, ch := range chains {
		var members []int
		valid := true
		for _, id := range ch.WallIDs {
			wi, ok := index[id]
			if !ok {
				diags = append(diags, models.ErrorDiag(id, "chain references unknown wall"))
				valid = false
				break
			}
			members = append(members, wi)
		}
		if !valid || len(members) == 0 {
			continue
		}

		var current float64
		for _, wi := range members {
			current += out[wi].Length()
		}

		switch {
		case ch.EqualSegments:
			total := current
			if ch.Total != nil {
				total = *ch.Total
			}
			seg := total / float64(len(members))
			for _, wi := range members {
				l := clampTarget(seg, clampByWall[out[wi].ID])
				if setWallLength(&out[wi], l) {
					vars[wallLengthVar(out[wi].ID)] = l
				}
			}

		case ch.Total != nil:
			if current < geometry.Epsilon {
				diags = append(diags, models.ErrorDiag(ch.WallIDs[0], "chain has zero total length"))
				continue
			}
			scale := *ch.Total / current
			for _, wi := range members {
				l := clampTarget(out[wi].Length()*scale, clampByWall[out[wi].ID])
				if setWallLength(&out[wi], l) {
					vars[wallLengthVar(out[wi].ID)] = l
				}
			}
		}
	}

	// наружу отдаем только значения собственно параметров
	paramValues := make(map[string]float64, len(params))
	for _, p := range params {
		if v, ok := values[p.Name]; ok {
			paramValues[p.Name] = v
		}
	}

	return Result{Walls: out, ParameterValues: paramValues, Diagnostics: diags}
}

func wallLengthVar(id string) string {
	return "wall." + id + ".length"
}

func clampTarget(target float64, d models.Dimension) float64 {
	if d.Min != nil && target < *d.Min {
		target = *d.Min
	}
	if d.Max != nil && target > *d.Max {
		target = *d.Max
	}
	return target
}

// setWallLength масштабирует вектор направления от неподвижной
// начальной точки, середина не используется
func setWallLength(w *models.Wall, length float64) bool {
	dir := w.Direction()
	if geometry.Norm(dir) < geometry.Epsilon {
		return false
	}
	w.End = geometry.Add(w.Start, geometry.Scale(dir, length))
	return true
}
