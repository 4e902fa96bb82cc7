package solver

import (
	"fmt"
	"strings"

	"plan-engine/internal/engine/models"
)

// ============================================================
// Parameter resolution
// ============================================================

const (
	stateResolving = 1
	stateDone      = 2
)

// ResolveParameters разворачивает параметры в таблицу имя→значение.
// Литералы сеют таблицу, выражения обходятся в глубину; повторный
// заход в разрешаемый параметр — цикл, параметр остается без значения.
func ResolveParameters(params []models.Parameter, ctx map[string]float64) (map[string]float64, []models.Diagnostic) {
	values := make(map[string]float64, len(params)+len(ctx))
	for name, v := range ctx {
		values[name] = v
	}

	byName := make(map[string]models.Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
		if p.Value != nil {
			values[p.Name] = *p.Value
		}
	}

	state := make(map[string]int, len(params))
	var diags []models.Diagnostic
	var stack []string

	var visit func(name string) bool
	visit = func(name string) bool {
		if _, ok := values[name]; ok {
			return true
		}
		p, ok := byName[name]
		if !ok {
			return false
		}
		if state[name] == stateResolving {
			cycle := append(append([]string(nil), stack...), name)
			diags = append(diags, models.ErrorDiag(name,
				fmt.Sprintf("cyclic parameter dependency: %s", strings.Join(cycle, " -> "))))
			return false
		}
		if state[name] == stateDone {
			return false // уже падал
		}

		state[name] = stateResolving
		stack = append(stack, name)
		defer func() {
			stack = stack[:len(stack)-1]
			state[name] = stateDone
		}()

		if p.Expr == "" {
			diags = append(diags, models.ErrorDiag(name, "parameter has neither value nor expression"))
			return false
		}

		for _, dep := range identifiers(p.Expr) {
			visit(dep)
		}

		v, err := Evaluate(p.Expr, values)
		if err != nil {
			diags = append(diags, models.ErrorDiag(name, fmt.Sprintf("parameter expression: %v", err)))
			return false
		}
		values[name] = v
		return true
	}

	for _, p := range params {
		visit(p.Name)
	}

	return values, diags
}
