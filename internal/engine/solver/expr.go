package solver

import (
	"fmt"
	"strconv"
)

// ============================================================
// Expression evaluation
// ============================================================

// Грамматика: + - * /, унарный минус, скобки, числовые литералы,
// идентификаторы с точками (wall.<id>.length). Токены переводятся
// в постфикс по стандартным приоритетам и вычисляются стеком.

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch == '.' || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func tokenize(expr string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(expr) {
		ch := expr[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++

		case isDigit(ch) || ch == '.':
			j := i
			for j < len(expr) && (isDigit(expr[j]) || expr[j] == '.') {
				j++
			}
			text := expr[i:j]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v})
			i = j

		case isIdentStart(ch):
			j := i
			for j < len(expr) && isIdentPart(expr[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokIdent, text: expr[i:j]})
			i = j

		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(ch)})
			i++

		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++

		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++

		default:
			return nil, fmt.Errorf("unexpected character %q", string(ch))
		}
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}

func precedence(op string) int {
	switch op {
	case "neg":
		return 3
	case "*", "/":
		return 2
	default:
		return 1
	}
}

// toPostfix — классический shunting-yard; '-' в префиксной позиции
// становится оператором "neg"
func toPostfix(tokens []token) ([]token, error) {
	var out []token
	var stack []token

	prev := token{kind: tokOp} // начало ведет себя как оператор
	for _, t := range tokens {
		switch t.kind {
		case tokNumber, tokIdent:
			out = append(out, t)

		case tokOp:
			if t.text == "-" && (prev.kind == tokOp || prev.kind == tokLParen) {
				t.text = "neg"
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind != tokOp || precedence(top.text) < precedence(t.text) ||
					(t.text == "neg" && precedence(top.text) == precedence(t.text)) {
					break
				}
				out = append(out, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, t)

		case tokLParen:
			stack = append(stack, t)

		case tokRParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLParen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		}
		prev = t
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLParen {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		out = append(out, top)
	}

	return out, nil
}

func evalPostfix(postfix []token, vars map[string]float64) (float64, error) {
	var stack []float64

	pop := func() (float64, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	for _, t := range postfix {
		switch t.kind {
		case tokNumber:
			stack = append(stack, t.value)

		case tokIdent:
			v, ok := vars[t.text]
			if !ok {
				return 0, fmt.Errorf("unknown identifier %q", t.text)
			}
			stack = append(stack, v)

		case tokOp:
			if t.text == "neg" {
				v, ok := pop()
				if !ok {
					return 0, fmt.Errorf("malformed expression")
				}
				stack = append(stack, -v)
				continue
			}
			b, okB := pop()
			a, okA := pop()
			if !okA || !okB {
				return 0, fmt.Errorf("malformed expression")
			}
			switch t.text {
			case "+":
				stack = append(stack, a+b)
			case "-":
				stack = append(stack, a-b)
			case "*":
				stack = append(stack, a*b)
			case "/":
				if b == 0 {
					return 0, fmt.Errorf("division by zero")
				}
				stack = append(stack, a/b)
			}
		}
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("malformed expression")
	}
	return stack[0], nil
}

// Evaluate вычисляет выражение над таблицей имен
func Evaluate(expr string, vars map[string]float64) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	postfix, err := toPostfix(tokens)
	if err != nil {
		return 0, err
	}
	return evalPostfix(postfix, vars)
}

// identifiers возвращает идентификаторы выражения (для графа зависимостей)
func identifiers(expr string) []string {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil
	}
	var ids []string
	for _, t := range tokens {
		if t.kind == tokIdent {
			ids = append(ids, t.text)
		}
	}
	return ids
}
