package models

import "math"

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite проверяет, что обе координаты конечны
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// ============================================================
// Wall model
// ============================================================

// Opening — проем в стене (дверь или окно), offset вдоль стены от Start
type Opening struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"` // door, window
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Sill   float64 `json:"sill"`
}

// BevelControl — отступы фаски на конце стены
type BevelControl struct {
	Outer float64 `json:"outer"`
	Inner float64 `json:"inner"`
}

type Wall struct {
	ID             string       `json:"id"`
	Start          Point        `json:"start"`
	End            Point        `json:"end"`
	Thickness      float64      `json:"thickness"`
	Height         float64      `json:"height"`
	Material       string       `json:"material"`
	Layer          string       `json:"layer"`
	Openings       []Opening    `json:"openings"`
	BevelStart     BevelControl `json:"bevelStart"`
	BevelEnd       BevelControl `json:"bevelEnd"`
	ConnectedStart []string     `json:"connectedStart"`
	ConnectedEnd   []string     `json:"connectedEnd"`

	// Синтетическая соединительная стена фаски, ключ — узел
	Connector bool   `json:"connector,omitempty"`
	BevelNode string `json:"bevelNode,omitempty"`
}

func (w Wall) Length() float64 {
	dx := w.End.X - w.Start.X
	dy := w.End.Y - w.Start.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Direction возвращает единичный вектор Start→End (ноль для вырожденной стены)
func (w Wall) Direction() Point {
	l := w.Length()
	if l == 0 {
		return Point{}
	}
	return Point{X: (w.End.X - w.Start.X) / l, Y: (w.End.Y - w.Start.Y) / l}
}

// SameBuild — совпадают ли материал/слой/толщина/высота
func (w Wall) SameBuild(other Wall) bool {
	return w.Material == other.Material &&
		w.Layer == other.Layer &&
		w.Thickness == other.Thickness &&
		w.Height == other.Height
}

// ============================================================
// Room model
// ============================================================

type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"` // room, balcony
	Vertices  []Point  `json:"vertices"`
	WallIDs   []string `json:"wallIds"`
	Area      float64  `json:"area"`
	Perimeter float64  `json:"perimeter"`
	Centroid  Point    `json:"centroid"`
	ParentID  string   `json:"parentId,omitempty"`
	ChildIDs  []string `json:"childIds,omitempty"`
	Exterior  bool     `json:"exterior"`
}

// ============================================================
// Dimensions and parameters
// ============================================================

// Dimension — ограничение длины стены: литерал XOR выражение
type Dimension struct {
	WallID string   `json:"wallId"`
	Target *float64 `json:"target,omitempty"`
	Expr   string   `json:"expr,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Group  string   `json:"group,omitempty"`
}

// Chain — цепочка стен: равные сегменты или общая длина
type Chain struct {
	WallIDs       []string `json:"wallIds"`
	Total         *float64 `json:"total,omitempty"`
	EqualSegments bool     `json:"equalSegments"`
}

// Parameter — именованный параметр: литерал XOR выражение
type Parameter struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value,omitempty"`
	Expr  string   `json:"expr,omitempty"`
}

// ============================================================
// Diagnostics
// ============================================================

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic — диагностика операции, Scope указывает на виновный id
type Diagnostic struct {
	Severity string `json:"severity"`
	Scope    string `json:"scope,omitempty"`
	Message  string `json:"message"`
}

func ErrorDiag(scope, message string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Scope: scope, Message: message}
}

func WarningDiag(scope, message string) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Scope: scope, Message: message}
}
