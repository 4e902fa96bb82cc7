package models

// ============================================================
// Plan snapshot
// ============================================================

// Plan — снимок документа; все операции ядра копируют вход и не
// трогают структуры вызывающей стороны.
type Plan struct {
	Walls      []Wall      `json:"walls"`
	Rooms      []Room      `json:"rooms"`
	Dimensions []Dimension `json:"dimensions,omitempty"`
	Chains     []Chain     `json:"chains,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

func CloneWall(w Wall) Wall {
	cp := w
	cp.Openings = append([]Opening(nil), w.Openings...)
	cp.ConnectedStart = append([]string(nil), w.ConnectedStart...)
	cp.ConnectedEnd = append([]string(nil), w.ConnectedEnd...)
	return cp
}

func CloneWalls(walls []Wall) []Wall {
	out := make([]Wall, 0, len(walls))
	for _, w := range walls {
		out = append(out, CloneWall(w))
	}
	return out
}

func CloneRoom(r Room) Room {
	cp := r
	cp.Vertices = append([]Point(nil), r.Vertices...)
	cp.WallIDs = append([]string(nil), r.WallIDs...)
	cp.ChildIDs = append([]string(nil), r.ChildIDs...)
	return cp
}

func CloneRooms(rooms []Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, CloneRoom(r))
	}
	return out
}

func (p Plan) Clone() Plan {
	cp := Plan{
		Walls:      CloneWalls(p.Walls),
		Rooms:      CloneRooms(p.Rooms),
		Dimensions: append([]Dimension(nil), p.Dimensions...),
		Chains:     make([]Chain, 0, len(p.Chains)),
		Parameters: append([]Parameter(nil), p.Parameters...),
	}
	for _, c := range p.Chains {
		c.WallIDs = append([]string(nil), c.WallIDs...)
		cp.Chains = append(cp.Chains, c)
	}
	return cp
}

// SanitizeWalls отбрасывает стены с неконечными координатами на границе ядра
func SanitizeWalls(walls []Wall) []Wall {
	out := make([]Wall, 0, len(walls))
	for _, w := range walls {
		if !w.Start.IsFinite() || !w.End.IsFinite() {
			continue
		}
		out = append(out, w)
	}
	return out
}
