package models

// Section identifies one of the four disjoint source sections of the input.
type Section string

const (
	SectionBS  Section = "BS"
	SectionPL  Section = "PL"
	SectionSGA Section = "SGA"
	SectionMFG Section = "MFG"
)

// Sections lists every source section in input order.
var Sections = []Section{SectionBS, SectionPL, SectionSGA, SectionMFG}

// Periods holds one amount per fiscal period, oldest first.
type Periods struct {
	Prev2   int64 `json:"前々期"`
	Prev1   int64 `json:"前期"`
	Current int64 `json:"今期"`
}

func (p Periods) Add(o Periods) Periods {
	return Periods{Prev2: p.Prev2 + o.Prev2, Prev1: p.Prev1 + o.Prev1, Current: p.Current + o.Current}
}

func (p Periods) Sub(o Periods) Periods {
	return Periods{Prev2: p.Prev2 - o.Prev2, Prev1: p.Prev1 - o.Prev1, Current: p.Current - o.Current}
}

// Abs takes the absolute value of every period independently.
func (p Periods) Abs() Periods {
	return Periods{Prev2: abs(p.Prev2), Prev1: abs(p.Prev1), Current: abs(p.Current)}
}

func (p Periods) IsZero() bool {
	return p.Prev2 == 0 && p.Prev1 == 0 && p.Current == 0
}

// Values returns the amounts oldest first.
func (p Periods) Values() [3]int64 {
	return [3]int64{p.Prev2, p.Prev1, p.Current}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// AccountRecord is one parsed source line item. Index is its position within
// the section and identifies the record for occupancy bookkeeping.
type AccountRecord struct {
	Section  Section `json:"section"`
	Index    int     `json:"index"`
	Name     string  `json:"勘定科目"`
	Category string  `json:"分類"`
	Amounts  Periods `json:"amounts"`
}
