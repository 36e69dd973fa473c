package service

import (
	"sort"

	"cash-ai/internal/models"
)

// Mapping is the row accumulator threaded through every pipeline stage.
// Each invocation owns its Mapping; stages read rows written by earlier ones.
type Mapping struct {
	rows map[int]models.ReportRow
}

func NewMapping() *Mapping {
	return &Mapping{rows: make(map[int]models.ReportRow)}
}

// Get returns the row, or an empty row carrying only the number.
func (m *Mapping) Get(no int) models.ReportRow {
	if row, ok := m.rows[no]; ok {
		return row
	}
	return models.ReportRow{No: no}
}

func (m *Mapping) Has(no int) bool {
	_, ok := m.rows[no]
	return ok
}

func (m *Mapping) Set(row models.ReportRow) {
	m.rows[row.No] = row
}

func (m *Mapping) Len() int {
	return len(m.rows)
}

// Amount returns the amounts of a row; missing rows count as zero.
func (m *Mapping) Amount(no int) models.Periods {
	return m.rows[no].Periods
}

// Sum adds the amounts of the given rows.
func (m *Mapping) Sum(nos ...int) models.Periods {
	var total models.Periods
	for _, no := range nos {
		total = total.Add(m.Amount(no))
	}
	return total
}

// Rows returns a copy of every row ordered by row number.
func (m *Mapping) Rows() []models.ReportRow {
	out := make([]models.ReportRow, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].No < out[j].No })
	return out
}

// Select returns the rows held for the given numbers, in the order given.
func (m *Mapping) Select(nos []int) []models.ReportRow {
	out := make([]models.ReportRow, 0, len(nos))
	for _, no := range nos {
		if row, ok := m.rows[no]; ok {
			out = append(out, row)
		}
	}
	return out
}

// Clone returns an independent copy, including ratio pointers.
func (m *Mapping) Clone() *Mapping {
	c := NewMapping()
	for no, row := range m.rows {
		if row.Ratios != nil {
			r := *row.Ratios
			row.Ratios = &r
		}
		c.rows[no] = row
	}
	return c
}
