package service

import (
	"cash-ai/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CompositionRatio returns 100*value/denominator rounded to 2 places, or 0
// when the denominator is 0.
func CompositionRatio(value, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(value).Mul(hundred).DivRound(decimal.NewFromInt(denominator), 2).Float64()
	return f
}

// AnchorRow returns the denominator row of a row's section.
func AnchorRow(no int) (int, bool) {
	switch {
	case no >= 1 && no <= 45:
		return 45, true
	case no >= 46 && no <= 78:
		return 75, true
	case no >= 81 && no <= 111:
		return 111, true
	case no >= 112 && no <= ReportRowCount:
		return 112, true
	default:
		return 0, false
	}
}

// ApplyRatios sets the composition ratios of every row in m. Rows outside
// all sections lose any ratio they carried.
func ApplyRatios(m *Mapping) {
	for _, row := range m.Rows() {
		anchor, ok := AnchorRow(row.No)
		if !ok {
			row.Ratios = nil
			m.Set(row)
			continue
		}
		d := m.Amount(anchor)
		row.Ratios = &models.Ratios{
			Prev2Ratio:   CompositionRatio(row.Prev2, d.Prev2),
			Prev1Ratio:   CompositionRatio(row.Prev1, d.Prev1),
			CurrentRatio: CompositionRatio(row.Current, d.Current),
		}
		m.Set(row)
	}
}
