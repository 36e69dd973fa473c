package service

import (
	"sort"

	"cash-ai/internal/models"
)

// Assemble merges row layers into the final report. The first layer holding
// a row number wins; numbers no layer holds become empty rows. The result
// must be exactly rows 1..154.
func Assemble(layers ...[]models.ReportRow) ([]models.ReportRow, error) {
	byNo := make(map[int]models.ReportRow, ReportRowCount)
	for _, layer := range layers {
		for _, row := range layer {
			if _, ok := byNo[row.No]; ok {
				continue
			}
			if row.No < 1 || row.No > ReportRowCount {
				return nil, NewValidationError("row number %d out of range 1..%d", row.No, ReportRowCount)
			}
			byNo[row.No] = row
		}
	}

	out := make([]models.ReportRow, 0, ReportRowCount)
	for no := 1; no <= ReportRowCount; no++ {
		row, ok := byNo[no]
		if !ok {
			row = models.ReportRow{No: no}
			if _, has := AnchorRow(no); has {
				row.Ratios = &models.Ratios{}
			}
		}
		out = append(out, row)
	}
	sortRows(out)

	if len(out) != ReportRowCount {
		return nil, NewValidationError("report has %d rows, want %d", len(out), ReportRowCount)
	}
	for i, row := range out {
		if row.No != i+1 {
			return nil, NewValidationError("report rows are not contiguous at position %d (row %d)", i+1, row.No)
		}
	}
	return out, nil
}

func sortRows(rows []models.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].No < rows[j].No })
}
