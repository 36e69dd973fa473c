package models

// ClassFlag marks a report row as a variable or fixed cost.
type ClassFlag string

const (
	ClassNone     ClassFlag = ""
	ClassVariable ClassFlag = "変動"
	ClassFixed    ClassFlag = "固定"
)

// Ratios are composition percentages against the section anchor row.
type Ratios struct {
	Prev2Ratio   float64 `json:"前々期構成比"`
	Prev1Ratio   float64 `json:"前期構成比"`
	CurrentRatio float64 `json:"今期構成比"`
}

// ReportRow is one line of the standardized 154-row mapping.
type ReportRow struct {
	No    int    `json:"No"`
	Label string `json:"勘定科目"`
	Periods
	Flag   ClassFlag `json:"区分"`
	Method string    `json:"計算方法"`
	*Ratios
}

// Diagnostic kinds recorded during reconciliation.
const (
	DiagnosticTotalMismatch  = "total_mismatch"
	DiagnosticDuplicateSlot  = "duplicate_slot"
	DiagnosticDuplicateValue = "duplicate_value"
	DiagnosticMalformedValue = "malformed_amount"
)

// Diagnostic is a non-fatal finding produced while building a report.
type Diagnostic struct {
	Row        int      `json:"row,omitempty"`
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Direct     *Periods `json:"direct,omitempty"`
	Computed   *Periods `json:"computed,omitempty"`
	Components []int    `json:"components,omitempty"`
}
