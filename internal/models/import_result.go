package models

import "time"

// WorkbookRowError is a spreadsheet row that could not be imported.
type WorkbookRowError struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Field string `json:"field"`
	Error string `json:"error"`
	Value string `json:"value"`
}

// WorkbookImportResult is the outcome of reading an input workbook.
type WorkbookImportResult struct {
	Request    PipelineRequest    `json:"-"`
	Sheets     map[string]int     `json:"sheets"`
	TotalRows  int                `json:"total_rows"`
	ValidCount int                `json:"valid_count"`
	ErrorCount int                `json:"error_count"`
	Errors     []WorkbookRowError `json:"errors"`
	ImportTime time.Time          `json:"import_time"`
}
