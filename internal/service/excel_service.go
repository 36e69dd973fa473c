package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cash-ai/internal/models"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// sheet names accepted for each input section
var sectionSheets = map[string]models.Section{
	"BS":         models.SectionBS,
	"貸借対照表":      models.SectionBS,
	"PL":         models.SectionPL,
	"損益計算書":      models.SectionPL,
	"SGA":        models.SectionSGA,
	"販売費":        models.SectionSGA,
	"販売費及び一般管理費": models.SectionSGA,
	"MFG":        models.SectionMFG,
	"製造原価":       models.SectionMFG,
	"製造原価報告書":    models.SectionMFG,
}

var inputHeaders = []string{"勘定科目", "分類", "前々期", "前期", "今期"}

var reportHeaders = []string{
	"No", "勘定科目", "前々期", "前期", "今期", "区分", "計算方法",
	"前々期構成比", "前期構成比", "今期構成比",
}

const reportSheet = "標準様式"

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ParseInputWorkbook reads one sheet per section (BS, PL, SGA, MFG or their
// Japanese names) with a header row naming the input columns. Rows without
// an account name are reported and skipped.
func (s *ExcelService) ParseInputWorkbook(r io.Reader) (*models.WorkbookImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewValidationError("failed to open Excel file: %v", err)
	}
	defer f.Close()

	result := &models.WorkbookImportResult{
		Sheets:     map[string]int{},
		Errors:     []models.WorkbookRowError{},
		ImportTime: time.Now(),
	}

	found := 0
	for _, sheetName := range f.GetSheetList() {
		sec, ok := sectionSheets[strings.TrimSpace(sheetName)]
		if !ok {
			continue
		}
		found++

		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of %s: %w", sheetName, err)
		}
		if len(rows) == 0 {
			continue
		}

		columns := headerColumns(rows[0])
		if _, ok := columns["勘定科目"]; !ok {
			return nil, NewValidationError("sheet %s: header must contain columns %v", sheetName, inputHeaders)
		}

		var inputs []models.AccountInput
		for i := 1; i < len(rows); i++ {
			row := rows[i]
			if isBlankRow(row) {
				continue
			}
			result.TotalRows++

			cell := func(header string) string {
				idx, ok := columns[header]
				if !ok {
					return ""
				}
				return strings.TrimSpace(getCellValue(row, idx))
			}

			name := cell("勘定科目")
			if name == "" {
				result.Errors = append(result.Errors, models.WorkbookRowError{
					Sheet: sheetName,
					Row:   i + 1,
					Field: "勘定科目",
					Error: "account name is required",
					Value: strings.Join(row, ","),
				})
				result.ErrorCount++
				continue
			}

			inputs = append(inputs, models.AccountInput{
				Name:     name,
				Category: cell("分類"),
				Prev2:    models.AmountField{Raw: cell("前々期")},
				Prev1:    models.AmountField{Raw: cell("前期")},
				Current:  models.AmountField{Raw: cell("今期")},
			})
			result.ValidCount++
		}

		result.Sheets[sheetName] = len(inputs)
		switch sec {
		case models.SectionBS:
			result.Request.BS = append(result.Request.BS, inputs...)
		case models.SectionPL:
			result.Request.PL = append(result.Request.PL, inputs...)
		case models.SectionSGA:
			result.Request.SGA = append(result.Request.SGA, inputs...)
		case models.SectionMFG:
			result.Request.MFG = append(result.Request.MFG, inputs...)
		}
	}

	if found == 0 {
		return nil, NewValidationError("workbook has no BS, PL, SGA or MFG sheet")
	}
	return result, nil
}

// ExportReport writes the report and its diagnostics as an XLSX workbook.
func (s *ExcelService) ExportReport(rows []models.ReportRow, diags []models.Diagnostic, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}

	for i, header := range reportHeaders {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(reportSheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(reportSheet, "A1", fmt.Sprintf("%s1", getColumnName(len(reportHeaders)-1)), headerStyle)

	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 3})
	ratioStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	for rowIdx, row := range rows {
		n := rowIdx + 2
		values := []interface{}{row.No, row.Label, row.Prev2, row.Prev1, row.Current, string(row.Flag), row.Method}
		if row.Ratios != nil {
			values = append(values, row.Ratios.Prev2Ratio, row.Ratios.Prev1Ratio, row.Ratios.CurrentRatio)
		}
		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), n)
			f.SetCellValue(reportSheet, cell, value)
		}
		f.SetCellStyle(reportSheet, fmt.Sprintf("C%d", n), fmt.Sprintf("E%d", n), amountStyle)
		f.SetCellStyle(reportSheet, fmt.Sprintf("H%d", n), fmt.Sprintf("J%d", n), ratioStyle)
	}

	columnWidths := []float64{6, 30, 15, 15, 15, 8, 40, 12, 12, 12}
	for i, width := range columnWidths {
		colName := getColumnName(i)
		f.SetColWidth(reportSheet, colName, colName, width)
	}
	f.SetPanes(reportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if len(diags) > 0 {
		if err := writeDiagnosticsSheet(f, diags); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeDiagnosticsSheet(f *excelize.File, diags []models.Diagnostic) error {
	sheetName := "診断"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	headers := []string{"行", "種別", "内容"}
	for i, header := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s1", getColumnName(i)), header)
	}
	for i, d := range diags {
		n := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", n), d.Row)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", n), d.Kind)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", n), d.Message)
	}
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 60)
	return nil
}

// ExportCSV writes the report as CSV, in Shift_JIS when sjis is set.
// Characters Shift_JIS cannot represent are replaced.
func (s *ExcelService) ExportCSV(rows []models.ReportRow, w io.Writer, sjis bool) error {
	out := w
	var tw *transform.Writer
	if sjis {
		tw = transform.NewWriter(w, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
		out = tw
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(reportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.No),
			row.Label,
			strconv.FormatInt(row.Prev2, 10),
			strconv.FormatInt(row.Prev1, 10),
			strconv.FormatInt(row.Current, 10),
			string(row.Flag),
			row.Method,
			"", "", "",
		}
		if row.Ratios != nil {
			record[7] = strconv.FormatFloat(row.Ratios.Prev2Ratio, 'f', 2, 64)
			record[8] = strconv.FormatFloat(row.Ratios.Prev1Ratio, 'f', 2, 64)
			record[9] = strconv.FormatFloat(row.Ratios.CurrentRatio, 'f', 2, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}

// GenerateInputTemplate writes a sample input workbook with one sheet per
// section, usable as an upload template.
func (s *ExcelService) GenerateInputTemplate(sample map[models.Section][][]interface{}, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, sec := range models.Sections {
		sheetName := string(sec)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheetName); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheetName); err != nil {
			return err
		}
		for i, header := range inputHeaders {
			f.SetCellValue(sheetName, fmt.Sprintf("%s1", getColumnName(i)), header)
		}
		f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(inputHeaders)-1)), headerStyle)

		for rowIdx, rowData := range sample[sec] {
			for colIdx, value := range rowData {
				cell := fmt.Sprintf("%s%d", getColumnName(colIdx), rowIdx+2)
				f.SetCellValue(sheetName, cell, value)
			}
		}
		f.SetColWidth(sheetName, "A", "A", 30)
		f.SetColWidth(sheetName, "B", "B", 15)
		f.SetColWidth(sheetName, "C", "E", 15)
	}

	return f.Write(w)
}

// headerColumns maps known header titles to their column index.
func headerColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, title := range header {
		title = strings.TrimSpace(title)
		for _, want := range inputHeaders {
			if title == want {
				if _, dup := columns[want]; !dup {
					columns[want] = i
				}
			}
		}
	}
	return columns
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func getCellValue(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
