package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"cash-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
)

func sampleReport(t *testing.T) *PipelineResult {
	t.Helper()
	return runPipeline(t, sampleRequest())
}

func TestExportReportWorkbook(t *testing.T) {
	res := sampleReport(t)
	diags := []models.Diagnostic{{Row: 64, Kind: models.DiagnosticTotalMismatch, Message: "mismatch"}}

	var buf bytes.Buffer
	require.NoError(t, NewExcelService().ExportReport(res.Report, diags, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{reportSheet, "診断"}, f.GetSheetList())
	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, ReportRowCount+1)
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "112", rows[112][0])
	assert.Equal(t, "売上高", rows[112][1])

	raw, err := f.GetCellValue(reportSheet, "E113", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "6000", raw)

	diagRows, err := f.GetRows("診断")
	require.NoError(t, err)
	assert.Equal(t, []string{"64", models.DiagnosticTotalMismatch, "mismatch"}, diagRows[1])
}

func TestExportCSV(t *testing.T) {
	res := sampleReport(t)

	var buf bytes.Buffer
	require.NoError(t, NewExcelService().ExportCSV(res.Report, &buf, false))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, ReportRowCount+1)
	assert.Equal(t, reportHeaders, records[0])
	assert.Equal(t, []string{"112", "売上高", "5000", "5500", "6000", "", records[112][6], "100.00", "100.00", "100.00"}, records[112])
	assert.Equal(t, "", records[79][7], "row 79 has no ratio")
}

func TestExportCSVShiftJIS(t *testing.T) {
	rows := []models.ReportRow{{No: 1, Label: "現金及び預金", Periods: periods(1, 2, 3), Ratios: &models.Ratios{}}}

	var buf bytes.Buffer
	require.NoError(t, NewExcelService().ExportCSV(rows, &buf, true))

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "1,現金及び預金,1,2,3")
	assert.NotContains(t, buf.String(), "現金")
}

func TestParseInputWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("BS")
	require.NoError(t, err)
	// columns deliberately reordered
	f.SetSheetRow("BS", "A1", &[]interface{}{"分類", "勘定科目", "今期", "前期", "前々期"})
	f.SetSheetRow("BS", "A2", &[]interface{}{"流動資産", "現金及び預金", "1,000", 900, 800})
	f.SetSheetRow("BS", "A3", &[]interface{}{"流動資産", "", 5})
	f.SetSheetRow("BS", "A5", &[]interface{}{"流動資産", "売掛金", "△10"})

	_, err = f.NewSheet("販売費")
	require.NoError(t, err)
	f.SetSheetRow("販売費", "A1", &[]interface{}{"勘定科目", "分類", "前々期", "前期", "今期"})
	f.SetSheetRow("販売費", "A2", &[]interface{}{"法定福利費", "", "", "", "△500"})

	_, err = f.NewSheet("メモ")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := NewExcelService().ParseInputWorkbook(&buf)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 3, result.ValidCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, map[string]int{"BS": 2, "販売費": 1}, result.Sheets)

	require.Len(t, result.Request.BS, 2)
	bs := result.Request.BS[0]
	assert.Equal(t, "現金及び預金", bs.Name)
	assert.Equal(t, "流動資産", bs.Category)
	assert.Equal(t, "1,000", bs.Current.Raw)
	assert.Equal(t, "800", bs.Prev2.Raw)
	assert.Equal(t, "△10", result.Request.BS[1].Current.Raw)

	require.Len(t, result.Request.SGA, 1)
	res := runPipeline(t, &result.Request)
	assert.Equal(t, int64(-500), rowOf(res.Report, 124).Current)
	assert.Equal(t, int64(1000), rowOf(res.Report, 1).Current)
}

func TestParseInputWorkbookRejectsUnknownLayout(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := NewExcelService().ParseInputWorkbook(&buf)
	assert.True(t, IsValidationError(err))

	_, err = NewExcelService().ParseInputWorkbook(bytes.NewReader([]byte("not a workbook")))
	assert.True(t, IsValidationError(err))
}

func TestParseInputWorkbookRequiresNameColumn(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", "PL")
	f.SetSheetRow("PL", "A1", &[]interface{}{"科目名", "今期"})
	f.SetSheetRow("PL", "A2", &[]interface{}{"売上高", 10})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := NewExcelService().ParseInputWorkbook(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header must contain")
}

func TestGenerateInputTemplateRoundTrip(t *testing.T) {
	sample := map[models.Section][][]interface{}{
		models.SectionPL: {{"売上高", "売上高", 100, 200, 300}},
	}
	var buf bytes.Buffer
	require.NoError(t, NewExcelService().GenerateInputTemplate(sample, &buf))

	result, err := NewExcelService().ParseInputWorkbook(&buf)
	require.NoError(t, err)
	assert.Len(t, result.Sheets, 4)
	require.Len(t, result.Request.PL, 1)
	assert.Equal(t, "300", result.Request.PL[0].Current.Raw)
}
