package service

import (
	"context"
	"strings"
	"testing"

	"cash-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// draftLines returns one classifier line per draft row.
func draftLines() []string {
	var rows []models.ReportRow
	for _, no := range DraftRows() {
		rows = append(rows, models.ReportRow{No: no, Label: StandardLabel(no)})
	}
	return strings.Split(strings.TrimSuffix(FormatDraftText(rows), "\n"), "\n")
}

func TestParseDraftText(t *testing.T) {
	lines := draftLines()
	lines[0] = "1｜現金及び預金｜1,000｜△200｜３００｜固定｜直接採用: 現金"
	text := "```\n" + strings.Join(lines, "\n") + "\n```\n"

	m, err := ParseDraftText(text)
	require.NoError(t, err)
	assert.Equal(t, len(DraftRows()), m.Len())

	row := m.Get(1)
	assert.Equal(t, "現金及び預金", row.Label)
	assert.Equal(t, periods(1000, -200, 300), row.Periods)
	assert.Equal(t, models.ClassFixed, row.Flag)
	assert.Equal(t, "直接採用: 現金", row.Method)
}

func TestParseDraftTextAcceptsASCIIDelimiter(t *testing.T) {
	lines := draftLines()
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(line, DraftDelimiter, "|")
	}
	lines[1] = "2|受取手形割引高|0|0|5|V|"

	m, err := ParseDraftText(strings.Join(lines, "\r\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.Amount(2).Current)
	assert.Equal(t, models.ClassVariable, m.Get(2).Flag)
}

func TestParseDraftTextAllowsReservedRows(t *testing.T) {
	lines := draftLines()
	extra := append([]string{}, lines[:78]...)
	extra = append(extra, "79｜予備｜0｜0｜1｜｜")
	extra = append(extra, lines[78:]...)

	m, err := ParseDraftText(strings.Join(extra, "\n"))
	require.NoError(t, err)
	assert.Equal(t, "予備", m.Get(79).Label)
}

func TestParseDraftTextValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func([]string) []string
		error string
	}{
		{"empty", func([]string) []string { return nil }, "empty"},
		{"wrong field count", func(l []string) []string { l[3] = "4｜売掛金｜0｜0｜0｜"; return l }, "expected 7 fields"},
		{"bad row number", func(l []string) []string { l[3] = "x｜売掛金｜0｜0｜0｜｜"; return l }, "invalid row number"},
		{"out of range", func(l []string) []string { return append(l, "155｜余分｜0｜0｜0｜｜") }, "out of range"},
		{"duplicate", func(l []string) []string { l[3] = "3｜受取手形｜0｜0｜0｜｜"; return l }, "duplicate row 3"},
		{"descending", func(l []string) []string { l[2], l[3] = l[3], l[2]; return l }, "follows row"},
		{"missing row", func(l []string) []string { return append(l[:10:10], l[11:]...) }, "missing rows: 11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDraftText(strings.Join(tt.edit(draftLines()), "\n"))
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.error)
		})
	}
}

func TestParseClassFlag(t *testing.T) {
	assert.Equal(t, models.ClassVariable, parseClassFlag("変動"))
	assert.Equal(t, models.ClassVariable, parseClassFlag("Ｖ"))
	assert.Equal(t, models.ClassFixed, parseClassFlag("fixed"))
	assert.Equal(t, models.ClassNone, parseClassFlag(""))
	assert.Equal(t, models.ClassNone, parseClassFlag("その他"))
}

func TestTextDrafter(t *testing.T) {
	m, err := TextDrafter{Text: strings.Join(draftLines(), "\n")}.Draft(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, m.Has(154))

	_, err = TextDrafter{}.Draft(context.Background(), nil)
	assert.True(t, IsValidationError(err))
}

func TestLayoutDocumentListsDraftRows(t *testing.T) {
	doc := LayoutDocument()
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	assert.Len(t, lines, len(DraftRows()))
	assert.Equal(t, "1｜現金及び預金", lines[0])
	assert.Contains(t, doc, "12｜（明細枠）")
	assert.NotContains(t, doc, "\n81｜")
}
