package service

import (
	"context"
	"strconv"
	"strings"

	"cash-ai/internal/models"

	"golang.org/x/text/width"
)

// DraftDelimiter separates the fields of one classifier line.
const DraftDelimiter = "｜"

const draftFieldCount = 7

// Drafter proposes the initial mapping of rows 1–78 and 112–154. The
// reconciliation core only depends on this contract.
type Drafter interface {
	Draft(ctx context.Context, l *Ledger) (*Mapping, error)
}

// TextDrafter serves a draft that was prepared outside the service.
type TextDrafter struct {
	Text string
}

func (d TextDrafter) Draft(_ context.Context, _ *Ledger) (*Mapping, error) {
	return ParseDraftText(d.Text)
}

// ParseDraftText parses classifier output, one
// "row｜label｜前々期｜前期｜今期｜flag｜method" line per row. Blank lines and
// code fences are ignored. Any structural defect is a ValidationError.
func ParseDraftText(text string) (*Mapping, error) {
	m := NewMapping()
	last := 0
	lineNo := 0

	for _, line := range strings.Split(text, "\n") {
		lineNo++
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}

		sep := DraftDelimiter
		if !strings.Contains(line, sep) {
			sep = "|"
		}
		fields := strings.Split(line, sep)
		if len(fields) != draftFieldCount {
			return nil, NewValidationError("draft line %d: expected %d fields, got %d", lineNo, draftFieldCount, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		no, err := strconv.Atoi(width.Narrow.String(fields[0]))
		if err != nil {
			return nil, NewValidationError("draft line %d: invalid row number %q", lineNo, fields[0])
		}
		if no < 1 || no > ReportRowCount {
			return nil, NewValidationError("draft line %d: row number %d out of range 1..%d", lineNo, no, ReportRowCount)
		}
		if m.Has(no) {
			return nil, NewValidationError("draft line %d: duplicate row %d", lineNo, no)
		}
		if no < last {
			return nil, NewValidationError("draft line %d: row %d follows row %d", lineNo, no, last)
		}
		last = no

		prev2, _ := ParseAmount(fields[2])
		prev1, _ := ParseAmount(fields[3])
		current, _ := ParseAmount(fields[4])
		m.Set(models.ReportRow{
			No:      no,
			Label:   fields[1],
			Periods: models.Periods{Prev2: prev2, Prev1: prev1, Current: current},
			Flag:    parseClassFlag(fields[5]),
			Method:  fields[6],
		})
	}

	if m.Len() == 0 {
		return nil, NewValidationError("classifier draft is empty")
	}
	var missing []string
	for _, no := range DraftRows() {
		if !m.Has(no) {
			missing = append(missing, strconv.Itoa(no))
		}
	}
	if len(missing) > 0 {
		if len(missing) > 10 {
			missing = append(missing[:10], "...")
		}
		return nil, NewValidationError("draft is missing rows: %s", strings.Join(missing, ","))
	}
	return m, nil
}

// FormatDraftText renders a mapping in the classifier line format.
func FormatDraftText(rows []models.ReportRow) string {
	var b strings.Builder
	for _, row := range rows {
		fields := []string{
			strconv.Itoa(row.No),
			row.Label,
			strconv.FormatInt(row.Prev2, 10),
			strconv.FormatInt(row.Prev1, 10),
			strconv.FormatInt(row.Current, 10),
			string(row.Flag),
			row.Method,
		}
		b.WriteString(strings.Join(fields, DraftDelimiter))
		b.WriteByte('\n')
	}
	return b.String()
}

func parseClassFlag(s string) models.ClassFlag {
	switch strings.ToLower(width.Narrow.String(s)) {
	case "変動", "v", "variable":
		return models.ClassVariable
	case "固定", "f", "fixed":
		return models.ClassFixed
	default:
		return models.ClassNone
	}
}
