package service

import (
	"fmt"
	"strings"

	"cash-ai/internal/models"

	"github.com/sirupsen/logrus"
)

// Ledger is the immutable set of parsed account records of one run.
type Ledger struct {
	sections map[models.Section][]models.AccountRecord
}

// NewLedger builds a ledger from already parsed records; Section and Index
// are assigned from the position of each record.
func NewLedger(records map[models.Section][]models.AccountRecord) *Ledger {
	l := &Ledger{sections: make(map[models.Section][]models.AccountRecord)}
	for sec, recs := range records {
		out := make([]models.AccountRecord, len(recs))
		for i, rec := range recs {
			rec.Section = sec
			rec.Index = i
			out[i] = rec
		}
		l.sections[sec] = out
	}
	return l
}

// Section returns a copy of the records of one section in source order.
func (l *Ledger) Section(s models.Section) []models.AccountRecord {
	recs := l.sections[s]
	out := make([]models.AccountRecord, len(recs))
	copy(out, recs)
	return out
}

// Len counts records across all sections.
func (l *Ledger) Len() int {
	n := 0
	for _, recs := range l.sections {
		n += len(recs)
	}
	return n
}

// Lookup finds the first record in the given sections whose normalized name
// equals one of names.
func (l *Ledger) Lookup(sections []models.Section, names []string) (models.AccountRecord, bool) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[NormalizeAccountName(n)] = true
	}
	for _, s := range sections {
		for _, rec := range l.sections[s] {
			if wanted[NormalizeAccountName(rec.Name)] {
				return rec, true
			}
		}
	}
	return models.AccountRecord{}, false
}

// BuildLedger parses the request payload into a ledger. Unreadable amounts
// become 0 and are reported as diagnostics; they never fail the run.
func BuildLedger(req *models.PipelineRequest, logger *logrus.Logger) (*Ledger, []models.Diagnostic, error) {
	records := make(map[models.Section][]models.AccountRecord)
	var diags []models.Diagnostic
	total := 0

	for _, sec := range models.Sections {
		inputs := req.SectionInputs(sec)
		recs := make([]models.AccountRecord, 0, len(inputs))
		for _, in := range inputs {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				continue
			}
			rec := models.AccountRecord{Name: name, Category: strings.TrimSpace(in.Category)}
			periods := []struct {
				label string
				field models.AmountField
				dst   *int64
			}{
				{"前々期", in.Prev2, &rec.Amounts.Prev2},
				{"前期", in.Prev1, &rec.Amounts.Prev1},
				{"今期", in.Current, &rec.Amounts.Current},
			}
			for _, p := range periods {
				v, ok := ParseAmount(p.field.Raw)
				if !ok {
					logger.WithFields(logrus.Fields{
						"section": sec,
						"account": name,
						"period":  p.label,
						"value":   fmt.Sprintf("%v", p.field.Raw),
					}).Warn("Malformed amount treated as 0")
					diags = append(diags, models.Diagnostic{
						Kind:    models.DiagnosticMalformedValue,
						Message: fmt.Sprintf("%s/%s/%s: %v", sec, name, p.label, p.field.Raw),
					})
				}
				*p.dst = v
			}
			recs = append(recs, rec)
		}
		records[sec] = recs
		total += len(recs)
	}

	if total == 0 {
		return nil, diags, NewValidationError("no account records supplied in BS, PL, SGA or MFG")
	}
	return NewLedger(records), diags, nil
}
