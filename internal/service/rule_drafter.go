package service

import (
	"context"
	"strings"

	"cash-ai/internal/models"

	"github.com/sirupsen/logrus"
)

// RuleDrafter builds the draft from the declarative rule tables alone. It
// needs no network access and always yields every draft row; rows no rule
// matches stay empty.
type RuleDrafter struct {
	logger *logrus.Logger
}

func NewRuleDrafter(logger *logrus.Logger) *RuleDrafter {
	return &RuleDrafter{logger: logger}
}

func (d *RuleDrafter) Draft(ctx context.Context, l *Ledger) (*Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := NewMapping()
	for _, no := range DraftRows() {
		m.Set(models.ReportRow{No: no})
	}

	matched := 0
	write := func(rule Rule, res MatchResult) {
		if !res.Found() {
			return
		}
		matched++
		m.Set(models.ReportRow{
			No:      rule.Row,
			Label:   StandardLabel(rule.Row),
			Periods: res.Total,
			Flag:    rule.Flag,
			Method:  "ルール: " + strings.Join(res.Names, "+"),
		})
	}

	bsRecs := l.Section(models.SectionBS)
	bsTaken := claims{}
	for _, rule := range bsDraftRules {
		write(rule, rule.Evaluate(bsRecs, bsTaken))
	}
	for _, g := range bsSlotGroups {
		slots := AssignSlots(g.rule.Candidates(bsRecs, bsTaken), g.slots, bsTaken)
		for _, fill := range slots.Filled {
			matched++
			m.Set(models.ReportRow{No: fill.Row, Label: fill.Name, Periods: fill.Amounts, Method: "ルール: 明細枠"})
		}
		write(Rule{Row: g.overflow}, slots.Overflow)
	}

	plRecs := l.Section(models.SectionPL)
	plTaken := claims{}
	for _, rule := range plDraftRules {
		write(rule, rule.Evaluate(plRecs, plTaken))
	}

	sgaRecs := l.Section(models.SectionSGA)
	sgaTaken := claims{}
	for _, rule := range sgaDetailRules {
		write(rule, rule.Evaluate(sgaRecs, sgaTaken))
	}
	write(otherSGA, otherSGA.Evaluate(sgaRecs, sgaTaken))

	d.logger.WithFields(logrus.Fields{
		"records": l.Len(),
		"matched": matched,
	}).Debug("Rule draft built")
	return m, nil
}
