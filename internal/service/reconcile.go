package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cash-ai/internal/models"

	"github.com/sirupsen/logrus"
)

// subtotalPolicy is the precedence a subtotal row resolves with.
type subtotalPolicy int

const (
	// formula only
	policyFormula subtotalPolicy = iota
	// direct source total, then method directive, then formula
	policyDirectFirst
	// formula is only a cross-check; the direct source total wins
	policyVerify
)

// Subtotal declares one subtotal row: its source total names and its formula
// plus - minus - |absMinus| over already resolved rows.
type Subtotal struct {
	Row      int
	Policy   subtotalPolicy
	Sections []models.Section
	Direct   []string
	Plus     []int
	Minus    []int
	AbsMinus []int
}

// Formula renders the arithmetic as a method note, e.g. "1+3+4+5".
func (s Subtotal) Formula() string {
	parts := make([]string, 0, len(s.Plus))
	for _, n := range s.Plus {
		parts = append(parts, strconv.Itoa(n))
	}
	out := strings.Join(parts, "+")
	for _, n := range s.Minus {
		out += "-" + strconv.Itoa(n)
	}
	for _, n := range s.AbsMinus {
		out += fmt.Sprintf("-|%d|", n)
	}
	return out
}

// Compute evaluates the formula against m; missing operands count as 0.
func (s Subtotal) Compute(m *Mapping) models.Periods {
	total := m.Sum(s.Plus...).Sub(m.Sum(s.Minus...))
	for _, n := range s.AbsMinus {
		total = total.Sub(m.Amount(n).Abs())
	}
	return total
}

// Operands lists every row the formula reads.
func (s Subtotal) Operands() []int {
	out := append([]int{}, s.Plus...)
	out = append(out, s.Minus...)
	return append(out, s.AbsMinus...)
}

var (
	bs  = []models.Section{models.SectionBS}
	pl  = []models.Section{models.SectionPL}
	sga = []models.Section{models.SectionSGA, models.SectionPL}
)

// bsSubtotals in evaluation order; each only reads rows resolved before it.
var bsSubtotals = []Subtotal{
	{Row: 22, Policy: policyFormula, Sections: bs, Plus: append(rowRange(12, 19), 21), AbsMinus: []int{20}},
	{Row: 6, Policy: policyDirectFirst, Sections: bs, Direct: []string{"当座資産合計", "当座資産計"},
		Plus: []int{1, 3, 4, 5}},
	{Row: 23, Policy: policyDirectFirst, Sections: bs, Direct: []string{"流動資産合計", "流動資産計"},
		Plus: []int{6, 7, 8, 9, 10, 11, 22}},
	{Row: 32, Policy: policyFormula, Sections: bs, Plus: rowRange(24, 31)},
	{Row: 42, Policy: policyFormula, Sections: bs, Plus: []int{34, 35, 36, 37, 38, 39, 41}, AbsMinus: []int{40}},
	{Row: 44, Policy: policyDirectFirst, Sections: bs, Direct: []string{"固定資産合計", "固定資産計"},
		Plus: []int{32, 33, 42}},
	{Row: 45, Policy: policyDirectFirst, Sections: bs, Direct: []string{"資産合計", "資産の部合計", "総資産", "資産総額"},
		Plus: []int{23, 44, 43}},
	{Row: 56, Policy: policyFormula, Sections: bs, Plus: rowRange(48, 52)},
	{Row: 64, Policy: policyVerify, Sections: bs, Direct: []string{"その他流動負債計", "その他流動負債合計"},
		Plus: rowRange(57, 63)},
	{Row: 65, Policy: policyDirectFirst, Sections: bs, Direct: []string{"流動負債合計", "流動負債計"},
		Plus: []int{46, 47, 53, 54, 55, 56, 64}},
	{Row: 71, Policy: policyDirectFirst, Sections: bs, Direct: []string{"固定負債合計", "固定負債計"},
		Plus: rowRange(66, 70)},
	{Row: 74, Policy: policyDirectFirst, Sections: bs, Direct: []string{"純資産合計", "純資産の部合計", "資本合計"},
		Plus: []int{72, 73}},
	{Row: 76, Policy: policyFormula, Sections: bs, Plus: []int{65, 71}},
	{Row: 75, Policy: policyDirectFirst, Sections: bs,
		Direct: []string{"負債純資産合計", "負債及び純資産合計", "負債・純資産合計", "負債の部及び純資産の部合計"},
		Plus:   []int{65, 71, 74}},
}

var (
	costOfSales = Subtotal{Row: 119, Policy: policyDirectFirst, Sections: pl, Direct: []string{"売上原価", "売上原価合計"},
		Plus: []int{113, 114, 115}, Minus: []int{116, 117}}
	grossProfit = Subtotal{Row: 120, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"売上総利益", "売上総損益", "売上総利益金額"}, Plus: []int{112}, Minus: []int{119}}
	sgaTotal = Subtotal{Row: 139, Policy: policyDirectFirst, Sections: sga,
		Direct: []string{"販売費及び一般管理費合計", "販売費及び一般管理費計", "販管費合計", "販売費及び一般管理費", "販売費・一般管理費合計"},
		Plus:   rowRange(121, 138)}
	operatingIncome = Subtotal{Row: 140, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"営業利益", "営業損益", "営業利益金額"}, Plus: []int{120}, Minus: []int{139}}
	nonOperatingIncome = Subtotal{Row: 145, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"営業外収益合計", "営業外収益計"}, Plus: rowRange(141, 144)}
	nonOperatingExpense = Subtotal{Row: 148, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"営業外費用合計", "営業外費用計"}, Plus: []int{146, 147}}
	ordinaryIncome = Subtotal{Row: 149, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"経常利益", "経常損益", "経常利益金額"}, Plus: []int{140, 145}, Minus: []int{148}}
	pretaxIncome = Subtotal{Row: 152, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"税引前当期純利益", "税引前当期純損益", "税金等調整前当期純利益"}, Plus: []int{149, 150}, Minus: []int{151}}
	netIncome = Subtotal{Row: 154, Policy: policyDirectFirst, Sections: pl,
		Direct: []string{"当期純利益", "当期純損益", "当期純利益金額"}, Plus: []int{152}, Minus: []int{153}}

	inventoryDelta = Subtotal{Row: 118, Policy: policyFormula, Plus: []int{113}, Minus: []int{117}}
	wipDelta       = Subtotal{Row: 110, Policy: policyFormula, Plus: []int{106}, Minus: []int{108}}
)

// re-derivation rules for rows whose draft is replaced by a keyword scan
var (
	purchaseRule = Rule{Row: 114, Category: "売上原価", ExactCat: true, Include: re(`仕入`), Exclude: re(`合計`)}
	transferNames = []string{"他勘定振替高", "他勘定への振替高", "他勘定振替"}
	depreciationRule = Rule{Row: 125, Section: models.SectionSGA, Include: re(`減価償却`), Exclude: re(totalPattern, `累計`)}
	rentalIncomeRule = Rule{Row: 143, Section: models.SectionPL, Category: "営業外収益", Include: rentalIncomePatterns}
	otherNonOpExpenseRule = Rule{Row: 147, Section: models.SectionPL, Category: "営業外費用", Deny: true,
		Include: re(`.`), Exclude: re(`支払利息`, `利息`, `割引料`), Totals: nonOperatingExpense.Direct}
	taxRule = Rule{Row: 153, Section: models.SectionPL, Include: taxPatterns, Exclude: taxExclude}
)

// investment siblings row 37 is compared against, in scan order
var investmentSiblings = []int{34, 35, 36, 38, 39, 41}

// bsUniqueGroups are the draft slot rows that may hold each account once.
var bsUniqueGroups = [][]int{rowRange(12, 19), rowRange(48, 52), rowRange(57, 63)}

var directivePattern = regexp.MustCompile(`合算[:：]\s*(.+)`)
var directiveSplit = regexp.MustCompile(`[+＋、,，]`)

// Reconciler resolves rows 1–78 and 112–154 on top of the draft. Rows it does
// not declare are left exactly as drafted.
type Reconciler struct {
	logger *logrus.Logger
}

func NewReconciler(logger *logrus.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile rewrites the declared rows of m in dependency order and returns
// the non-fatal findings.
func (r *Reconciler) Reconcile(l *Ledger, m *Mapping) []models.Diagnostic {
	var diags []models.Diagnostic

	if d, ok := r.suppressDuplicateInvestment(m); ok {
		diags = append(diags, d)
	}
	diags = append(diags, r.dedupeSlots(m)...)

	for _, s := range bsSubtotals {
		if d, ok := r.resolve(l, m, s); ok {
			diags = append(diags, d)
		}
	}

	r.rederivePurchases(l, m)
	r.rederiveTransfers(l, m)
	r.setFormula(m, inventoryDelta, models.ClassVariable)
	r.setFormula(m, wipDelta, models.ClassVariable)
	r.resolve(l, m, costOfSales)
	r.resolve(l, m, grossProfit)

	r.rederive(l, m, depreciationRule, nil)
	r.rederiveOtherSGA(l, m)
	r.resolve(l, m, sgaTotal)
	r.resolve(l, m, operatingIncome)

	r.rederive(l, m, rentalIncomeRule, nil)
	r.resolve(l, m, nonOperatingIncome)
	r.rederive(l, m, otherNonOpExpenseRule, nil)
	r.resolve(l, m, nonOperatingExpense)
	r.resolve(l, m, ordinaryIncome)
	r.resolve(l, m, pretaxIncome)
	r.rederive(l, m, taxRule, nil)
	r.resolve(l, m, netIncome)

	normalizeFlags(m)
	return diags
}

// resolve applies a subtotal's precedence policy and writes the row.
func (r *Reconciler) resolve(l *Ledger, m *Mapping, s Subtotal) (models.Diagnostic, bool) {
	row := m.Get(s.Row)
	row.Label = StandardLabel(s.Row)
	computed := s.Compute(m)

	switch s.Policy {
	case policyVerify:
		if rec, ok := l.Lookup(s.Sections, s.Direct); ok {
			row.Periods = rec.Amounts
			row.Method = "直接採用: " + rec.Name
			m.Set(row)
			if rec.Amounts != computed {
				direct := rec.Amounts
				r.logger.WithFields(logrus.Fields{
					"row":        s.Row,
					"direct":     direct.Values(),
					"computed":   computed.Values(),
					"components": componentBreakdown(m, s.Operands()),
				}).Warn("Direct total disagrees with its components")
				return models.Diagnostic{
					Row:        s.Row,
					Kind:       models.DiagnosticTotalMismatch,
					Message:    fmt.Sprintf("行%d: 直接値 %s と 計算値 %s が一致しません", s.Row, rec.Name, s.Formula()),
					Direct:     &direct,
					Computed:   &computed,
					Components: s.Operands(),
				}, true
			}
			return models.Diagnostic{}, false
		}
	case policyDirectFirst:
		if rec, ok := l.Lookup(s.Sections, s.Direct); ok {
			row.Periods = rec.Amounts
			row.Method = "直接採用: " + rec.Name
			m.Set(row)
			return models.Diagnostic{}, false
		}
		if res, ok := applyDirective(l, s.Sections, row.Method); ok {
			row.Periods = res.Total
			row.Method = "合算: " + strings.Join(res.Names, "+")
			m.Set(row)
			return models.Diagnostic{}, false
		}
	}

	row.Periods = computed
	row.Method = "計算: " + s.Formula()
	m.Set(row)
	return models.Diagnostic{}, false
}

func (r *Reconciler) setFormula(m *Mapping, s Subtotal, flag models.ClassFlag) {
	row := m.Get(s.Row)
	row.Label = StandardLabel(s.Row)
	row.Periods = s.Compute(m)
	row.Flag = flag
	row.Method = "計算: " + s.Formula()
	m.Set(row)
}

// applyDirective re-aggregates the accounts a "合算:" method note names.
func applyDirective(l *Ledger, sections []models.Section, method string) (MatchResult, bool) {
	match := directivePattern.FindStringSubmatch(method)
	if match == nil {
		return MatchResult{}, false
	}
	wanted := map[string]bool{}
	for _, name := range directiveSplit.Split(match[1], -1) {
		if n := NormalizeAccountName(name); n != "" {
			wanted[n] = true
		}
	}
	var res MatchResult
	for _, sec := range sections {
		for _, rec := range l.Section(sec) {
			if wanted[NormalizeAccountName(rec.Name)] {
				res.Total = res.Total.Add(rec.Amounts)
				res.Names = append(res.Names, rec.Name)
				res.Indexes = append(res.Indexes, rec.Index)
			}
		}
	}
	return res, res.Found()
}

// suppressDuplicateInvestment zeroes row 37 when it repeats a sibling's
// amounts exactly.
func (r *Reconciler) suppressDuplicateInvestment(m *Mapping) (models.Diagnostic, bool) {
	row := m.Get(37)
	if row.Label == "" && row.Periods.IsZero() {
		return models.Diagnostic{}, false
	}
	for _, no := range investmentSiblings {
		if m.Amount(no) != row.Periods {
			continue
		}
		original := row.Label
		row.Label = "その他投資（重複除外）"
		row.Periods = models.Periods{}
		row.Method = fmt.Sprintf("重複除外: 行%d と同額", no)
		m.Set(row)
		r.logger.WithFields(logrus.Fields{"row": 37, "sibling": no, "label": original}).
			Info("Investment row duplicates a sibling and was zeroed")
		return models.Diagnostic{
			Row:        37,
			Kind:       models.DiagnosticDuplicateValue,
			Message:    fmt.Sprintf("行37 (%s) は 行%d と同額のため除外", original, no),
			Components: []int{no},
		}, true
	}
	return models.Diagnostic{}, false
}

// dedupeSlots clears any draft slot row whose account already occupies an
// earlier slot of any unique-occupancy group.
func (r *Reconciler) dedupeSlots(m *Mapping) []models.Diagnostic {
	var diags []models.Diagnostic
	seen := map[string]int{}
	for _, group := range bsUniqueGroups {
		for _, no := range group {
			row := m.Get(no)
			key := NormalizeAccountName(row.Label)
			if key == "" {
				continue
			}
			first, dup := seen[key]
			if !dup {
				seen[key] = no
				continue
			}
			diags = append(diags, models.Diagnostic{
				Row:        no,
				Kind:       models.DiagnosticDuplicateSlot,
				Message:    fmt.Sprintf("行%d (%s) は 行%d と同一科目のため除外", no, row.Label, first),
				Components: []int{first},
			})
			m.Set(models.ReportRow{No: no, Flag: row.Flag, Method: fmt.Sprintf("重複除外: 行%d と同一科目", first)})
		}
	}
	return diags
}

// rederive replaces a draft row with a keyword scan; the draft survives when
// nothing matches.
func (r *Reconciler) rederive(l *Ledger, m *Mapping, rule Rule, taken claims) {
	res := rule.Evaluate(l.Section(rule.Section), taken)
	if !res.Found() {
		return
	}
	row := m.Get(rule.Row)
	row.Label = StandardLabel(rule.Row)
	row.Periods = res.Total
	row.Method = "再集計: " + strings.Join(res.Names, "+")
	m.Set(row)
}

// rederivePurchases always discards the draft of row 114.
func (r *Reconciler) rederivePurchases(l *Ledger, m *Mapping) {
	var res MatchResult
	for _, sec := range models.Sections {
		part := purchaseRule.Evaluate(l.Section(sec), nil)
		res.Total = res.Total.Add(part.Total)
		res.Names = append(res.Names, part.Names...)
		res.Indexes = append(res.Indexes, part.Indexes...)
	}
	row := m.Get(114)
	row.Label = StandardLabel(114)
	row.Periods = res.Total
	row.Method = "再集計: 該当なし"
	if res.Found() {
		row.Method = "再集計: " + strings.Join(res.Names, "+")
	}
	m.Set(row)
}

func (r *Reconciler) rederiveTransfers(l *Ledger, m *Mapping) {
	wanted := map[string]bool{}
	for _, n := range transferNames {
		wanted[NormalizeAccountName(n)] = true
	}
	var res MatchResult
	for _, rec := range l.Section(models.SectionPL) {
		if wanted[NormalizeAccountName(rec.Name)] {
			res.Total = res.Total.Add(rec.Amounts)
			res.Names = append(res.Names, rec.Name)
			res.Indexes = append(res.Indexes, rec.Index)
		}
	}
	if !res.Found() {
		return
	}
	row := m.Get(116)
	row.Label = StandardLabel(116)
	row.Periods = res.Total
	row.Method = "合算: " + strings.Join(res.Names, "+")
	m.Set(row)
}

// rederiveOtherSGA sums the SGA records no detail rule claims.
func (r *Reconciler) rederiveOtherSGA(l *Ledger, m *Mapping) {
	recs := l.Section(models.SectionSGA)
	taken := claims{}
	for _, rule := range sgaDetailRules {
		rule.Evaluate(recs, taken)
	}
	r.rederive(l, m, otherSGA, taken)
}

// normalizeFlags force-sets the manufacturing cost flags.
func normalizeFlags(m *Mapping) {
	set := func(no int, flag models.ClassFlag) {
		row := m.Get(no)
		row.Flag = flag
		m.Set(row)
	}
	for no := 85; no <= 88; no++ {
		set(no, models.ClassFixed)
	}
	set(90, models.ClassFixed)
	for no := 91; no <= 104; no++ {
		set(no, models.ClassVariable)
	}
}

func componentBreakdown(m *Mapping, rows []int) map[string][3]int64 {
	out := make(map[string][3]int64, len(rows))
	for _, no := range rows {
		out[strconv.Itoa(no)] = m.Amount(no).Values()
	}
	return out
}
