package service

import (
	"fmt"
	"strings"

	"cash-ai/internal/models"

	"github.com/sirupsen/logrus"
)

const mfgMethodPrefix = "製造原価のみで計算"

// rules of the manufacturing sub-ledger, all scoped to the MFG section
var (
	mfgOpeningMaterial = Rule{Row: 81, Section: models.SectionMFG,
		Include: re(`期首.*材料`, `材料.*期首`, `^原?材料棚卸高?$`),
		Exclude: re(`期末`)}
	mfgMaterialPurchase = Rule{Row: 82, Section: models.SectionMFG,
		Include: re(`材料.*仕入`, `仕入.*材料`, `^(当期)?仕入高?$`),
		Exclude: re(totalPattern, `返品|値引`)}
	mfgClosingMaterial = Rule{Row: 83, Section: models.SectionMFG,
		Include: re(`期末.*材料`, `材料.*期末`),
		Exclude: re(`期首`)}

	mfgLaborRules = []Rule{
		{Row: 85, Section: models.SectionMFG, NotCategory: "経費", Flag: models.ClassFixed,
			Include: re(`賃金`, `給料`, `給与`, `雑給`, `手当`),
			Exclude: re(totalPattern, `賞与`, `退職`, `福利`, `引当`)},
		{Row: 86, Section: models.SectionMFG, NotCategory: "経費", Flag: models.ClassFixed,
			Include: re(`賞与`),
			Exclude: re(totalPattern, `退職`, `戻入`)},
		{Row: 87, Section: models.SectionMFG, NotCategory: "経費", Flag: models.ClassFixed,
			Include: re(`退職`),
			Exclude: re(totalPattern, `賞与`, `戻入`)},
		{Row: 88, Section: models.SectionMFG, NotCategory: "経費", Flag: models.ClassFixed,
			Include: re(`法定福利`, `福利厚生`),
			Exclude: re(totalPattern, `退職`)},
	}

	mfgExpenseRules = []Rule{
		{Row: 90, Section: models.SectionMFG, Category: "経費", Flag: models.ClassFixed,
			Include: re(`減価償却`),
			Exclude: re(totalPattern, `累計`)},
		{Row: 91, Section: models.SectionMFG, Category: "経費", Flag: models.ClassVariable,
			Include: re(`外注`),
			Exclude: re(totalPattern)},
		{Row: 92, Section: models.SectionMFG, Category: "経費", Flag: models.ClassVariable,
			Include: re(`消耗品`, `消耗工具`),
			Exclude: re(totalPattern)},
	}

	mfgExpenseSlot = Rule{Section: models.SectionMFG, Category: "経費", Deny: true, Include: re(`.`),
		Totals: periodExpenseNames}

	mfgOpeningWIP = Rule{Row: 106, Section: models.SectionMFG,
		Include: re(`期首.*仕掛`, `仕掛.*期首`)}
	mfgClosingWIP = Rule{Row: 108, Section: models.SectionMFG,
		Include: re(`期末.*仕掛`, `仕掛.*期末`)}
	mfgTransfer = Rule{Row: 109, Section: models.SectionMFG,
		Include: re(`他勘定`),
		Exclude: re(totalPattern)}

	materialCostNames  = []string{"当期材料費", "材料費", "材料費合計", "材料費計"}
	periodExpenseNames = []string{"当期経費", "経費合計", "経費計", "製造経費合計", "製造経費計"}
)

// ManufacturingResolver rebuilds rows 81–111 from the MFG section alone.
// Draft values for these rows are never read: figures from BS/PL must not
// leak into the sub-ledger.
type ManufacturingResolver struct {
	logger *logrus.Logger
}

func NewManufacturingResolver(logger *logrus.Logger) *ManufacturingResolver {
	return &ManufacturingResolver{logger: logger}
}

// Resolve writes rows 81–111 into m and returns them in row order.
func (r *ManufacturingResolver) Resolve(l *Ledger, m *Mapping) []models.ReportRow {
	recs := l.Section(models.SectionMFG)
	taken := claims{}
	written := make([]models.ReportRow, 0, 31)

	write := func(no int, label string, amounts models.Periods, flag models.ClassFlag, method string) {
		row := models.ReportRow{No: no, Label: label, Periods: amounts, Flag: flag, Method: method}
		m.Set(row)
		written = append(written, row)
	}
	writeRule := func(rule Rule, res MatchResult) {
		write(rule.Row, StandardLabel(rule.Row), res.Total, rule.Flag, mfgMethod(res))
	}

	opening := mfgOpeningMaterial.Evaluate(recs, taken)
	purchase := mfgMaterialPurchase.Evaluate(recs, taken)
	closing := mfgClosingMaterial.Evaluate(recs, taken)

	// inventory balances and transfers are claimed before the expense slots
	openingWIP := mfgOpeningWIP.Evaluate(recs, taken)
	closingWIP := mfgClosingWIP.Evaluate(recs, taken)
	transfer := mfgTransfer.Evaluate(recs, taken)

	writeRule(mfgOpeningMaterial, opening)
	writeRule(mfgMaterialPurchase, purchase)
	writeRule(mfgClosingMaterial, closing)

	materialCost := opening.Total.Add(purchase.Total).Sub(closing.Total)
	materialMethod := mfgMethodPrefix + ": 81+82-83"
	if rec, ok := l.Lookup([]models.Section{models.SectionMFG}, materialCostNames); ok {
		taken[rec.Index] = true
		if !rec.Amounts.IsZero() {
			materialCost = rec.Amounts
			materialMethod = fmt.Sprintf("%s: 直接採用(%s)", mfgMethodPrefix, rec.Name)
		}
	}
	write(84, StandardLabel(84), materialCost, models.ClassVariable, materialMethod)

	var labor models.Periods
	for _, rule := range mfgLaborRules {
		res := rule.Evaluate(recs, taken)
		writeRule(rule, res)
		labor = labor.Add(res.Total)
	}
	write(89, StandardLabel(89), labor, models.ClassNone, mfgMethodPrefix+": 85+86+87+88")

	directExpense, hasDirectExpense := l.Lookup([]models.Section{models.SectionMFG}, periodExpenseNames)
	if hasDirectExpense {
		taken[directExpense.Index] = true
	}

	var expenses models.Periods
	for _, rule := range mfgExpenseRules {
		res := rule.Evaluate(recs, taken)
		writeRule(rule, res)
		expenses = expenses.Add(res.Total)
	}

	slots := AssignSlots(mfgExpenseSlot.Candidates(recs, taken), expenseSlots, taken)
	for i, fill := range slots.Filled {
		write(fill.Row, fill.Name, fill.Amounts, models.ClassVariable,
			fmt.Sprintf("%s: 経費明細%d", mfgMethodPrefix, i+1))
		expenses = expenses.Add(fill.Amounts)
	}
	for _, no := range slots.Empty {
		write(no, "", models.Periods{}, models.ClassVariable, "")
	}
	write(104, StandardLabel(104), slots.Overflow.Total, models.ClassVariable, mfgMethod(slots.Overflow))
	expenses = expenses.Add(slots.Overflow.Total)

	expenseMethod := mfgMethodPrefix + ": 90～104の合計"
	if hasDirectExpense && !directExpense.Amounts.IsZero() {
		expenses = directExpense.Amounts
		expenseMethod = fmt.Sprintf("%s: 直接採用(%s)", mfgMethodPrefix, directExpense.Name)
	}
	write(105, StandardLabel(105), expenses, models.ClassNone, expenseMethod)

	writeRule(mfgOpeningWIP, openingWIP)
	subtotal := materialCost.Add(labor).Add(expenses).Add(openingWIP.Total)
	write(107, StandardLabel(107), subtotal, models.ClassNone, mfgMethodPrefix+": 84+89+105+106")
	writeRule(mfgClosingWIP, closingWIP)
	writeRule(mfgTransfer, transfer)
	write(110, StandardLabel(110), openingWIP.Total.Sub(closingWIP.Total), models.ClassVariable, mfgMethodPrefix+": 106-108")
	write(111, StandardLabel(111), subtotal.Sub(closingWIP.Total).Sub(transfer.Total), models.ClassNone,
		mfgMethodPrefix+": 107-108-109")

	r.logger.WithFields(logrus.Fields{
		"records":      len(recs),
		"expense_slot": len(slots.Filled),
		"overflow":     len(slots.Overflow.Names),
	}).Debug("Manufacturing rows resolved")

	sortRows(written)
	return written
}

func mfgMethod(res MatchResult) string {
	if !res.Found() {
		return mfgMethodPrefix + ": 該当なし"
	}
	return fmt.Sprintf("%s: %s", mfgMethodPrefix, strings.Join(res.Names, "+"))
}
