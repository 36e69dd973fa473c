package service

import (
	"testing"

	"cash-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSumsInSourceOrder(t *testing.T) {
	l := ledgerOf(map[models.Section][]models.AccountRecord{
		models.SectionSGA: {
			current("旅費交通費", "", 10),
			current("交通費", "", 5),
			current("旅費交通費合計", "", 15),
			current("通信費", "", 7),
		},
	})

	res := Match(l.Section(models.SectionSGA), re(`旅費`, `交通費`), re(totalPattern))
	assert.Equal(t, int64(15), res.Total.Current)
	assert.Equal(t, []string{"旅費交通費", "交通費"}, res.Names)
	assert.Equal(t, []int{0, 1}, res.Indexes)
	assert.True(t, res.Found())
}

func TestMatchMatchesNormalizedNames(t *testing.T) {
	recs := []models.AccountRecord{current("水道 光熱費", "", 3)}
	res := Match(recs, re(`^水道光熱費$`), nil)
	require.True(t, res.Found())
	assert.Equal(t, "水道 光熱費", res.Names[0])
}

func TestIsDenied(t *testing.T) {
	for _, name := range []string{"流動資産合計", "小計", "減価償却累計額", "期首商品棚卸高", "仕掛品", "棚卸資産増減", "販売費計"} {
		assert.True(t, IsDenied(NormalizeAccountName(name)), name)
	}
	for _, name := range []string{"前払費用", "未収入金", "会計ソフト"} {
		assert.False(t, IsDenied(NormalizeAccountName(name)), name)
	}
}

func TestRuleEligibility(t *testing.T) {
	recs := NewLedger(map[models.Section][]models.AccountRecord{
		models.SectionMFG: {
			current("減価償却費", "経費", 10),
			current("減価償却費", "", 20),
			current("減価償却費", "製造経費", 30),
		},
	}).Section(models.SectionMFG)

	contains := Rule{Category: "経費", Include: re(`減価償却`)}
	assert.Equal(t, int64(40), contains.Evaluate(recs, nil).Total.Current, "empty category is not an expense")

	exact := Rule{Category: "経費", ExactCat: true, Include: re(`減価償却`)}
	assert.Equal(t, int64(10), exact.Evaluate(recs, nil).Total.Current)

	not := Rule{NotCategory: "経費", Include: re(`減価償却`)}
	assert.Equal(t, int64(20), not.Evaluate(recs, nil).Total.Current)
}

func TestRuleSkipsTotalLines(t *testing.T) {
	recs := NewLedger(map[models.Section][]models.AccountRecord{
		models.SectionPL: {
			current("雑損失", "営業外費用", 5),
			current("営業外費用", "営業外費用", 25),
			current("営業外費用合計", "営業外費用", 25),
			current("販売費及び一般管理費", "", 609),
		},
	}).Section(models.SectionPL)

	residue := Rule{Deny: true, Include: re(`.`), Totals: []string{"販売費及び一般管理費"}}
	res := residue.Evaluate(recs, nil)
	assert.Equal(t, []string{"雑損失"}, res.Names, "header named after its category and listed totals are skipped")

	plain := Rule{Include: re(`.`), Totals: []string{"販売費及び一般管理費"}}
	assert.Equal(t, int64(55), plain.Evaluate(recs, nil).Total.Current, "only Deny rules drop category headers")
}

func TestRuleEvaluateClaims(t *testing.T) {
	recs := NewLedger(map[models.Section][]models.AccountRecord{
		models.SectionSGA: {current("給料手当", "", 100), current("雑給", "", 20)},
	}).Section(models.SectionSGA)

	taken := claims{}
	first := Rule{Include: re(`給料`)}.Evaluate(recs, taken)
	assert.Equal(t, int64(100), first.Total.Current)

	second := Rule{Include: re(`給`)}.Evaluate(recs, taken)
	assert.Equal(t, int64(20), second.Total.Current, "claimed record must not count twice")

	memo := Rule{Memo: true, Include: re(`.`)}.Evaluate(recs, claims{})
	assert.Equal(t, int64(120), memo.Total.Current)
}

func TestAssignSlots(t *testing.T) {
	candidates := NewLedger(map[models.Section][]models.AccountRecord{
		models.SectionBS: {
			current("前払費用", "流動資産", 1),
			current("未収入金", "流動資産", 2),
			current("前払 費用", "流動資産", 4),
			current("立替金", "流動資産", 8),
			current("仮払金", "流動資産", 16),
		},
	}).Section(models.SectionBS)

	taken := claims{}
	out := AssignSlots(candidates, []int{12, 13, 14}, taken)

	require.Len(t, out.Filled, 3)
	assert.Equal(t, SlotFill{Row: 12, Name: "前払費用", Amounts: periods(0, 0, 5), Indexes: []int{0, 2}}, out.Filled[0])
	assert.Equal(t, "未収入金", out.Filled[1].Name)
	assert.Equal(t, "立替金", out.Filled[2].Name)
	assert.Empty(t, out.Empty)
	assert.Equal(t, []string{"仮払金"}, out.Overflow.Names)
	assert.Equal(t, int64(16), out.Overflow.Total.Current)
	assert.Len(t, taken, 5)
}

func TestAssignSlotsLeavesEmptySlots(t *testing.T) {
	candidates := []models.AccountRecord{current("未収入金", "", 2)}
	out := AssignSlots(candidates, []int{57, 58, 59}, claims{})

	require.Len(t, out.Filled, 1)
	assert.Equal(t, []int{58, 59}, out.Empty)
	assert.False(t, out.Overflow.Found())
}

func TestAssignSlotsDistinctNames(t *testing.T) {
	var recs []models.AccountRecord
	for _, name := range []string{"電力料", "電力 料", "ガス代", "水道料", "ガス代", "運賃"} {
		recs = append(recs, current(name, "経費", 1))
	}
	recs = NewLedger(map[models.Section][]models.AccountRecord{models.SectionMFG: recs}).Section(models.SectionMFG)

	out := AssignSlots(recs, expenseSlots, claims{})
	seen := map[string]bool{}
	for _, fill := range out.Filled {
		key := NormalizeAccountName(fill.Name)
		assert.False(t, seen[key], "slot name %s repeated", fill.Name)
		seen[key] = true
	}
	assert.Len(t, out.Filled, 4)
	assert.Len(t, out.Empty, len(expenseSlots)-4)
}
