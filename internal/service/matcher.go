package service

import (
	"regexp"
	"strings"

	"cash-ai/internal/models"
)

// DenyWords remove a record from per-item slot consideration. Rows built to
// consume totals or inventory balances opt out through Rule.Deny.
var DenyWords = []string{
	"合計", "小計", "総計", "累計",
	"期首", "期末", "棚卸", "仕掛品", "増減",
}

// totalPattern excludes subtotal and total lines from named rules.
const totalPattern = `合計|小計|総計|計$`

// IsDenied reports whether a normalized account name carries a deny word or
// ends with the total marker.
func IsDenied(normalized string) bool {
	for _, w := range DenyWords {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return strings.HasSuffix(normalized, "計")
}

// MatchResult is the outcome of matching records against a pattern set.
type MatchResult struct {
	Total   models.Periods
	Names   []string
	Indexes []int
}

func (r MatchResult) Found() bool {
	return len(r.Indexes) > 0
}

// Match sums every record whose normalized name hits an include pattern and
// no exclude pattern. Matched original names are returned in source order.
func Match(records []models.AccountRecord, include, exclude []*regexp.Regexp) MatchResult {
	var res MatchResult
	for _, rec := range records {
		name := NormalizeAccountName(rec.Name)
		if anyMatch(exclude, name) || !anyMatch(include, name) {
			continue
		}
		res.Total = res.Total.Add(rec.Amounts)
		res.Names = append(res.Names, rec.Name)
		res.Indexes = append(res.Indexes, rec.Index)
	}
	return res
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// re compiles a pattern list; patterns are package constants so a bad one
// fails at init.
func re(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// claims tracks records already assigned inside one unique-occupancy group.
type claims map[int]bool

// Rule is one declarative row rule: which section to scan, which records are
// eligible and which names count towards the row.
type Rule struct {
	Row         int
	Section     models.Section
	Include     []*regexp.Regexp
	Exclude     []*regexp.Regexp
	Category    string // record category must contain this; "" accepts any
	ExactCat    bool   // Category must equal the record category instead
	NotCategory string // record category must not contain this
	Deny        bool   // apply DenyWords and drop lines named after their own category
	Memo        bool   // memo rows never claim records
	Flag        models.ClassFlag

	// names of the enclosing total, never summed into the row
	Totals []string
}

func (r Rule) eligible(rec models.AccountRecord, taken claims) bool {
	if taken[rec.Index] {
		return false
	}
	category := NormalizeAccountName(rec.Category)
	if r.Category != "" {
		if r.ExactCat && category != r.Category {
			return false
		}
		if !strings.Contains(category, r.Category) {
			return false
		}
	}
	if r.NotCategory != "" && strings.Contains(category, r.NotCategory) {
		return false
	}
	name := NormalizeAccountName(rec.Name)
	if r.Deny && (IsDenied(name) || (category != "" && name == category)) {
		return false
	}
	return !isTotalName(name, r.Totals)
}

// isTotalName reports whether a normalized name is one of the total names.
func isTotalName(name string, totals []string) bool {
	for _, t := range totals {
		if NormalizeAccountName(t) == name {
			return true
		}
	}
	return false
}

// Evaluate applies the rule to records, skipping and then extending taken.
// A nil taken set evaluates without occupancy bookkeeping.
func (r Rule) Evaluate(records []models.AccountRecord, taken claims) MatchResult {
	eligible := make([]models.AccountRecord, 0, len(records))
	for _, rec := range records {
		if r.eligible(rec, taken) {
			eligible = append(eligible, rec)
		}
	}
	res := Match(eligible, r.Include, r.Exclude)
	if taken != nil && !r.Memo {
		for _, idx := range res.Indexes {
			taken[idx] = true
		}
	}
	return res
}

// SlotFill is one account assigned to a single-occupancy slot row.
type SlotFill struct {
	Row     int
	Name    string
	Amounts models.Periods
	Indexes []int
}

// SlotAssignment is the outcome of AssignSlots.
type SlotAssignment struct {
	Filled   []SlotFill
	Empty    []int
	Overflow MatchResult
}

// AssignSlots hands eligible candidates to slot rows strictly in source order,
// one account per slot. Candidates sharing a normalized name are one account
// and share a slot. Whatever is left once the slots run out is summed into
// Overflow. Assigned records are added to taken.
func AssignSlots(candidates []models.AccountRecord, slots []int, taken claims) SlotAssignment {
	type group struct {
		name    string
		amounts models.Periods
		indexes []int
	}
	var order []string
	groups := map[string]*group{}
	for _, rec := range candidates {
		if taken[rec.Index] {
			continue
		}
		key := NormalizeAccountName(rec.Name)
		g, ok := groups[key]
		if !ok {
			g = &group{name: rec.Name}
			groups[key] = g
			order = append(order, key)
		}
		g.amounts = g.amounts.Add(rec.Amounts)
		g.indexes = append(g.indexes, rec.Index)
	}

	var out SlotAssignment
	for i, key := range order {
		g := groups[key]
		if i < len(slots) {
			out.Filled = append(out.Filled, SlotFill{Row: slots[i], Name: g.name, Amounts: g.amounts, Indexes: g.indexes})
		} else {
			out.Overflow.Total = out.Overflow.Total.Add(g.amounts)
			out.Overflow.Names = append(out.Overflow.Names, g.name)
			out.Overflow.Indexes = append(out.Overflow.Indexes, g.indexes...)
		}
		if taken != nil {
			for _, idx := range g.indexes {
				taken[idx] = true
			}
		}
	}
	if len(order) < len(slots) {
		out.Empty = append(out.Empty, slots[len(order):]...)
	}
	return out
}

// rowRange returns the inclusive list of row numbers from..to.
func rowRange(from, to int) []int {
	rows := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		rows = append(rows, n)
	}
	return rows
}

// Candidates returns the eligible records that hit the rule's patterns,
// without claiming them. Used to feed AssignSlots.
func (r Rule) Candidates(records []models.AccountRecord, taken claims) []models.AccountRecord {
	var out []models.AccountRecord
	for _, rec := range records {
		if !r.eligible(rec, taken) {
			continue
		}
		name := NormalizeAccountName(rec.Name)
		if anyMatch(r.Exclude, name) || !anyMatch(r.Include, name) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
