package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// placeholders that stand for "no amount" in source spreadsheets
var amountPlaceholders = map[string]bool{
	"":  true,
	"-": true,
	"ー": true,
	"－": true,
	"―": true,
	"‐": true,
	"—": true,
	"–": true,
	"ｰ": true,
}

var negativeMarkers = []string{"△", "▲"}

// ParseAmount converts a raw amount into a signed integer. Absent values are 0.
// ok is false when a value was present but unreadable; the amount is then 0
// and the caller decides whether to record it as a data-quality signal.
func ParseAmount(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case string:
		return parseAmountString(v)
	}
	return 0, false
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseAmountString(s string) (int64, bool) {
	s = stripSpaces(s)
	if amountPlaceholders[s] {
		return 0, true
	}

	negative := false
	for _, marker := range negativeMarkers {
		if strings.HasPrefix(s, marker) {
			negative = true
			s = strings.TrimPrefix(s, marker)
			break
		}
	}

	s = width.Narrow.String(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "円")
	if s == "" {
		return 0, !negative
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

func stripSpaces(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer(" ", "", "　", "", "\t", "").Replace(s)
}
