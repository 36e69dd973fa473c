package service

import (
	"fmt"
	"strings"
)

// ReportRowCount is the fixed size of the standardized report.
const ReportRowCount = 154

// standard labels of the 154-row layout; slot rows and reserved rows are blank
var standardLabels = map[int]string{
	1: "現金及び預金", 2: "受取手形割引高", 3: "受取手形", 4: "売掛金", 5: "有価証券",
	6: "当座資産合計", 7: "商品", 8: "製品", 9: "仕掛品", 10: "原材料", 11: "貯蔵品",
	20: "貸倒引当金（流動）", 21: "その他流動資産", 22: "その他流動資産計", 23: "流動資産合計",
	24: "建物", 25: "建物附属設備", 26: "構築物", 27: "機械装置", 28: "車両運搬具",
	29: "工具器具備品", 30: "土地", 31: "建設仮勘定", 32: "有形固定資産合計", 33: "無形固定資産",
	34: "投資有価証券", 35: "関係会社株式", 36: "出資金", 37: "その他投資", 38: "長期貸付金",
	39: "長期前払費用", 40: "貸倒引当金（固定）", 41: "差入保証金", 42: "投資その他の資産合計",
	43: "繰延資産", 44: "固定資産合計", 45: "資産合計",
	46: "支払手形", 47: "買掛金", 52: "その他短期借入金", 53: "未払法人税等", 54: "未払消費税等",
	55: "賞与引当金", 56: "短期借入金計", 63: "その他流動負債", 64: "その他流動負債計",
	65: "流動負債合計", 66: "社債", 67: "長期借入金", 68: "役員借入金", 69: "退職給付引当金",
	70: "その他固定負債", 71: "固定負債合計", 72: "資本金", 73: "剰余金", 74: "純資産合計",
	75: "負債純資産合計", 76: "負債合計", 77: "繰越利益剰余金（内数）", 78: "裏書譲渡手形",
	81: "期首材料棚卸高", 82: "当期材料仕入高", 83: "期末材料棚卸高", 84: "当期材料費",
	85: "賃金", 86: "賞与", 87: "退職金", 88: "法定福利費", 89: "当期労務費",
	90: "減価償却費", 91: "外注加工費", 92: "消耗品費", 104: "その他経費", 105: "当期経費",
	106: "期首仕掛品棚卸高", 107: "小計", 108: "期末仕掛品棚卸高", 109: "他勘定振替高",
	110: "仕掛品増減", 111: "当期製品製造原価",
	112: "売上高", 113: "期首商品棚卸高", 114: "当期商品仕入高", 115: "当期製品製造原価",
	116: "他勘定振替高", 117: "期末商品棚卸高", 118: "棚卸増減", 119: "売上原価", 120: "売上総利益",
	121: "役員報酬", 122: "給料手当", 123: "賞与", 124: "法定福利費", 125: "減価償却費",
	126: "福利厚生費", 127: "地代家賃", 128: "賃借料", 129: "修繕費", 130: "水道光熱費",
	131: "旅費交通費", 132: "通信費", 133: "広告宣伝費", 134: "接待交際費", 135: "租税公課",
	136: "支払手数料", 137: "保険料", 138: "その他販管費", 139: "販売費及び一般管理費合計",
	140: "営業利益", 141: "受取利息配当金", 142: "雑収入", 143: "受取家賃", 144: "その他営業外収益",
	145: "営業外収益合計", 146: "支払利息", 147: "その他営業外費用", 148: "営業外費用合計",
	149: "経常利益", 150: "特別利益", 151: "特別損失", 152: "税引前当期純利益", 153: "法人税等",
	154: "当期純利益",
}

// slot groups whose rows each hold exactly one source account
var (
	currentAssetSlots     = rowRange(12, 19)
	borrowingSlots        = rowRange(48, 51)
	currentLiabilitySlots = rowRange(57, 62)
	expenseSlots          = rowRange(93, 103)
)

// StandardLabel returns the fixed label of a row, or "" for slot and reserved rows.
func StandardLabel(no int) string {
	return standardLabels[no]
}

// IsDraftRow reports whether the classifier is expected to propose the row.
func IsDraftRow(no int) bool {
	return (no >= 1 && no <= 78) || (no >= 112 && no <= ReportRowCount)
}

// DraftRows lists every row number the classifier must deliver.
func DraftRows() []int {
	rows := rowRange(1, 78)
	return append(rows, rowRange(112, ReportRowCount)...)
}

// LayoutDocument renders the standard layout in the classifier line format,
// used as the fixed layout document handed to the classifier.
func LayoutDocument() string {
	var b strings.Builder
	for _, no := range DraftRows() {
		label := StandardLabel(no)
		if label == "" {
			label = "（明細枠）"
		}
		fmt.Fprintf(&b, "%d%s%s\n", no, DraftDelimiter, label)
	}
	return b.String()
}
