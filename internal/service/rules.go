package service

import "cash-ai/internal/models"

// sgaDetailRules map SGA records onto rows 121–137. They are evaluated in
// order against one shared claim set; whatever none of them claims is the
// "other SGA" residue of row 138.
var sgaDetailRules = []Rule{
	{Row: 121, Section: models.SectionSGA, Include: re(`役員報酬`, `役員給与`), Exclude: re(totalPattern)},
	{Row: 122, Section: models.SectionSGA, Include: re(`給料`, `給与`, `手当`, `雑給`, `賃金`),
		Exclude: re(totalPattern, `役員`, `賞与`, `退職`)},
	{Row: 123, Section: models.SectionSGA, Include: re(`賞与`), Exclude: re(totalPattern, `役員`)},
	{Row: 124, Section: models.SectionSGA, Include: re(`法定福利`), Exclude: re(totalPattern)},
	{Row: 125, Section: models.SectionSGA, Include: re(`減価償却`), Exclude: re(totalPattern, `累計`)},
	{Row: 126, Section: models.SectionSGA, Include: re(`福利厚生`, `厚生費`), Exclude: re(totalPattern, `法定`)},
	{Row: 127, Section: models.SectionSGA, Include: re(`地代`, `家賃`), Exclude: re(totalPattern)},
	{Row: 128, Section: models.SectionSGA, Include: re(`賃借料`, `リース料`, `レンタル`), Exclude: re(totalPattern)},
	{Row: 129, Section: models.SectionSGA, Include: re(`修繕`, `修理`), Exclude: re(totalPattern)},
	{Row: 130, Section: models.SectionSGA, Include: re(`水道`, `光熱`, `電気`, `ガス`), Exclude: re(totalPattern)},
	{Row: 131, Section: models.SectionSGA, Include: re(`旅費`, `交通費`), Exclude: re(totalPattern)},
	{Row: 132, Section: models.SectionSGA, Include: re(`通信`, `郵便`, `電話`), Exclude: re(totalPattern)},
	{Row: 133, Section: models.SectionSGA, Include: re(`広告`, `宣伝`, `販売促進`), Exclude: re(totalPattern)},
	{Row: 134, Section: models.SectionSGA, Include: re(`交際`, `接待`), Exclude: re(totalPattern)},
	{Row: 135, Section: models.SectionSGA, Include: re(`租税`, `公課`, `印紙`), Exclude: re(totalPattern)},
	{Row: 136, Section: models.SectionSGA, Include: re(`手数料`), Exclude: re(totalPattern)},
	{Row: 137, Section: models.SectionSGA, Include: re(`保険料`), Exclude: re(totalPattern, `法定`, `社会`)},
}

// otherSGA is the residue rule of row 138, applied after sgaDetailRules.
var otherSGA = Rule{Row: 138, Section: models.SectionSGA, Deny: true, Include: re(`.`), Totals: sgaTotal.Direct}

// bsDraftRules propose the named balance-sheet rows. Order matters: the
// specific rules claim their records before the slot groups run.
var bsDraftRules = []Rule{
	{Row: 1, Section: models.SectionBS, Include: re(`現金`, `預金`), Exclude: re(totalPattern)},
	{Row: 2, Section: models.SectionBS, Memo: true, Include: re(`割引手形`, `手形割引`)},
	{Row: 3, Section: models.SectionBS, Include: re(`受取手形`), Exclude: re(totalPattern, `割引`, `裏書`)},
	{Row: 4, Section: models.SectionBS, Include: re(`売掛金`), Exclude: re(totalPattern)},
	{Row: 5, Section: models.SectionBS, Include: re(`^有価証券`), Exclude: re(totalPattern)},
	{Row: 7, Section: models.SectionBS, Include: re(`^商品$`)},
	{Row: 8, Section: models.SectionBS, Include: re(`^製品$`)},
	{Row: 9, Section: models.SectionBS, Include: re(`^仕掛品$`)},
	{Row: 10, Section: models.SectionBS, Include: re(`原材料`, `^材料$`)},
	{Row: 11, Section: models.SectionBS, Include: re(`貯蔵品`)},
	{Row: 20, Section: models.SectionBS, Category: "流動", Include: re(`貸倒引当金`)},
	{Row: 24, Section: models.SectionBS, Include: re(`^建物$`)},
	{Row: 25, Section: models.SectionBS, Include: re(`附属設備`, `付属設備`)},
	{Row: 26, Section: models.SectionBS, Include: re(`構築物`)},
	{Row: 27, Section: models.SectionBS, Include: re(`機械`)},
	{Row: 28, Section: models.SectionBS, Include: re(`車両`)},
	{Row: 29, Section: models.SectionBS, Include: re(`工具`, `器具`, `備品`)},
	{Row: 30, Section: models.SectionBS, Include: re(`^土地$`)},
	{Row: 31, Section: models.SectionBS, Include: re(`建設仮勘定`)},
	{Row: 33, Section: models.SectionBS, Include: re(`ソフトウ[ェエ]ア`, `のれん`, `電話加入権`, `借地権`, `特許権`, `商標権`, `無形`),
		Exclude: re(totalPattern)},
	{Row: 34, Section: models.SectionBS, Include: re(`投資有価証券`)},
	{Row: 35, Section: models.SectionBS, Include: re(`関係会社株式`, `子会社株式`)},
	{Row: 36, Section: models.SectionBS, Include: re(`出資金`)},
	{Row: 37, Section: models.SectionBS, Include: re(`保険積立金`, `投資不動産`, `その他投資`), Exclude: re(totalPattern)},
	{Row: 38, Section: models.SectionBS, Include: re(`長期貸付金`)},
	{Row: 39, Section: models.SectionBS, Include: re(`長期前払費用`)},
	{Row: 40, Section: models.SectionBS, Include: re(`貸倒引当金`)},
	{Row: 41, Section: models.SectionBS, Include: re(`保証金`, `敷金`)},
	{Row: 43, Section: models.SectionBS, Include: re(`繰延資産`, `創立費`, `開業費`, `開発費`, `株式交付費`, `社債発行費`),
		Exclude: re(totalPattern)},
	{Row: 46, Section: models.SectionBS, Include: re(`支払手形`)},
	{Row: 47, Section: models.SectionBS, Include: re(`買掛金`)},
	{Row: 53, Section: models.SectionBS, Include: re(`未払法人税`)},
	{Row: 54, Section: models.SectionBS, Include: re(`未払消費税`)},
	{Row: 55, Section: models.SectionBS, Include: re(`賞与引当金`)},
	{Row: 66, Section: models.SectionBS, Include: re(`^社債$`)},
	{Row: 67, Section: models.SectionBS, Category: "固定", Include: re(`長期借入金`), Exclude: re(`役員`)},
	{Row: 68, Section: models.SectionBS, Category: "固定", Include: re(`役員借入金`)},
	{Row: 69, Section: models.SectionBS, Include: re(`退職給付引当金`, `退職給与引当金`)},
	{Row: 70, Section: models.SectionBS, Category: "固定負債", Deny: true, Include: re(`.`)},
	{Row: 72, Section: models.SectionBS, Include: re(`^資本金$`)},
	{Row: 77, Section: models.SectionBS, Memo: true, Include: re(`繰越利益剰余金`)},
	{Row: 73, Section: models.SectionBS, Include: re(`剰余金`, `準備金`), Exclude: re(totalPattern)},
	{Row: 78, Section: models.SectionBS, Memo: true, Include: re(`裏書`)},
}

// slotGroup is a run of single-occupancy rows with its overflow row.
type slotGroup struct {
	rule     Rule
	slots    []int
	overflow int
}

// bsSlotGroups run after bsDraftRules, in this order.
var bsSlotGroups = []slotGroup{
	{rule: Rule{Section: models.SectionBS, Category: "流動資産", Deny: true, Include: re(`.`)},
		slots: currentAssetSlots, overflow: 21},
	{rule: Rule{Section: models.SectionBS, Category: "流動負債", Include: re(`借入`, `社債`), Exclude: re(totalPattern)},
		slots: borrowingSlots, overflow: 52},
	{rule: Rule{Section: models.SectionBS, Category: "流動負債", Deny: true, Include: re(`.`)},
		slots: currentLiabilitySlots, overflow: 63},
}

// plDraftRules propose the named profit-and-loss rows.
var plDraftRules = []Rule{
	{Row: 112, Section: models.SectionPL, Include: re(`^(純)?売上(高)?(合計)?$`)},
	{Row: 113, Section: models.SectionPL, Include: re(`期首.*棚卸`, `期首.*商品`)},
	{Row: 115, Section: models.SectionPL, Include: re(`製品製造原価`, `^製造原価$`)},
	{Row: 117, Section: models.SectionPL, Include: re(`期末.*棚卸`, `期末.*商品`)},
	{Row: 141, Section: models.SectionPL, Include: re(`受取利息`, `受取配当`, `有価証券利息`), Exclude: re(totalPattern)},
	{Row: 142, Section: models.SectionPL, Include: re(`雑収入`, `雑益`)},
	{Row: 143, Section: models.SectionPL, Category: "営業外収益", Include: rentalIncomePatterns},
	{Row: 144, Section: models.SectionPL, Category: "営業外収益", Deny: true, Include: re(`.`),
		Totals: nonOperatingIncome.Direct},
	{Row: 146, Section: models.SectionPL, Include: re(`支払利息`, `割引料`), Exclude: re(totalPattern)},
	{Row: 147, Section: models.SectionPL, Category: "営業外費用", Deny: true, Include: re(`.`),
		Totals: nonOperatingExpense.Direct},
	{Row: 150, Section: models.SectionPL, Category: "特別利益", Deny: true, Include: re(`.`)},
	{Row: 151, Section: models.SectionPL, Category: "特別損失", Deny: true, Include: re(`.`)},
	{Row: 153, Section: models.SectionPL, Include: taxPatterns, Exclude: taxExclude},
}

// keyword sets shared between the rule draft and the re-derivations
var (
	rentalIncomePatterns = re(`受取家賃`, `家賃収入`, `賃貸料`, `地代収入`, `不動産賃貸`)
	taxPatterns          = re(`法人.*税`, `税.*法人`)
	taxExclude           = re(totalPattern, `未払`, `還付`)
)
