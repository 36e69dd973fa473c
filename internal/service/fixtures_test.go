package service

import (
	"cash-ai/internal/models"
	"cash-ai/internal/utils"
)

var testLogger = utils.DiscardLogger()

// current builds a record holding an amount in the current period only.
func current(name, category string, amount int64) models.AccountRecord {
	return models.AccountRecord{Name: name, Category: category, Amounts: models.Periods{Current: amount}}
}

func periods(prev2, prev1, cur int64) models.Periods {
	return models.Periods{Prev2: prev2, Prev1: prev1, Current: cur}
}

func ledgerOf(sections map[models.Section][]models.AccountRecord) *Ledger {
	return NewLedger(sections)
}

// input builds a request line item with raw amounts.
func input(name, category string, prev2, prev1, cur interface{}) models.AccountInput {
	return models.AccountInput{
		Name:     name,
		Category: category,
		Prev2:    models.AmountField{Raw: prev2},
		Prev1:    models.AmountField{Raw: prev1},
		Current:  models.AmountField{Raw: cur},
	}
}

// sampleRequest is a small but complete manufacturing company.
func sampleRequest() *models.PipelineRequest {
	return &models.PipelineRequest{
		BS: []models.AccountInput{
			input("現金及び預金", "流動資産", 800, 900, 1000),
			input("売掛金", "流動資産", 300, 350, 400),
			input("商品", "流動資産", 50, 60, 70),
			input("前払費用", "流動資産", 10, 20, 30),
			input("未収入金", "流動資産", 5, 5, 5),
			input("流動資産合計", "流動資産", 1165, 1335, 1505),
			input("建物", "有形固定資産", 500, 480, 460),
			input("土地", "有形固定資産", 1000, 1000, 1000),
			input("投資有価証券", "投資その他の資産", 100, 100, 100),
			input("買掛金", "流動負債", 200, 220, 240),
			input("短期借入金", "流動負債", 300, 300, 300),
			input("未払金", "流動負債", 40, 50, 60),
			input("預り金", "流動負債", 10, 10, 10),
			input("長期借入金", "固定負債", 600, 550, 500),
			input("資本金", "純資産", 1000, 1000, 1000),
			input("繰越利益剰余金", "純資産", 615, 745, 965),
		},
		PL: []models.AccountInput{
			input("売上高", "売上高", 5000, 5500, "6,000"),
			input("期首商品棚卸高", "売上原価", 40, 50, 60),
			input("当期商品仕入高", "売上原価", 1000, 1100, 1200),
			input("当期製品製造原価", "売上原価", 1500, 1600, 1700),
			input("期末商品棚卸高", "売上原価", 50, 60, 70),
			input("受取利息", "営業外収益", 5, 5, 5),
			input("受取家賃", "営業外収益", 12, 12, 12),
			input("支払利息", "営業外費用", 20, 18, 16),
			input("雑損失", "営業外費用", 3, 4, 5),
			input("法人税、住民税及び事業税", "法人税等", 100, 120, 140),
		},
		SGA: []models.AccountInput{
			input("役員報酬", "販売費及び一般管理費", 600, 600, 600),
			input("給料手当", "販売費及び一般管理費", 800, 850, 900),
			input("法定福利費", "販売費及び一般管理費", 100, "△500", 120),
			input("減価償却費", "販売費及び一般管理費", 40, 40, 40),
			input("地代家賃", "販売費及び一般管理費", 120, 120, 120),
			input("雑費", "販売費及び一般管理費", 7, 8, 9),
		},
		MFG: []models.AccountInput{
			input("材料棚卸高", "材料費", 90, 95, 100),
			input("材料仕入高", "材料費", 40, 45, 50),
			input("期末材料棚卸高", "材料費", 20, 25, 30),
			input("賃金", "労務費", 300, 310, 320),
			input("賞与", "労務費", 50, 50, 50),
			input("減価償却費", "経費", 60, 60, 60),
			input("外注加工費", "経費", 70, 75, 80),
			input("電力料", "経費", 30, 32, 34),
			input("修繕費", "経費", 10, 11, 12),
			input("期首仕掛品棚卸高", "", 15, 16, 17),
			input("期末仕掛品棚卸高", "", 16, 17, 18),
		},
		RequestMeta: models.RequestMeta{CaseID: "case-1", PostingPeriod: "2024", CSVDownloadName: "report.csv"},
	}
}
