package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cash-ai/internal/models"
	"cash-ai/internal/service"
)

// sample is a small manufacturing company with three fiscal periods.
var sample = map[models.Section][][]interface{}{
	models.SectionBS: {
		{"現金及び預金", "流動資産", 800, 900, 1000},
		{"売掛金", "流動資産", 300, 350, 400},
		{"商品", "流動資産", 50, 60, 70},
		{"前払費用", "流動資産", 10, 20, 30},
		{"未収入金", "流動資産", 5, 5, 5},
		{"流動資産合計", "流動資産", 1165, 1335, 1505},
		{"建物", "有形固定資産", 500, 480, 460},
		{"土地", "有形固定資産", 1000, 1000, 1000},
		{"投資有価証券", "投資その他の資産", 100, 100, 100},
		{"買掛金", "流動負債", 200, 220, 240},
		{"短期借入金", "流動負債", 300, 300, 300},
		{"未払金", "流動負債", 40, 50, 60},
		{"預り金", "流動負債", 10, 10, 10},
		{"長期借入金", "固定負債", 600, 550, 500},
		{"資本金", "純資産", 1000, 1000, 1000},
		{"繰越利益剰余金", "純資産", 615, 745, 965},
	},
	models.SectionPL: {
		{"売上高", "売上高", 5000, 5500, "6,000"},
		{"期首商品棚卸高", "売上原価", 40, 50, 60},
		{"当期商品仕入高", "売上原価", 1000, 1100, 1200},
		{"当期製品製造原価", "売上原価", 1500, 1600, 1700},
		{"期末商品棚卸高", "売上原価", 50, 60, 70},
		{"受取利息", "営業外収益", 5, 5, 5},
		{"受取家賃", "営業外収益", 12, 12, 12},
		{"支払利息", "営業外費用", 20, 18, 16},
		{"雑損失", "営業外費用", 3, 4, 5},
		{"法人税、住民税及び事業税", "法人税等", 100, 120, 140},
	},
	models.SectionSGA: {
		{"役員報酬", "販売費及び一般管理費", 600, 600, 600},
		{"給料手当", "販売費及び一般管理費", 800, 850, 900},
		{"法定福利費", "販売費及び一般管理費", 100, "△500", 120},
		{"減価償却費", "販売費及び一般管理費", 40, 40, 40},
		{"地代家賃", "販売費及び一般管理費", 120, 120, 120},
		{"雑費", "販売費及び一般管理費", 7, 8, 9},
	},
	models.SectionMFG: {
		{"材料棚卸高", "材料費", 90, 95, 100},
		{"材料仕入高", "材料費", 40, 45, 50},
		{"期末材料棚卸高", "材料費", 20, 25, 30},
		{"賃金", "労務費", 300, 310, 320},
		{"賞与", "労務費", 50, 50, 50},
		{"減価償却費", "経費", 60, 60, 60},
		{"外注加工費", "経費", 70, 75, 80},
		{"電力料", "経費", 30, 32, 34},
		{"修繕費", "経費", 10, 11, 12},
		{"期首仕掛品棚卸高", "", 15, 16, 17},
		{"期末仕掛品棚卸高", "", 16, 17, 18},
	},
}

func main() {
	outputPath := flag.String("out", filepath.Join("storage", "uploads", "sample_financials.xlsx"), "output workbook path")
	flag.Parse()

	writer := service.NewArtifactWriter(filepath.Dir(*outputPath))
	err := writer.WriteFile(filepath.Base(*outputPath), func(w io.Writer) error {
		return service.NewExcelService().GenerateInputTemplate(sample, w)
	})
	if err != nil {
		fmt.Printf("Error saving file: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, rows := range sample {
		total += len(rows)
	}
	fmt.Printf("✓ Sample workbook created: %s\n", *outputPath)
	fmt.Printf("  Total rows: %d across %d sheets\n", total, len(sample))
}
