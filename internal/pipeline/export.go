package pipeline

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"inkmeta/internal"
)

var exportHeaders = []string{"id", "archetype", "quantity", "image_src", "set_code", "card_number"}

func ExportUsageToXLSX(rows []internal.UsageRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "key_cards"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return eris.Wrap(err, "export: rename sheet")
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.ID)
		set(2, row.Archetype)
		set(3, row.Quantity)
		set(4, row.ImageSrc)
		set(5, row.SetCode)
		// card numbers are identifiers; keep leading zeros
		cell, _ := excelize.CoordinatesToCellName(6, r)
		_ = f.SetCellStr(sheet, cell, row.CardNumber)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}
	return eris.Wrapf(f.SaveAs(outputPath), "export: save %s", outputPath)
}
