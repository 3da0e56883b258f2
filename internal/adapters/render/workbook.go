package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/fightelo/internal/domain/reporting"
)

// RankingsHeader is the header row of an exported rankings sheet.
var RankingsHeader = []string{"Rank", "Competitor", "Category", "Rating", "Fights"}

const maxSheetName = 31

// RankingsXLSX writes a ranking table to a single-sheet workbook named
// after the category.
func RankingsXLSX(category string, rows []reporting.Ranking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(category)
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(RankingsHeader))
	for i, h := range RankingsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.Rank, r.Competitor, r.Category, r.Rating, r.Fights}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "D2", fmt.Sprintf("D%d", len(rows)+1), twoDecimals); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "B", "C", 32); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetName makes a category label usable as a worksheet name.
func SheetName(category string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(category))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Rankings"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
