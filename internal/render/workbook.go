package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/agridash/internal/analysis"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

const dataSheet = "Data"

// Workbook builds an XLSX export: the cleaned dataset on the first sheet
// (imputed cells highlighted) and one sheet per analysis result with its
// tables, notes and chart images.
func Workbook(ds *dataset.Dataset, results []analysis.Result, locale string, img Options) (*excelize.File, error) {
	if img.Width <= 0 || img.Height <= 0 {
		img = DefaultOptions()
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	imputed, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := writeData(f, ds, locale, bold, imputed); err != nil {
		f.Close()
		return nil, err
	}
	for _, res := range results {
		if err := writeResult(f, res, bold, img); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", res.Selection.Slug(), err)
		}
	}
	return f, nil
}

func writeData(f *excelize.File, ds *dataset.Dataset, locale string, bold, imputed int) error {
	keys := ds.Keys()
	header := []any{"year"}
	cols := make([]dataset.Column, len(keys))
	for i, k := range keys {
		cols[i], _ = ds.Column(k)
		h := cols[i].Title(locale)
		if cols[i].Unit != "" {
			h = fmt.Sprintf("%s (%s)", h, cols[i].Unit)
		}
		header = append(header, h)
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(dataSheet, "A1", end, bold); err != nil {
		return err
	}
	for r, year := range ds.Years() {
		row := []any{year}
		for _, c := range cols {
			row = append(row, c.Values[r])
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return err
		}
		for ci, c := range cols {
			if !c.Imputed[r] {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(ci+2, r+2)
			if err := f.SetCellStyle(dataSheet, cell, cell, imputed); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeResult(f *excelize.File, res analysis.Result, bold int, img Options) error {
	sheet := res.Selection.Slug()
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	row := 1
	set := func(col int, v any) error {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		return f.SetCellValue(sheet, cell, v)
	}
	if err := set(1, res.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	row += 2
	width := 1
	for _, t := range res.Tables {
		if err := set(1, t.Title); err != nil {
			return err
		}
		title, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStyle(sheet, title, title, bold); err != nil {
			return err
		}
		row++
		header := []any{t.Corner}
		for _, c := range t.Columns {
			header = append(header, c)
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &header); err != nil {
			return err
		}
		width = max(width, len(header))
		row++
		for _, r := range t.Rows {
			vals := []any{r.Label}
			for _, v := range r.Values {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					vals = append(vals, nil)
				} else {
					vals = append(vals, v)
				}
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
				return err
			}
			row++
		}
		row++
	}
	for _, n := range res.Notes {
		if err := set(1, n); err != nil {
			return err
		}
		row++
	}

	// charts go to the right of the widest table
	col := width + 2
	prow := 1
	for _, c := range res.Charts {
		var buf bytes.Buffer
		if err := Chart(&buf, c, PNG, img); err != nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(col, prow)
		if err := f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      buf.Bytes(),
			Format:    &excelize.GraphicOptions{AltText: c.Title, ScaleX: 0.5, ScaleY: 0.5},
		}); err != nil {
			return err
		}
		prow += img.Height/40 + 2
	}
	return nil
}
