package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

const (
	sheetReturns = "Returns"
	sheetHeatmap = "Heatmap"
	sheetSummary = "Summary"
)

// WriteXLSX saves a workbook with the period × instrument table, its
// instrument × period transpose shaded red to green, and the summary.
func WriteXLSX(path string, r *Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetReturns); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetHeatmap, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, *Report) error{writeReturns, writeHeatmap, writeSummary}
	for _, step := range steps {
		if err := step(f, r); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if fv, ok := v.(float64); ok {
		if math.IsNaN(fv) || math.IsInf(fv, 0) {
			return nil
		}
		v = roundPercent(fv)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func writeReturns(f *excelize.File, r *Report) error {
	t := r.Table
	if err := setCell(f, sheetReturns, 1, 1, "Period"); err != nil {
		return err
	}
	for j, id := range t.Instruments {
		if err := setCell(f, sheetReturns, j+2, 1, id); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		if err := setCell(f, sheetReturns, 1, i+2, row.Label()); err != nil {
			return err
		}
		for j, id := range t.Instruments {
			if err := setCell(f, sheetReturns, j+2, i+2, row.Value(id)); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheetReturns, "A", "A", 26)
}

func writeHeatmap(f *excelize.File, r *Report) error {
	t := r.Table
	if err := setCell(f, sheetHeatmap, 1, 1, "Instrument"); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setCell(f, sheetHeatmap, i+2, 1, row.Label()); err != nil {
			return err
		}
	}
	for j, id := range t.Instruments {
		if err := setCell(f, sheetHeatmap, 1, j+2, id); err != nil {
			return err
		}
		for i, row := range t.Rows {
			if err := setCell(f, sheetHeatmap, i+2, j+2, row.Value(id)); err != nil {
				return err
			}
		}
	}
	if t.Empty() {
		return nil
	}

	topLeft, _ := excelize.CoordinatesToCellName(2, 2)
	bottomRight, err := excelize.CoordinatesToCellName(len(t.Rows)+1, len(t.Instruments)+1)
	if err != nil {
		return err
	}
	return f.SetConditionalFormat(sheetHeatmap, topLeft+":"+bottomRight, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "min",
		MidType:  "num",
		MidValue: "0",
		MaxType:  "max",
		MinColor: "#F8696B",
		MidColor: "#FFEB84",
		MaxColor: "#63BE7B",
	}})
}

func writeSummary(f *excelize.File, r *Report) error {
	header := []string{"Instrument", "Periods", "Mean", "StdDev", "Min", "Max", "Positive rate"}
	for j, h := range header {
		if err := setCell(f, sheetSummary, j+1, 1, h); err != nil {
			return err
		}
	}
	for i, s := range r.Summary {
		vals := []any{s.Instrument, s.Periods, s.Mean, s.StdDev, s.Min, s.Max, s.PositiveRate}
		for j, v := range vals {
			if err := setCell(f, sheetSummary, j+1, i+2, v); err != nil {
				return err
			}
		}
	}
	return nil
}
