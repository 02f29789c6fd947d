// Package export renders outlooks and forecasts for people: spreadsheets
// and plain-text tables.
package export

import (
	"fmt"
	"io"

	"forecast-go/internal/service"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	OutlookSheet  = "Outlook"
	ProblemsSheet = "Problems"
	AdviceSheet   = "Advice"
)

// round2 keeps spreadsheet values to two decimals.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// OutlookHeaders returns the column titles of the Outlook sheet.
func OutlookHeaders(years int) []string {
	return []string{
		"Indicator", "File", "Column", "Regime", "Current",
		fmt.Sprintf("Forecast +%dy", years), "Target", "Gap", "Degraded",
	}
}

// WriteOutlookXLSX writes the outlook as a workbook with one row per
// indicator and a sheet listing skipped indicators.
func WriteOutlookXLSX(w io.Writer, o *service.Outlook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OutlookSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ProblemsSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	headers := OutlookHeaders(o.Years)
	if err := writeRow(f, OutlookSheet, 1, toCells(headers)); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(OutlookSheet, "A1", last+"1", headerStyle)
	f.SetColWidth(OutlookSheet, "A", last, 16)

	for i, e := range o.Entries {
		degraded := ""
		if e.Degraded {
			degraded = "yes"
		}
		row := []interface{}{
			e.Name, e.File, e.Column, e.Regime,
			round2(e.Current), round2(e.Forecast), round2(e.Target), round2(e.Gap()),
			degraded,
		}
		if err := writeRow(f, OutlookSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, ProblemsSheet, 1, []interface{}{"Problem"}); err != nil {
		return err
	}
	f.SetCellStyle(ProblemsSheet, "A1", "A1", headerStyle)
	f.SetColWidth(ProblemsSheet, "A", "A", 80)
	for i, p := range o.Problems {
		if err := writeRow(f, ProblemsSheet, i+2, []interface{}{p}); err != nil {
			return err
		}
	}

	if o.Advice != "" {
		if _, err := f.NewSheet(AdviceSheet); err != nil {
			return err
		}
		f.SetColWidth(AdviceSheet, "A", "A", 120)
		if err := f.SetCellValue(AdviceSheet, "A1", o.Advice); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
