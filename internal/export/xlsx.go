package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/milad/simplenem12/internal/domain"
)

const (
	sheetIntervals = "Intervals"
	sheetTotals    = "Totals"
)

// writeXLSX writes one sheet of interval rows and one sheet of per-meter totals.
// Volumes are stored as numbers, so spreadsheet precision applies.
func writeXLSX(w io.Writer, reads []domain.MeterRead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetIntervals); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, sheetIntervals, 1, toAny(header)); err != nil {
		return err
	}
	row := 2
	for _, mr := range reads {
		dates := mr.Dates()
		if len(dates) == 0 {
			if err := setRow(f, sheetIntervals, row, []any{mr.NMI, mr.EnergyUnit.String()}); err != nil {
				return err
			}
			row++
			continue
		}
		for _, d := range dates {
			v := mr.Volumes[d]
			values := []any{mr.NMI, mr.EnergyUnit.String(), d.Format(domain.DateLayout), v.Volume.InexactFloat64(), v.Quality.String()}
			if err := setRow(f, sheetIntervals, row, values); err != nil {
				return err
			}
			row++
		}
	}

	if _, err := f.NewSheet(sheetTotals); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := setRow(f, sheetTotals, 1, []any{"nmi", "energy_unit", "intervals", "start_date", "end_date", "total_volume"}); err != nil {
		return err
	}
	for i, mr := range reads {
		var start, end string
		if d, ok := mr.StartDate(); ok {
			start = d.Format(domain.DateLayout)
		}
		if d, ok := mr.EndDate(); ok {
			end = d.Format(domain.DateLayout)
		}
		row := []any{mr.NMI, mr.EnergyUnit.String(), len(mr.Volumes), start, end, mr.TotalVolume().InexactFloat64()}
		if err := setRow(f, sheetTotals, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
