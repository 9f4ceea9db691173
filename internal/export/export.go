// Package export renders parsed meter reads for people and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/milad/simplenem12/internal/domain"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (must be text, json, csv, or xlsx)", s)
	}
}

// Row is one (meter read, date) pair. A meter read with no intervals yields a
// single row with an empty Date.
type Row struct {
	NMI        string
	EnergyUnit string
	Date       string
	Volume     string
	Quality    string
}

// Rows flattens reads, keeping meter read order and sorting dates.
func Rows(reads []domain.MeterRead) []Row {
	var out []Row
	for _, mr := range reads {
		dates := mr.Dates()
		if len(dates) == 0 {
			out = append(out, Row{NMI: mr.NMI, EnergyUnit: mr.EnergyUnit.String()})
			continue
		}
		for _, d := range dates {
			v := mr.Volumes[d]
			out = append(out, Row{
				NMI:        mr.NMI,
				EnergyUnit: mr.EnergyUnit.String(),
				Date:       d.Format(domain.DateLayout),
				Volume:     v.Volume.String(),
				Quality:    v.Quality.String(),
			})
		}
	}
	return out
}

var header = []string{"nmi", "energy_unit", "date", "volume", "quality"}

// Write renders reads to w in format f.
func Write(w io.Writer, f Format, reads []domain.MeterRead) error {
	switch f {
	case FormatText:
		return writeText(w, reads)
	case FormatJSON:
		return writeJSON(w, reads)
	case FormatCSV:
		return writeCSV(w, reads)
	case FormatXLSX:
		return writeXLSX(w, reads)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func writeText(w io.Writer, reads []domain.MeterRead) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, mr := range reads {
		if i > 0 {
			if _, err := fmt.Fprintln(tw); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(tw, "NMI %s (%s)\tintervals: %d\ttotal: %s\n", mr.NMI, mr.EnergyUnit, len(mr.Volumes), mr.TotalVolume()); err != nil {
			return err
		}
		for _, d := range mr.Dates() {
			v := mr.Volumes[d]
			if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Format(domain.DateLayout), v.Volume, v.Quality); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(tw, "\n%d meter read(s)\n", len(reads)); err != nil {
		return err
	}
	return tw.Flush()
}

type intervalJSON struct {
	Date    string      `json:"date"`
	Volume  json.Number `json:"volume"`
	Quality string      `json:"quality"`
}

type meterReadJSON struct {
	NMI         string         `json:"nmi"`
	EnergyUnit  string         `json:"energyUnit"`
	TotalVolume json.Number    `json:"totalVolume"`
	Intervals   []intervalJSON `json:"intervals"`
}

func writeJSON(w io.Writer, reads []domain.MeterRead) error {
	out := make([]meterReadJSON, 0, len(reads))
	for _, mr := range reads {
		ivs := make([]intervalJSON, 0, len(mr.Volumes))
		for _, d := range mr.Dates() {
			v := mr.Volumes[d]
			ivs = append(ivs, intervalJSON{
				Date:    d.Format(domain.DateLayout),
				Volume:  json.Number(v.Volume.String()),
				Quality: v.Quality.String(),
			})
		}
		out = append(out, meterReadJSON{
			NMI:         mr.NMI,
			EnergyUnit:  mr.EnergyUnit.String(),
			TotalVolume: json.Number(mr.TotalVolume().String()),
			Intervals:   ivs,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSV(w io.Writer, reads []domain.MeterRead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range Rows(reads) {
		if err := cw.Write([]string{r.NMI, r.EnergyUnit, r.Date, r.Volume, r.Quality}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
