package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
)

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

type listMeterReadsResponseJSON struct {
	MeterReads    []meterReadJSON `json:"meterReads"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

type parseResponseJSON struct {
	MeterReads []meterReadJSON `json:"meterReads"`
}

type apiErrorJSON struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Line      int    `json:"line,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// toMeterReadsJSON rejects volumes that are not decimal literals so a bad
// upstream cannot produce invalid JSON.
func toMeterReadsJSON(reads []nem12v1.MeterRead) ([]meterReadJSON, error) {
	out := make([]meterReadJSON, 0, len(reads))
	for _, mr := range reads {
		total, err := decimalNumber(mr.TotalVolume)
		if err != nil {
			return nil, fmt.Errorf("meter read %s: total volume: %w", mr.NMI, err)
		}
		ivs := make([]intervalJSON, 0, len(mr.Intervals))
		for _, iv := range mr.Intervals {
			vol, err := decimalNumber(iv.Volume)
			if err != nil {
				return nil, fmt.Errorf("meter read %s on %s: volume: %w", mr.NMI, iv.Date, err)
			}
			ivs = append(ivs, intervalJSON{Date: iv.Date, Volume: vol, Quality: iv.Quality})
		}
		out = append(out, meterReadJSON{
			NMI:         mr.NMI,
			EnergyUnit:  mr.EnergyUnit,
			TotalVolume: total,
			Intervals:   ivs,
		})
	}
	return out, nil
}

func decimalNumber(v string) (json.Number, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return "", err
	}
	return json.Number(d.String()), nil
}
