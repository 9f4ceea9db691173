// Package nem12v1 is the nem12.v1.MeterReadService contract. Messages travel as
// protobuf well-known types (google.protobuf.Struct and BytesValue) and are
// converted to the typed structs below at each end.
package nem12v1

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Interval is one dated volume. Date is YYYY-MM-DD; Volume is a decimal string.
type Interval struct {
	Date    string
	Volume  string
	Quality string
}

type MeterRead struct {
	NMI         string
	EnergyUnit  string
	TotalVolume string
	Intervals   []Interval
}

// ListMeterReadsRequest filters by NMI and by interval date in [Start, End).
// Empty fields are unset.
type ListMeterReadsRequest struct {
	NMI       string
	Start     string
	End       string
	PageSize  int32
	PageToken string
}

type ListMeterReadsResponse struct {
	MeterReads    []MeterRead
	NextPageToken string
}

type ParseFileRequest struct {
	Content []byte
}

type ParseFileResponse struct {
	MeterReads []MeterRead
}

func (r *ListMeterReadsRequest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"nmi":        r.NMI,
		"start":      r.Start,
		"end":        r.End,
		"page_size":  r.PageSize,
		"page_token": r.PageToken,
	})
}

func listMeterReadsRequestFromStruct(s *structpb.Struct) (*ListMeterReadsRequest, error) {
	f := s.GetFields()
	size, err := numberField(f, "page_size")
	if err != nil {
		return nil, err
	}
	if size != float64(int32(size)) {
		return nil, fmt.Errorf("page_size: not an int32: %v", size)
	}
	out := &ListMeterReadsRequest{PageSize: int32(size)}
	for key, dst := range map[string]*string{
		"nmi":        &out.NMI,
		"start":      &out.Start,
		"end":        &out.End,
		"page_token": &out.PageToken,
	} {
		if *dst, err = stringField(f, key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *ListMeterReadsResponse) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"meter_reads":     meterReadsToList(r.MeterReads),
		"next_page_token": r.NextPageToken,
	})
}

func listMeterReadsResponseFromStruct(s *structpb.Struct) (*ListMeterReadsResponse, error) {
	reads, err := meterReadsFromStruct(s)
	if err != nil {
		return nil, err
	}
	token, err := stringField(s.GetFields(), "next_page_token")
	if err != nil {
		return nil, err
	}
	return &ListMeterReadsResponse{MeterReads: reads, NextPageToken: token}, nil
}

func (r *ParseFileResponse) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"meter_reads": meterReadsToList(r.MeterReads),
	})
}

func parseFileResponseFromStruct(s *structpb.Struct) (*ParseFileResponse, error) {
	reads, err := meterReadsFromStruct(s)
	if err != nil {
		return nil, err
	}
	return &ParseFileResponse{MeterReads: reads}, nil
}

func meterReadsToList(reads []MeterRead) []any {
	out := make([]any, 0, len(reads))
	for _, mr := range reads {
		intervals := make([]any, 0, len(mr.Intervals))
		for _, iv := range mr.Intervals {
			intervals = append(intervals, map[string]any{
				"date":    iv.Date,
				"volume":  iv.Volume,
				"quality": iv.Quality,
			})
		}
		out = append(out, map[string]any{
			"nmi":          mr.NMI,
			"energy_unit":  mr.EnergyUnit,
			"total_volume": mr.TotalVolume,
			"intervals":    intervals,
		})
	}
	return out
}

func meterReadsFromStruct(s *structpb.Struct) ([]MeterRead, error) {
	values, err := listField(s.GetFields(), "meter_reads")
	if err != nil {
		return nil, err
	}
	out := make([]MeterRead, 0, len(values))
	for i, v := range values {
		f := v.GetStructValue().GetFields()
		if f == nil {
			return nil, fmt.Errorf("meter_reads[%d]: not an object", i)
		}
		var mr MeterRead
		if mr.NMI, err = stringField(f, "nmi"); err != nil {
			return nil, fmt.Errorf("meter_reads[%d]: %w", i, err)
		}
		if mr.EnergyUnit, err = stringField(f, "energy_unit"); err != nil {
			return nil, fmt.Errorf("meter_reads[%d]: %w", i, err)
		}
		if mr.TotalVolume, err = stringField(f, "total_volume"); err != nil {
			return nil, fmt.Errorf("meter_reads[%d]: %w", i, err)
		}
		ivs, err := listField(f, "intervals")
		if err != nil {
			return nil, fmt.Errorf("meter_reads[%d]: %w", i, err)
		}
		mr.Intervals = make([]Interval, 0, len(ivs))
		for j, iv := range ivs {
			ivf := iv.GetStructValue().GetFields()
			if ivf == nil {
				return nil, fmt.Errorf("meter_reads[%d].intervals[%d]: not an object", i, j)
			}
			var out Interval
			for key, dst := range map[string]*string{"date": &out.Date, "volume": &out.Volume, "quality": &out.Quality} {
				if *dst, err = stringField(ivf, key); err != nil {
					return nil, fmt.Errorf("meter_reads[%d].intervals[%d]: %w", i, j, err)
				}
			}
			mr.Intervals = append(mr.Intervals, out)
		}
		out = append(out, mr)
	}
	return out, nil
}

// Missing fields decode to zero values; present fields must have the right kind.

func stringField(f map[string]*structpb.Value, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: want string", key)
	}
	return sv.StringValue, nil
}

func numberField(f map[string]*structpb.Value, key string) (float64, error) {
	v, ok := f[key]
	if !ok {
		return 0, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s: want number", key)
	}
	return nv.NumberValue, nil
}

func listField(f map[string]*structpb.Value, key string) ([]*structpb.Value, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%s: want list", key)
	}
	return lv.ListValue.GetValues(), nil
}
