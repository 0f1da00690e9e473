package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/gillespie/internal/ssa"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Keys   []int       `json:"keys"`
	Dts    []float64   `json:"dts"`
	Times  []float64   `json:"times"`
	Counts []int       `json:"counts"`
}

func NewExportData(meta RunMetadata, events []ssa.Event, times []float64) ExportData {
	data := ExportData{
		Run:    meta,
		Keys:   make([]int, len(events)),
		Dts:    make([]float64, len(events)),
		Times:  times,
		Counts: make([]int, len(meta.Events)),
	}
	for i, ev := range events {
		data.Keys[i] = ev.Key
		data.Dts[i] = ev.Dt
	}
	for k, e := range meta.Events {
		data.Counts[k] = e.Count
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the per-key summary: name, rate, expected share, count and
// observed share.
func ExportCSV(w io.Writer, meta RunMetadata) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"key", "name", "rate", "expected", "count", "observed"}); err != nil {
		return err
	}

	total := 0
	for _, e := range meta.Events {
		total += e.Count
	}

	for k, e := range meta.Events {
		observed := 0.0
		if total > 0 {
			observed = float64(e.Count) / float64(total)
		}
		row := []string{
			strconv.Itoa(k),
			e.Name,
			strconv.FormatFloat(e.Rate, 'g', -1, 64),
			strconv.FormatFloat(e.Expected, 'f', 6, 64),
			strconv.Itoa(e.Count),
			strconv.FormatFloat(observed, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
