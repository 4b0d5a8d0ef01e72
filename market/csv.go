package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "2006-01", time.RFC3339}

// LoadWideCSV reads a wide file of the form
//
//	date,KES,NGN,...
//	2015-01-31,90.1,168.5,...
//
// Blank cells are forward-filled from the previous observation; leading
// blanks are dropped. Rows may arrive unsorted but duplicate dates are an
// error.
func LoadWideCSV(path string) (map[string]Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	out, err := ReadWideCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

type wideRow struct {
	date  time.Time
	cells []string
}

// ReadWideCSV is LoadWideCSV over an arbitrary reader.
func ReadWideCSV(r io.Reader) (map[string]Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("header must start with date and name at least one column, got %v", header)
	}
	keys := make([]string, len(header)-1)
	for i, h := range header[1:] {
		keys[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	var rows []wideRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		d, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, wideRow{date: d, cells: rec[1:]})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	for i := 1; i < len(rows); i++ {
		if rows[i].date.Equal(rows[i-1].date) {
			return nil, fmt.Errorf("duplicate date %s", rows[i].date.Format("2006-01-02"))
		}
	}

	out := make(map[string]Series, len(keys))
	for k, key := range keys {
		s := Series{Currency: key}
		have := false
		var prev float64
		for _, row := range rows {
			var cell string
			if k < len(row.cells) {
				cell = strings.TrimSpace(row.cells[k])
			}
			if cell != "" {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("%s on %s: bad value %q: %w", key, row.date.Format("2006-01-02"), cell, err)
				}
				prev, have = v, true
			}
			if !have {
				continue
			}
			s.Dates = append(s.Dates, row.date)
			s.Rates = append(s.Rates, prev)
		}
		if s.Len() == 0 {
			continue
		}
		out[key] = s
	}
	return out, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", raw)
}

// LoadHistory reads the FX file and, when ratesPath is non-empty, the rate
// file. Every FX series must pass Series.Validate; rates may be zero or
// negative. Rate columns are looked up through mapping (currency -> column key).
func LoadHistory(fxPath, ratesPath string, mapping map[string]string) (History, error) {
	fx, err := LoadWideCSV(fxPath)
	if err != nil {
		return History{}, err
	}
	for _, s := range fx {
		if err := s.Validate(); err != nil {
			return History{}, fmt.Errorf("%s: %w", fxPath, err)
		}
	}
	h := History{FX: fx, Rates: map[string]Series{}}
	if ratesPath == "" {
		return h, nil
	}

	cols, err := LoadWideCSV(ratesPath)
	if err != nil {
		return History{}, err
	}
	for ccy, key := range mapping {
		s, ok := cols[strings.ToUpper(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		s.Currency = ccy
		h.Rates[ccy] = s
	}
	return h, nil
}

// WriteWideCSV writes series in the LoadWideCSV layout. Currencies are
// written in the order given; dates are the union of all series.
func WriteWideCSV(w io.Writer, currencies []string, fx map[string]Series) error {
	seen := map[time.Time]bool{}
	var dates []time.Time
	byCcy := make(map[string]map[time.Time]float64, len(currencies))
	for _, c := range currencies {
		m := map[time.Time]float64{}
		s := fx[c]
		for i, d := range s.Dates {
			m[d] = s.Rates[i]
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
		byCcy[c] = m
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"date"}, currencies...)); err != nil {
		return err
	}
	for _, d := range dates {
		rec := []string{d.Format("2006-01-02")}
		for _, c := range currencies {
			v, ok := byCcy[c][d]
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
