// Package dataprep turns raw economic CSV data into a modeling panel:
// loading, derived-column transforms (period-over-period growth, rate
// spreads) and descriptive statistics.
package dataprep

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"varcast/varmodel"
)

// Frame holds raw columns by name. Cells that could not be parsed as
// numbers are NaN; Prepare trims them.
type Frame struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// Names returns the column names in file order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Rows returns the number of data rows.
func (f *Frame) Rows() int { return f.rows }

// Column returns the named column, or an error when it does not exist.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("dataprep: no column %q", name)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// LoadCSV reads a header-plus-rows CSV file into a Frame. Non-numeric
// cells (dates, labels, blanks) parse to NaN rather than failing the load.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataprep: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV is LoadCSV for an already open reader.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataprep: read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("dataprep: empty header")
	}

	frame := &Frame{
		names: append([]string(nil), header...),
		cols:  make(map[string][]float64, len(header)),
	}
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataprep: read row %d: %w", row+2, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("dataprep: row %d: expected %d columns, got %d",
				row+2, len(header), len(record))
		}
		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				v = math.NaN()
			}
			frame.cols[header[j]] = append(frame.cols[header[j]], v)
		}
		row++
	}
	if row == 0 {
		return nil, fmt.Errorf("dataprep: no data rows")
	}
	frame.rows = row
	return frame, nil
}

// PercentChange returns the period-over-period growth rate in percent.
// The first element is NaN; a zero previous value also yields NaN.
func PercentChange(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(out) > 0 {
		out[0] = math.NaN()
	}
	for t := 1; t < len(series); t++ {
		prev := series[t-1]
		if prev == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = (series[t] - prev) / prev * 100
	}
	return out
}

// Spread returns the elementwise difference a - b.
func Spread(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, &varmodel.DimensionMismatchError{What: "spread series", Want: len(a), Got: len(b)}
	}
	out := make([]float64, len(a))
	floats.SubTo(out, a, b)
	return out, nil
}

// Transform names a derived-column operation.
type Transform int

const (
	// Raw copies the source column unchanged.
	Raw Transform = iota
	// PctChange applies PercentChange to the source column.
	PctChange
	// SpreadOf subtracts the second source from the first.
	SpreadOf
)

// ColumnSpec derives one panel variable from raw columns.
type ColumnSpec struct {
	Name      string
	Transform Transform
	Source    string
	// Source2 is the subtrahend for SpreadOf and unused otherwise.
	Source2 string
}

// Prepare builds the derived columns, drops every row where any variable
// is NaN (leading rows of growth series, unparsable cells), and returns
// the panel ready for estimation.
func Prepare(frame *Frame, specs []ColumnSpec) (*varmodel.Panel, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("dataprep: no columns specified")
	}

	cols := make([][]float64, len(specs))
	names := make([]string, len(specs))
	for i, spec := range specs {
		src, err := frame.Column(spec.Source)
		if err != nil {
			return nil, err
		}
		switch spec.Transform {
		case Raw:
			cols[i] = src
		case PctChange:
			cols[i] = PercentChange(src)
		case SpreadOf:
			sub, err := frame.Column(spec.Source2)
			if err != nil {
				return nil, err
			}
			cols[i], err = Spread(src, sub)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("dataprep: unknown transform %d for %q", spec.Transform, spec.Name)
		}
		names[i] = spec.Name
	}

	var rows [][]float64
	for t := 0; t < frame.rows; t++ {
		row := make([]float64, len(cols))
		keep := true
		for i, col := range cols {
			if math.IsNaN(col[t]) {
				keep = false
				break
			}
			row[i] = col[t]
		}
		if keep {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataprep: every row dropped as incomplete")
	}
	return varmodel.NewPanel(rows, names)
}

// AutoSpecs returns a Raw spec for every fully numeric column, in file
// order. Columns with any unparsable cell (date indexes, labels) are
// skipped.
func AutoSpecs(frame *Frame) []ColumnSpec {
	var out []ColumnSpec
	for _, name := range frame.names {
		numeric := true
		for _, v := range frame.cols[name] {
			if math.IsNaN(v) {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, ColumnSpec{Name: name, Transform: Raw, Source: name})
		}
	}
	return out
}

// Summary holds descriptive statistics for one panel variable.
type Summary struct {
	Name string
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Describe computes per-variable descriptive statistics.
func Describe(panel *varmodel.Panel) []Summary {
	names := panel.Names()
	out := make([]Summary, panel.Width())
	col := make([]float64, panel.Len())
	for v := 0; v < panel.Width(); v++ {
		for t := 0; t < panel.Len(); t++ {
			col[t] = panel.At(t, v)
		}
		out[v] = Summary{
			Name: names[v],
			Mean: stat.Mean(col, nil),
			Std:  stat.StdDev(col, nil),
			Min:  floats.Min(col),
			Max:  floats.Max(col),
		}
	}
	return out
}
