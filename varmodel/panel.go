package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Panel is a chronologically ordered sequence of vector observations with a
// fixed dimension k. The engine never mutates a Panel after construction;
// every accessor that exposes data returns a copy.
type Panel struct {
	y     *mat.Dense // T x k
	names []string
}

// NewPanel builds a Panel from row-major observations. Every row must have
// the same width. When names is nil, variables are named var1..varK; when
// given, it must have one entry per variable.
func NewPanel(rows [][]float64, names []string) (*Panel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("panel has no observations")
	}
	k := len(rows[0])
	if k == 0 {
		return nil, fmt.Errorf("panel observations are empty")
	}
	data := make([]float64, 0, len(rows)*k)
	for t, row := range rows {
		if len(row) != k {
			return nil, &DimensionMismatchError{What: fmt.Sprintf("observation %d", t), Want: k, Got: len(row)}
		}
		data = append(data, row...)
	}
	return newPanel(mat.NewDense(len(rows), k, data), names)
}

// NewPanelFromMatrix builds a Panel from a T x k matrix. The matrix is
// copied, so later changes to y do not leak into the Panel.
func NewPanelFromMatrix(y *mat.Dense, names []string) (*Panel, error) {
	if y == nil {
		return nil, fmt.Errorf("panel matrix is nil")
	}
	return newPanel(mat.DenseCopyOf(y), names)
}

func newPanel(y *mat.Dense, names []string) (*Panel, error) {
	_, k := y.Dims()
	if names == nil {
		names = make([]string, k)
		for j := range names {
			names[j] = fmt.Sprintf("var%d", j+1)
		}
	}
	if len(names) != k {
		return nil, &DimensionMismatchError{What: "variable names", Want: k, Got: len(names)}
	}
	cp := make([]string, k)
	copy(cp, names)
	return &Panel{y: y, names: cp}, nil
}

// Len returns T, the number of observations.
func (p *Panel) Len() int {
	t, _ := p.y.Dims()
	return t
}

// Width returns k, the number of variables per observation.
func (p *Panel) Width() int {
	_, k := p.y.Dims()
	return k
}

// Names returns the variable names in column order.
func (p *Panel) Names() []string {
	cp := make([]string, len(p.names))
	copy(cp, p.names)
	return cp
}

// At returns the value of variable j at time t.
func (p *Panel) At(t, j int) float64 { return p.y.At(t, j) }

// Row returns a copy of the observation at time t.
func (p *Panel) Row(t int) []float64 {
	k := p.Width()
	row := make([]float64, k)
	for j := 0; j < k; j++ {
		row[j] = p.y.At(t, j)
	}
	return row
}

// Tail returns a copy of the last n observations, oldest first.
func (p *Panel) Tail(n int) *mat.Dense {
	t, k := p.y.Dims()
	if n > t {
		n = t
	}
	return mat.DenseCopyOf(p.y.Slice(t-n, t, 0, k))
}

// VarIndex resolves a variable name to its column index.
func (p *Panel) VarIndex(name string) (int, bool) {
	for j, n := range p.names {
		if n == name {
			return j, true
		}
	}
	return 0, false
}
