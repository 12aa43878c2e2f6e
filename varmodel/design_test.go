package varmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqPanel builds a k-variable panel where variable v at time t holds
// 100*v + t, so any misalignment in the design matrices is visible.
func seqPanel(t *testing.T, length, k int) *Panel {
	t.Helper()
	rows := make([][]float64, length)
	for i := range rows {
		rows[i] = make([]float64, k)
		for v := 0; v < k; v++ {
			rows[i][v] = float64(100*v + i)
		}
	}
	p, err := NewPanel(rows, nil)
	require.NoError(t, err)
	return p
}

func TestBuildDesignShapes(t *testing.T) {
	tests := []struct {
		name    string
		T, k, p int
	}{
		{name: "two variables one lag", T: 20, k: 2, p: 1},
		{name: "two variables three lags", T: 30, k: 2, p: 3},
		{name: "three variables two lags", T: 40, k: 3, p: 2},
		{name: "single variable", T: 10, k: 1, p: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := seqPanel(t, tt.T, tt.k)
			x, y, err := BuildDesign(panel, tt.p)
			require.NoError(t, err)

			xr, xc := x.Dims()
			yr, yc := y.Dims()
			assert.Equal(t, tt.T-tt.p, xr)
			assert.Equal(t, 1+tt.k*tt.p, xc)
			assert.Equal(t, tt.T-tt.p, yr)
			assert.Equal(t, tt.k, yc)
		})
	}
}

func TestBuildDesignAlignment(t *testing.T) {
	panel := seqPanel(t, 25, 2)
	p := 3
	x, y, err := BuildDesign(panel, p)
	require.NoError(t, err)

	n, _ := x.Dims()
	for i := 0; i < n; i++ {
		// Row i targets absolute time i+p.
		for v := 0; v < 2; v++ {
			assert.Equal(t, panel.At(i+p, v), y.At(i, v))
		}
		// Intercept column, then lag blocks most recent first.
		assert.Equal(t, 1.0, x.At(i, 0))
		for j := 1; j <= p; j++ {
			for v := 0; v < 2; v++ {
				assert.Equal(t, panel.At(i+p-j, v), x.At(i, 1+(j-1)*2+v),
					"row %d lag %d var %d", i, j, v)
			}
		}
	}
}

func TestBuildDesignInsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		T, k, p int
	}{
		{name: "no rows left", T: 3, k: 2, p: 3},
		{name: "underdetermined", T: 7, k: 2, p: 3}, // T-p = 4 <= 1+k*p = 7
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := seqPanel(t, tt.T, tt.k)
			_, _, err := BuildDesign(panel, tt.p)
			var ide *InsufficientDataError
			require.ErrorAs(t, err, &ide)
			assert.Equal(t, tt.T, ide.T)
			assert.Equal(t, tt.k, ide.K)
			assert.Equal(t, tt.p, ide.P)
		})
	}

	// Boundary: n == 1+k*p rows is still underdetermined.
	panel := seqPanel(t, 8, 2)
	_, _, err := BuildDesign(panel, 3) // n = 5, cols = 7
	var ide *InsufficientDataError
	assert.ErrorAs(t, err, &ide)
}

func TestBuildDesignRejectsNonPositiveLag(t *testing.T) {
	panel := seqPanel(t, 20, 2)
	_, _, err := BuildDesign(panel, 0)
	assert.Error(t, err)
}

func TestNewPanelValidation(t *testing.T) {
	_, err := NewPanel(nil, nil)
	assert.Error(t, err)

	_, err = NewPanel([][]float64{{1, 2}, {3}}, nil)
	var dme *DimensionMismatchError
	require.ErrorAs(t, err, &dme)
	assert.Equal(t, 2, dme.Want)
	assert.Equal(t, 1, dme.Got)

	_, err = NewPanel([][]float64{{1, 2}}, []string{"only one"})
	assert.ErrorAs(t, err, &dme)

	p, err := NewPanel([][]float64{{1, 2}, {3, 4}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"var1", "var2"}, p.Names())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 2, p.Width())

	idx, ok := p.VarIndex("var2")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = p.VarIndex("nope")
	assert.False(t, ok)
}
