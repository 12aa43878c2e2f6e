package varmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ForecastOptions configures a forecast run.
type ForecastOptions struct {
	// Confidence in (0, 1) requests per-step Gaussian bands at that level;
	// zero disables bands.
	Confidence float64
}

// ForecastPath is an h-step forecast: point values and, when requested,
// per-variable confidence bounds at each step.
type ForecastPath struct {
	Values     *mat.Dense // h x k
	Lower      *mat.Dense // nil without bands
	Upper      *mat.Dense // nil without bands
	Confidence float64
	Names      []string
}

// Steps returns the forecast horizon.
func (f *ForecastPath) Steps() int {
	h, _ := f.Values.Dims()
	return h
}

// Forecast projects the model h steps past the end of its fitting panel.
// The recursion is "plug-in": each step feeds the previous step's forecast
// back in as if observed, so errors compound with horizon. Confidence
// bands come from the moving-average expansion: the forecast-error
// covariance at step h is the running sum of Phi_j * Sigma * Phi_j^T for
// j < h, and each variable's bound is the point value +/- z*sqrt of the
// corresponding diagonal entry.
func (m *Model) Forecast(h int, opts ForecastOptions) (*ForecastPath, error) {
	return m.forecastWindow(m.tail, h, opts, nil)
}

// ForecastFrom is Forecast starting from a caller-supplied history instead
// of the fitting panel's tail. Only the last p rows are used.
func (m *Model) ForecastFrom(history *mat.Dense, h int, opts ForecastOptions) (*ForecastPath, error) {
	window, err := m.windowOf(history)
	if err != nil {
		return nil, err
	}
	return m.forecastWindow(window, h, opts, nil)
}

// windowOf validates a history against the model and copies its last p rows.
func (m *Model) windowOf(history *mat.Dense) (*mat.Dense, error) {
	if history == nil {
		return nil, fmt.Errorf("history is nil")
	}
	rows, cols := history.Dims()
	if cols != m.k {
		return nil, &DimensionMismatchError{What: "history", Want: m.k, Got: cols}
	}
	if rows < m.p {
		return nil, &InsufficientDataError{T: rows, K: m.k, P: m.p}
	}
	return mat.DenseCopyOf(history.Slice(rows-m.p, rows, 0, m.k)), nil
}

// scenarioPatch rewrites selected variables of the most recent window row
// immediately before forecast step applyAt.
type scenarioPatch struct {
	applyAt   int
	overrides map[int]float64
}

// forecastWindow runs the recursion from a p x k window (oldest row first).
// The window is only read; all work happens in a fresh buffer, which is
// what keeps Forecast and scenario evaluation safe to run concurrently.
func (m *Model) forecastWindow(window *mat.Dense, h int, opts ForecastOptions, patch *scenarioPatch) (*ForecastPath, error) {
	if h < 1 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", h)
	}
	if opts.Confidence != 0 && (opts.Confidence <= 0 || opts.Confidence >= 1) {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %g", opts.Confidence)
	}

	// Extended buffer: p known rows followed by h forecast rows.
	buf := mat.NewDense(m.p+h, m.k, nil)
	for i := 0; i < m.p; i++ {
		for v := 0; v < m.k; v++ {
			buf.Set(i, v, window.At(i, v))
		}
	}

	for step := 0; step < h; step++ {
		if patch != nil && patch.applyAt == step {
			for v, val := range patch.overrides {
				buf.Set(m.p+step-1, v, val)
			}
		}
		row := m.p + step
		for eq := 0; eq < m.k; eq++ {
			val := m.c.AtVec(eq)
			for j := 1; j <= m.p; j++ {
				a := m.coef[j-1]
				for v := 0; v < m.k; v++ {
					val += a.At(eq, v) * buf.At(row-j, v)
				}
			}
			buf.Set(row, eq, val)
		}
	}

	path := &ForecastPath{
		Values: mat.DenseCopyOf(buf.Slice(m.p, m.p+h, 0, m.k)),
		Names:  m.Names(),
	}
	if opts.Confidence != 0 {
		if err := m.attachBands(path, h, opts.Confidence); err != nil {
			return nil, err
		}
	}
	return path, nil
}

// attachBands fills Lower/Upper on a computed path.
func (m *Model) attachBands(path *ForecastPath, h int, confidence float64) error {
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + confidence/2)
	phi := m.maCoefficients(h - 1)
	sigma := m.sigmaDense()

	lower := mat.NewDense(h, m.k, nil)
	upper := mat.NewDense(h, m.k, nil)
	cov := mat.NewDense(m.k, m.k, nil) // running Sigma_h
	var tmp, term mat.Dense
	for step := 0; step < h; step++ {
		tmp.Mul(phi[step], sigma)
		term.Mul(&tmp, phi[step].T())
		cov.Add(cov, &term)
		for v := 0; v < m.k; v++ {
			half := z * math.Sqrt(cov.At(v, v))
			point := path.Values.At(step, v)
			lower.Set(step, v, point-half)
			upper.Set(step, v, point+half)
		}
		tmp.Reset()
		term.Reset()
	}
	path.Lower = lower
	path.Upper = upper
	path.Confidence = confidence
	return nil
}

// maCoefficients returns the moving-average matrices Phi_0..Phi_H of the
// fitted system: Phi_0 = I and Phi_j = sum over i <= min(j, p) of
// A_i * Phi_{j-i}.
func (m *Model) maCoefficients(H int) []*mat.Dense {
	phi := make([]*mat.Dense, H+1)
	eye := mat.NewDense(m.k, m.k, nil)
	for i := 0; i < m.k; i++ {
		eye.Set(i, i, 1)
	}
	phi[0] = eye
	for j := 1; j <= H; j++ {
		sum := mat.NewDense(m.k, m.k, nil)
		maxLag := m.p
		if j < maxLag {
			maxLag = j
		}
		var term mat.Dense
		for i := 1; i <= maxLag; i++ {
			term.Mul(m.coef[i-1], phi[j-i])
			sum.Add(sum, &term)
			term.Reset()
		}
		phi[j] = sum
	}
	return phi
}
