package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scenario is a what-if override: named variables are pinned to given
// values in the rolling forecast window, then the ordinary recursion runs.
// Evaluating a scenario never touches the model or the history it starts
// from, so any number of scenarios can run concurrently against one model.
type Scenario struct {
	Name string
	// Overrides maps variable names to the values forced into the window.
	Overrides map[string]float64
	// ApplyAt is the forecast step immediately before which the overrides
	// are applied. 0, the default, rewrites the last known observation;
	// s > 0 rewrites the step-s forecast before step s+1 uses it, and the
	// returned path then reports the rewritten value at step s.
	ApplyAt int
}

// ForecastScenario evaluates the scenario from the model's fitting tail and
// returns its own independent path.
func (m *Model) ForecastScenario(sc Scenario, h int, opts ForecastOptions) (*ForecastPath, error) {
	return m.forecastScenario(m.tail, sc, h, opts)
}

// ForecastScenarioFrom evaluates the scenario from a caller-supplied
// history, mirroring ForecastFrom.
func (m *Model) ForecastScenarioFrom(history *mat.Dense, sc Scenario, h int, opts ForecastOptions) (*ForecastPath, error) {
	window, err := m.windowOf(history)
	if err != nil {
		return nil, err
	}
	return m.forecastScenario(window, sc, h, opts)
}

func (m *Model) forecastScenario(window *mat.Dense, sc Scenario, h int, opts ForecastOptions) (*ForecastPath, error) {
	if len(sc.Overrides) == 0 {
		return nil, fmt.Errorf("scenario %q has no overrides", sc.Name)
	}
	if sc.ApplyAt < 0 || sc.ApplyAt >= h {
		return nil, fmt.Errorf("scenario %q applies at step %d outside horizon %d", sc.Name, sc.ApplyAt, h)
	}
	byIndex := make(map[int]float64, len(sc.Overrides))
	for name, val := range sc.Overrides {
		idx, ok := m.varIndex(name)
		if !ok {
			return nil, &UnknownVariableError{Name: name}
		}
		byIndex[idx] = val
	}
	return m.forecastWindow(window, h, opts, &scenarioPatch{applyAt: sc.ApplyAt, overrides: byIndex})
}
