// Command varcast fits vector autoregressions to economic time series and
// runs forecasts, scenario analyses, impulse responses, variance
// decompositions and Granger causality tests against them.
package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"varcast/config"
	"varcast/dataprep"
	"varcast/logger"
	"varcast/store"
	"varcast/varmodel"
)

var cfg *config.Config

var (
	flagLogLevel string
	flagPretty   bool
	flagStore    string
	flagData     string
	flagDerive   []string
)

var rootCmd = &cobra.Command{
	Use:           "varcast",
	Short:         "VAR-based economic forecasting",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		if flagStore != "" {
			cfg.StorePath = flagStore
		}
		if flagData != "" {
			cfg.DataPath = flagData
		}
		logger.SetGlobalLogger(logger.New(logger.Config{
			Level:  cfg.LogLevel,
			Pretty: flagPretty,
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", true, "human-readable console logs")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "model store path (overrides VARCAST_STORE_PATH)")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "input CSV path (overrides VARCAST_DATA_PATH)")
	rootCmd.PersistentFlags().StringArrayVar(&flagDerive, "derive", nil,
		`derived column, e.g. "gdp_growth=pct(gdp_index)" or "yield_spread=spread(rate_10yr,rate_3mo)"`)
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.StorePath, log.Logger)
}

// loadModel resolves a model reference as an id first, then as a name.
func loadModel(s *store.Store, ref string) (*varmodel.Model, error) {
	m, err := s.Load(ref)
	if err == nil {
		return m, nil
	}
	return s.LoadByName(ref)
}

// loadPanel reads the configured CSV and applies the --derive specs, or
// takes every fully numeric column raw when none are given.
func loadPanel() (*varmodel.Panel, error) {
	frame, err := dataprep.LoadCSV(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	var specs []dataprep.ColumnSpec
	if len(flagDerive) == 0 {
		specs = dataprep.AutoSpecs(frame)
	} else {
		for _, d := range flagDerive {
			spec, err := parseDerive(d)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}
	panel, err := dataprep.Prepare(frame, specs)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("rows", panel.Len()).Int("vars", panel.Width()).
		Str("path", cfg.DataPath).Msg("panel prepared")
	return panel, nil
}

// parseDerive parses "name=pct(src)", "name=spread(a,b)", "name=raw(src)"
// or the shorthand "name=src".
func parseDerive(s string) (dataprep.ColumnSpec, error) {
	name, expr, ok := strings.Cut(s, "=")
	if !ok || name == "" || expr == "" {
		return dataprep.ColumnSpec{}, fmt.Errorf("bad --derive %q: want name=expr", s)
	}
	spec := dataprep.ColumnSpec{Name: strings.TrimSpace(name)}
	expr = strings.TrimSpace(expr)

	fn, rest, isCall := strings.Cut(expr, "(")
	if !isCall {
		spec.Transform = dataprep.Raw
		spec.Source = expr
		return spec, nil
	}
	args := strings.TrimSuffix(rest, ")")
	switch fn {
	case "raw":
		spec.Transform = dataprep.Raw
		spec.Source = strings.TrimSpace(args)
	case "pct":
		spec.Transform = dataprep.PctChange
		spec.Source = strings.TrimSpace(args)
	case "spread":
		a, b, ok := strings.Cut(args, ",")
		if !ok {
			return dataprep.ColumnSpec{}, fmt.Errorf("bad --derive %q: spread wants two columns", s)
		}
		spec.Transform = dataprep.SpreadOf
		spec.Source = strings.TrimSpace(a)
		spec.Source2 = strings.TrimSpace(b)
	default:
		return dataprep.ColumnSpec{}, fmt.Errorf("bad --derive %q: unknown transform %q", s, fn)
	}
	if spec.Source == "" {
		return dataprep.ColumnSpec{}, fmt.Errorf("bad --derive %q: missing source column", s)
	}
	return spec, nil
}

// resolveOrdering maps configured or flag-given variable names to indexes.
func resolveOrdering(m *varmodel.Model, names []string) ([]int, error) {
	if len(names) == 0 {
		names = cfg.Ordering
	}
	if len(names) == 0 {
		return nil, nil
	}
	return m.OrderingByNames(names)
}
