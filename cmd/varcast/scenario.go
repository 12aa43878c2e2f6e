package main

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"varcast/config"
	"varcast/varmodel"
)

var (
	scenarioModel   string
	scenarioFile    string
	scenarioHorizon int
	scenarioOut     string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [name...]",
	Short: "Evaluate named what-if scenarios against a stored model",
	Long: `Evaluates scenarios defined in the YAML scenario file against a stored
model. With no arguments every defined scenario runs; otherwise only the
named ones. Each scenario forecast is printed next to the baseline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := scenarioFile
		if path == "" {
			path = cfg.ScenarioPath
		}
		scenarios, err := config.LoadScenarios(path)
		if err != nil {
			return err
		}

		names := args
		if len(names) == 0 {
			for name := range scenarios {
				names = append(names, name)
			}
			sort.Strings(names)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		m, err := loadModel(s, scenarioModel)
		if err != nil {
			return err
		}

		h := scenarioHorizon
		if h <= 0 {
			h = cfg.Horizon
		}
		opts := varmodel.ForecastOptions{}

		baseline, err := m.Forecast(h, opts)
		if err != nil {
			return err
		}
		fmt.Println("=== baseline ===")
		printForecast(baseline)

		for _, name := range names {
			sc, ok := scenarios[name]
			if !ok {
				return fmt.Errorf("scenario %q not defined in %s", name, path)
			}
			fcPath, err := m.ForecastScenario(sc, h, opts)
			if err != nil {
				return err
			}
			fmt.Printf("\n=== scenario: %s ===\n", name)
			printForecast(fcPath)
			if scenarioOut != "" {
				out := fmt.Sprintf("%s.%s.csv", scenarioOut, name)
				if err := forecastToCSV(out, fcPath); err != nil {
					return err
				}
				log.Info().Str("scenario", name).Str("path", out).Msg("scenario forecast written")
			}
		}
		return nil
	},
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioModel, "model", "default", "stored model id or name")
	scenarioCmd.Flags().StringVar(&scenarioFile, "scenarios", "", "scenario YAML path (overrides VARCAST_SCENARIO_PATH)")
	scenarioCmd.Flags().IntVar(&scenarioHorizon, "horizon", 0, "forecast steps (default from config)")
	scenarioCmd.Flags().StringVar(&scenarioOut, "out", "", "CSV output prefix; one file per scenario")
	rootCmd.AddCommand(scenarioCmd)
}
