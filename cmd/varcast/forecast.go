package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"varcast/varmodel"
)

var (
	forecastModel      string
	forecastHorizon    int
	forecastConfidence float64
	forecastOut        string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run an h-step forecast from a stored model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		m, err := loadModel(s, forecastModel)
		if err != nil {
			return err
		}

		h := forecastHorizon
		if h <= 0 {
			h = cfg.Horizon
		}
		conf := forecastConfidence
		if conf == 0 {
			conf = cfg.Confidence
		}
		if conf < 0 {
			conf = 0 // bands disabled
		}
		path, err := m.Forecast(h, varmodel.ForecastOptions{Confidence: conf})
		if err != nil {
			return err
		}

		printForecast(path)
		if forecastOut != "" {
			if err := forecastToCSV(forecastOut, path); err != nil {
				return err
			}
			log.Info().Str("path", forecastOut).Msg("forecast written")
		}
		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVar(&forecastModel, "model", "default", "stored model id or name")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "forecast steps (default from config)")
	forecastCmd.Flags().Float64Var(&forecastConfidence, "confidence", 0,
		"confidence level for bands; negative disables bands")
	forecastCmd.Flags().StringVar(&forecastOut, "out", "", "CSV output path")
	rootCmd.AddCommand(forecastCmd)
}
