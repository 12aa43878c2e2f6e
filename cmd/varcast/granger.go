package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"varcast/varmodel"
)

var (
	grangerLag    int
	grangerMaxLag int
	grangerOut    string
)

var grangerCmd = &cobra.Command{
	Use:   "granger",
	Short: "Run pairwise Granger causality tests on the prepared data",
	RunE: func(cmd *cobra.Command, args []string) error {
		panel, err := loadPanel()
		if err != nil {
			return err
		}

		var m *varmodel.Model
		if grangerLag > 0 {
			m, err = varmodel.Estimate(panel, grangerLag)
		} else {
			maxLag := grangerMaxLag
			if maxLag <= 0 {
				maxLag = cfg.MaxLag
			}
			m, _, err = varmodel.Fit(cmd.Context(), panel, varmodel.SelectOptions{MaxLag: maxLag})
		}
		if err != nil {
			return err
		}
		log.Info().Int("p", m.P()).Msg("testing causality at the selected lag order")

		results, err := m.GrangerMatrix(panel)
		if err != nil {
			return err
		}
		printGranger(results)

		if grangerOut != "" {
			if err := grangerToCSV(grangerOut, results); err != nil {
				return err
			}
			log.Info().Str("path", grangerOut).Msg("causality table written")
		}
		return nil
	},
}

func init() {
	grangerCmd.Flags().IntVar(&grangerLag, "lag", 0, "fixed lag order, skipping selection")
	grangerCmd.Flags().IntVar(&grangerMaxLag, "max-lag", 0, "largest lag order to consider (default from config)")
	grangerCmd.Flags().StringVar(&grangerOut, "out", "", "CSV output path")
	rootCmd.AddCommand(grangerCmd)
}
