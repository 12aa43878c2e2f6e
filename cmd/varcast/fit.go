package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"varcast/varmodel"
)

var (
	fitName   string
	fitMaxLag int
	fitLag    int
	fitBudget time.Duration
	fitNoSave bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Prepare data, select the lag order and fit a VAR model",
	RunE: func(cmd *cobra.Command, args []string) error {
		panel, err := loadPanel()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if fitBudget > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, fitBudget)
			defer cancel()
		}

		var (
			m   *varmodel.Model
			sel *varmodel.LagSelection
		)
		if fitLag > 0 {
			m, err = varmodel.Estimate(panel, fitLag)
		} else {
			maxLag := fitMaxLag
			if maxLag <= 0 {
				maxLag = cfg.MaxLag
			}
			m, sel, err = varmodel.Fit(ctx, panel, varmodel.SelectOptions{MaxLag: maxLag})
		}
		if err != nil {
			return err
		}
		if sel != nil && sel.Partial {
			log.Warn().Int("p", sel.P).
				Msg("lag selection ran out of budget; order chosen from the candidates scored so far")
		}

		printSummary(m, sel)

		if fitNoSave {
			return nil
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		id, err := s.Save(m, fitName)
		if err != nil {
			return err
		}
		log.Info().Str("id", id).Str("name", fitName).Msg("fitted model saved")
		return nil
	},
}

func init() {
	fitCmd.Flags().StringVar(&fitName, "name", "default", "name to save the fitted model under")
	fitCmd.Flags().IntVar(&fitMaxLag, "max-lag", 0, "largest lag order to consider (default from config)")
	fitCmd.Flags().IntVar(&fitLag, "lag", 0, "fixed lag order, skipping selection")
	fitCmd.Flags().DurationVar(&fitBudget, "budget", 0, "wall-clock budget for lag selection (e.g. 30s)")
	fitCmd.Flags().BoolVar(&fitNoSave, "no-save", false, "print the summary without saving")
	rootCmd.AddCommand(fitCmd)
}
