package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	fevdModel    string
	fevdHorizon  int
	fevdOrdering []string
	fevdOut      string
)

var fevdCmd = &cobra.Command{
	Use:   "fevd",
	Short: "Decompose forecast-error variance by shock source",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		m, err := loadModel(s, fevdModel)
		if err != nil {
			return err
		}

		h := fevdHorizon
		if h <= 0 {
			h = cfg.Horizon
		}
		ordering, err := resolveOrdering(m, fevdOrdering)
		if err != nil {
			return err
		}
		d, err := m.VarianceDecomposition(h, ordering)
		if err != nil {
			return err
		}

		for v, name := range d.Names {
			fmt.Printf("\nVariance of %s attributed to:\n", name)
			fmt.Printf("%-4s", "h")
			for _, shockName := range d.Names {
				fmt.Printf("%14s", shockName)
			}
			fmt.Println()
			for step := 1; step <= d.Horizon; step++ {
				fmt.Printf("%-4d", step)
				for shock := range d.Names {
					fmt.Printf("%13.2f%%", 100*d.Share(step, v, shock))
				}
				fmt.Println()
			}
		}

		if fevdOut != "" {
			if err := fevdToCSV(fevdOut, d); err != nil {
				return err
			}
			log.Info().Str("path", fevdOut).Msg("variance decomposition written")
		}
		return nil
	},
}

func init() {
	fevdCmd.Flags().StringVar(&fevdModel, "model", "default", "stored model id or name")
	fevdCmd.Flags().IntVar(&fevdHorizon, "horizon", 0, "decomposition horizon (default from config)")
	fevdCmd.Flags().StringSliceVar(&fevdOrdering, "ordering", nil, "causal variable ordering")
	fevdCmd.Flags().StringVar(&fevdOut, "out", "", "CSV output path")
	rootCmd.AddCommand(fevdCmd)
}
