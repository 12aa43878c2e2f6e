package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"varcast/varmodel"
)

var (
	irfModel      string
	irfHorizon    int
	irfOrthogonal bool
	irfOrdering   []string
	irfOut        string
)

var irfCmd = &cobra.Command{
	Use:   "irf",
	Short: "Trace impulse responses of a stored model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		m, err := loadModel(s, irfModel)
		if err != nil {
			return err
		}

		h := irfHorizon
		if h <= 0 {
			h = cfg.Horizon
		}
		var ir *varmodel.ImpulseResponse
		if irfOrthogonal {
			ordering, err := resolveOrdering(m, irfOrdering)
			if err != nil {
				return err
			}
			ir, err = m.OrthogonalImpulseResponses(h, ordering)
			if err != nil {
				return err
			}
		} else {
			ir, err = m.ImpulseResponses(h)
			if err != nil {
				return err
			}
		}

		for shock, shockName := range ir.Names {
			fmt.Printf("\nShock to %s:\n", shockName)
			fmt.Printf("%-4s", "h")
			for _, name := range ir.Names {
				fmt.Printf("%14s", name)
			}
			fmt.Println()
			for step, resp := range ir.Responses {
				fmt.Printf("%-4d", step)
				for v := range ir.Names {
					fmt.Printf("%14.6f", resp.At(v, shock))
				}
				fmt.Println()
			}
		}

		if irfOut != "" {
			if err := irfToCSV(irfOut, ir); err != nil {
				return err
			}
			log.Info().Str("path", irfOut).Bool("orthogonal", ir.Orthogonalized).
				Msg("impulse responses written")
		}
		return nil
	},
}

func init() {
	irfCmd.Flags().StringVar(&irfModel, "model", "default", "stored model id or name")
	irfCmd.Flags().IntVar(&irfHorizon, "horizon", 0, "response horizon (default from config)")
	irfCmd.Flags().BoolVar(&irfOrthogonal, "orthogonal", false, "orthogonalize shocks via the Cholesky factor")
	irfCmd.Flags().StringSliceVar(&irfOrdering, "ordering", nil, "causal variable ordering for orthogonalization")
	irfCmd.Flags().StringVar(&irfOut, "out", "", "CSV output path")
	rootCmd.AddCommand(irfCmd)
}
