package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage the model store",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored models, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		records, err := s.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no stored models")
			return nil
		}
		fmt.Printf("%-36s  %-20s  %-20s  %3s %3s %5s\n", "id", "name", "created", "k", "p", "n")
		for _, r := range records {
			fmt.Printf("%-36s  %-20s  %-20s  %3d %3d %5d\n",
				r.ID, r.Name, r.CreatedAt.Format("2006-01-02 15:04:05"), r.K, r.P, r.N)
		}
		return nil
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored model by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Delete(args[0]); err != nil {
			return err
		}
		log.Info().Str("id", args[0]).Msg("model removed from store")
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
	rootCmd.AddCommand(modelsCmd)
}
