package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"varcast/config"
	"varcast/dataprep"
	"varcast/varmodel"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactively explore the data and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		session := &exploreSession{
			in:  bufio.NewScanner(cmd.InOrStdin()),
			out: cmd.OutOrStdout(),
		}
		return session.run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

type exploreSession struct {
	in    *bufio.Scanner
	out   io.Writer
	panel *varmodel.Panel
	model *varmodel.Model
	sel   *varmodel.LagSelection
}

func (s *exploreSession) run(cmd *cobra.Command) error {
	for {
		s.menu()
		choice := s.prompt("Select an option: ")
		var err error
		switch choice {
		case "1":
			err = s.loadData()
		case "2":
			err = s.buildModel(cmd)
		case "3":
			err = s.summary()
		case "4":
			err = s.forecast()
		case "5":
			err = s.multiHorizon()
		case "6":
			err = s.confidenceIntervals()
		case "7":
			err = s.scenarios()
		case "8":
			err = s.saveModel()
		case "9":
			err = s.describe()
		case "0", "":
			fmt.Fprintln(s.out, "Bye.")
			return nil
		default:
			fmt.Fprintf(s.out, "Unknown option %q.\n", choice)
		}
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *exploreSession) menu() {
	fmt.Fprint(s.out, `
======================================================================
                     VAR MODEL INTERACTIVE EXPLORER
======================================================================
 1. Load and prepare data
 2. Build VAR model with custom lag selection
 3. View model summary and diagnostics
 4. Generate forecast
 5. Generate multi-horizon forecasts
 6. Analyze forecast confidence intervals
 7. Compare economic scenarios
 8. Save model for later use
 9. View current data statistics
 0. Exit
======================================================================
`)
}

func (s *exploreSession) prompt(msg string) string {
	fmt.Fprint(s.out, msg)
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *exploreSession) promptInt(msg string, def int) int {
	raw := s.prompt(msg)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		fmt.Fprintf(s.out, "Using default %d.\n", def)
		return def
	}
	return v
}

func (s *exploreSession) needPanel() error {
	if s.panel == nil {
		return fmt.Errorf("no data loaded; load data first (option 1)")
	}
	return nil
}

func (s *exploreSession) needModel() error {
	if s.model == nil {
		return fmt.Errorf("no model fitted; build a model first (option 2)")
	}
	return nil
}

func (s *exploreSession) loadData() error {
	panel, err := loadPanel()
	if err != nil {
		return err
	}
	s.panel = panel
	fmt.Fprintf(s.out, "Loaded %d observations of %d variables: %s\n",
		panel.Len(), panel.Width(), strings.Join(panel.Names(), ", "))
	return nil
}

func (s *exploreSession) buildModel(cmd *cobra.Command) error {
	if err := s.needPanel(); err != nil {
		return err
	}
	maxLag := s.promptInt(fmt.Sprintf("Maximum lags to test (default %d): ", cfg.MaxLag), cfg.MaxLag)

	m, sel, err := varmodel.Fit(cmd.Context(), s.panel, varmodel.SelectOptions{MaxLag: maxLag})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Selected lag order p=%d.\n", sel.P)

	if choice := s.prompt("Use the selected lag? (y/n, default y): "); strings.EqualFold(choice, "n") {
		p := s.promptInt("Lag order to use: ", sel.P)
		if m, err = varmodel.Estimate(s.panel, p); err != nil {
			return err
		}
	}
	s.model, s.sel = m, sel
	fmt.Fprintln(s.out, "Model fitted.")
	return nil
}

func (s *exploreSession) summary() error {
	if err := s.needModel(); err != nil {
		return err
	}
	printSummary(s.model, s.sel)
	return nil
}

func (s *exploreSession) forecast() error {
	if err := s.needModel(); err != nil {
		return err
	}
	h := s.promptInt(fmt.Sprintf("Forecast horizon (default %d): ", cfg.Horizon), cfg.Horizon)
	path, err := s.model.Forecast(h, varmodel.ForecastOptions{})
	if err != nil {
		return err
	}
	printForecast(path)
	if out := s.prompt("Save forecast to CSV? (path, empty to skip): "); out != "" {
		if err := forecastToCSV(out, path); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Written to %s.\n", out)
	}
	return nil
}

func (s *exploreSession) multiHorizon() error {
	if err := s.needModel(); err != nil {
		return err
	}
	for _, h := range []int{12, 24, 36} {
		path, err := s.model.Forecast(h, varmodel.ForecastOptions{})
		if err != nil {
			return err
		}
		last := path.Steps() - 1
		fmt.Fprintf(s.out, "\n%d-step endpoint:\n", h)
		for v, name := range path.Names {
			fmt.Fprintf(s.out, "  %-16s %12.6f\n", name, path.Values.At(last, v))
		}
	}
	return nil
}

func (s *exploreSession) confidenceIntervals() error {
	if err := s.needModel(); err != nil {
		return err
	}
	h := s.promptInt(fmt.Sprintf("Forecast horizon (default %d): ", cfg.Horizon), cfg.Horizon)
	conf := cfg.Confidence
	if raw := s.prompt(fmt.Sprintf("Confidence level (default %g): ", conf)); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v < 1 {
			conf = v
		}
	}
	path, err := s.model.Forecast(h, varmodel.ForecastOptions{Confidence: conf})
	if err != nil {
		return err
	}
	printForecast(path)
	return nil
}

func (s *exploreSession) scenarios() error {
	if err := s.needModel(); err != nil {
		return err
	}
	scenarios, err := config.LoadScenarios(cfg.ScenarioPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Defined scenarios:")
	for name, sc := range scenarios {
		fmt.Fprintf(s.out, "  %-20s apply_at=%d overrides=%v\n", name, sc.ApplyAt, sc.Overrides)
	}
	name := s.prompt("Scenario to run (empty to cancel): ")
	if name == "" {
		return nil
	}
	sc, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("scenario %q not defined", name)
	}
	h := s.promptInt(fmt.Sprintf("Forecast horizon (default %d): ", cfg.Horizon), cfg.Horizon)
	path, err := s.model.ForecastScenario(sc, h, varmodel.ForecastOptions{})
	if err != nil {
		return err
	}
	printForecast(path)
	return nil
}

func (s *exploreSession) saveModel() error {
	if err := s.needModel(); err != nil {
		return err
	}
	name := s.prompt("Model name (default \"default\"): ")
	if name == "" {
		name = "default"
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	id, err := st.Save(s.model, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved as %s (id %s).\n", name, id)
	return nil
}

func (s *exploreSession) describe() error {
	if err := s.needPanel(); err != nil {
		return err
	}
	printDescribe(dataprep.Describe(s.panel))
	return nil
}
