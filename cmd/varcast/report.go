package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"varcast/dataprep"
	"varcast/varmodel"
)

// printSummary writes the fitted-model summary table to stdout.
func printSummary(m *varmodel.Model, sel *varmodel.LagSelection) {
	fmt.Println("=======================================")
	fmt.Println("          VAR Model Summary")
	fmt.Println("=======================================")
	fmt.Printf("Variables (k):       %d\n", m.K())
	fmt.Printf("Lag order (p):       %d\n", m.P())
	fmt.Printf("Observations (n):    %d\n", m.NumObs())
	fmt.Printf("Log-likelihood:      %.4f\n", m.LogLikelihood())
	s := m.CriterionScores()
	fmt.Printf("AIC %.4f  BIC %.4f  HQIC %.4f  FPE %.6g\n", s.AIC, s.BIC, s.HQIC, s.FPE)

	if sel != nil {
		fmt.Println("\nLag selection votes:")
		for _, c := range []varmodel.Criterion{
			varmodel.CriterionAIC, varmodel.CriterionBIC,
			varmodel.CriterionHQIC, varmodel.CriterionFPE,
		} {
			fmt.Printf("  %-5s -> p=%d\n", c, sel.ByCriterion[c])
		}
		if sel.Partial {
			fmt.Println("  (partial: selection stopped before all candidates were scored)")
		}
	}

	fmt.Println("\nIntercept c:")
	for i, v := range m.Intercept() {
		fmt.Printf("  %-16s %10.6f\n", m.Names()[i], v)
	}
	for j := 1; j <= m.P(); j++ {
		fmt.Printf("\nA_%d =\n", j)
		fmt.Printf("%v\n", mat.Formatted(m.Coef(j), mat.Prefix("  ")))
	}
	fmt.Println("\nResidual covariance =")
	fmt.Printf("%v\n", mat.Formatted(m.Sigma(), mat.Prefix("  ")))
	fmt.Println("=======================================")
}

// printForecast writes the forecast path as a table.
func printForecast(path *varmodel.ForecastPath) {
	fmt.Printf("%-5s", "step")
	for _, name := range path.Names {
		fmt.Printf("%14s", name)
	}
	fmt.Println()
	for step := 0; step < path.Steps(); step++ {
		fmt.Printf("%-5d", step+1)
		for v := range path.Names {
			fmt.Printf("%14.6f", path.Values.At(step, v))
		}
		fmt.Println()
		if path.Lower != nil {
			fmt.Printf("%-5s", "")
			for v := range path.Names {
				fmt.Printf("%14s", fmt.Sprintf("[%.3f,%.3f]",
					path.Lower.At(step, v), path.Upper.At(step, v)))
			}
			fmt.Println()
		}
	}
}

// printDescribe writes the per-variable data statistics table.
func printDescribe(stats []dataprep.Summary) {
	fmt.Printf("%-16s %12s %12s %12s %12s\n", "variable", "mean", "std", "min", "max")
	for _, s := range stats {
		fmt.Printf("%-16s %12.6f %12.6f %12.6f %12.6f\n", s.Name, s.Mean, s.Std, s.Min, s.Max)
	}
}

// printGranger writes the pairwise causality table.
func printGranger(results [][]*varmodel.GrangerResult) {
	fmt.Printf("%-16s -> %-16s | %11s | %8s | %s\n", "cause", "effect", "F-statistic", "p-value", "conclusion")
	fmt.Println("--------------------------------------------------------------------------")
	for i := range results {
		for j := range results[i] {
			r := results[i][j]
			if r == nil {
				continue
			}
			conclusion := "no causality"
			if r.Significant {
				conclusion = "GRANGER-CAUSES"
			}
			fmt.Printf("%-16s -> %-16s | %11.4f | %8.6f | %s\n",
				r.Cause, r.Effect, r.FStatistic, r.PValue, conclusion)
		}
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// forecastToCSV writes the path in long format:
// Variable, Step, Point, Lower, Upper.
func forecastToCSV(path string, fc *varmodel.ForecastPath) error {
	var rows [][]string
	for v, name := range fc.Names {
		for step := 0; step < fc.Steps(); step++ {
			row := []string{
				name,
				strconv.Itoa(step + 1),
				formatFloat(fc.Values.At(step, v)),
				"", "",
			}
			if fc.Lower != nil {
				row[3] = formatFloat(fc.Lower.At(step, v))
				row[4] = formatFloat(fc.Upper.At(step, v))
			}
			rows = append(rows, row)
		}
	}
	return writeCSV(path, []string{"Variable", "Step", "Point", "Lower", "Upper"}, rows)
}

// irfToCSV writes responses in long format:
// ShockVar, ResponseVar, Horizon, Response.
func irfToCSV(path string, ir *varmodel.ImpulseResponse) error {
	var rows [][]string
	for shock, shockName := range ir.Names {
		for v, respName := range ir.Names {
			for h, resp := range ir.Responses {
				rows = append(rows, []string{
					shockName,
					respName,
					strconv.Itoa(h),
					formatFloat(resp.At(v, shock)),
				})
			}
		}
	}
	return writeCSV(path, []string{"ShockVar", "ResponseVar", "Horizon", "Response"}, rows)
}

// fevdToCSV writes shares in long format:
// Variable, ShockVar, Horizon, Share.
func fevdToCSV(path string, d *varmodel.VarianceDecomposition) error {
	var rows [][]string
	for v, name := range d.Names {
		for shock, shockName := range d.Names {
			for h := 1; h <= d.Horizon; h++ {
				rows = append(rows, []string{
					name,
					shockName,
					strconv.Itoa(h),
					formatFloat(d.Share(h, v, shock)),
				})
			}
		}
	}
	return writeCSV(path, []string{"Variable", "ShockVar", "Horizon", "Share"}, rows)
}

// grangerToCSV writes the causality matrix:
// CauseVar, EffectVar, FStatistic, PValue, Lags, Significant.
func grangerToCSV(path string, results [][]*varmodel.GrangerResult) error {
	var rows [][]string
	for i := range results {
		for j := range results[i] {
			r := results[i][j]
			if r == nil {
				continue
			}
			rows = append(rows, []string{
				r.Cause,
				r.Effect,
				formatFloat(r.FStatistic),
				formatFloat(r.PValue),
				strconv.Itoa(r.Lags),
				strconv.FormatBool(r.Significant),
			})
		}
	}
	return writeCSV(path,
		[]string{"CauseVar", "EffectVar", "FStatistic", "PValue", "Lags", "Significant"}, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
