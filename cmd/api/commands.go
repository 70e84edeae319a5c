package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"coffee-quality-api/models"
	"coffee-quality-api/services"

	"github.com/spf13/cobra"
)

func newPredictCmd() *cobra.Command {
	def := models.DefaultSample()
	var caffeine, acidity float64
	var process string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify one sample and record it in the history",
		Example: `  coffee-quality predict
  coffee-quality predict --caffeine 120 --acidity 5.0 --process Washed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParseProcess(process)
			if err != nil {
				return err
			}
			sample := models.CoffeeSample{CaffeineMg: caffeine, AcidityPH: acidity, Process: p}
			return withApp(func(a *app) error {
				out := services.NewOrchestrator("cli", a.deps).Predict(cmd.Context(), sample)
				printOutcome(out)
				if out.State == services.StateErrorDisplaying {
					return out.Err
				}
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&caffeine, "caffeine", def.CaffeineMg, fmt.Sprintf("Caffeine content in mg (%v-%v)", models.MinCaffeineMg, models.MaxCaffeineMg))
	cmd.Flags().Float64Var(&acidity, "acidity", def.AcidityPH, fmt.Sprintf("Acidity in pH (%v-%v)", models.MinAcidityPH, models.MaxAcidityPH))
	cmd.Flags().StringVar(&process, "process", string(def.Process), "Processing method: Natural, Honey or Washed")
	return cmd
}

func newWeatherCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:     "weather",
		Short:   "Suggest a roast for a city's current temperature",
		Example: `  coffee-quality weather --city Bandung`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				out := services.NewOrchestrator("cli", a.deps).FetchWeather(cmd.Context(), city)
				printOutcome(out)
				if out.State == services.StateErrorDisplaying {
					return out.Err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "City name")
	cmd.MarkFlagRequired("city")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				records, err := a.history.List(cmd.Context(), services.HistoryQuery{Limit: limit})
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Println("No predictions recorded yet.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for i, h := range models.HistoryHeader {
					if i > 0 {
						fmt.Fprint(w, "\t")
					}
					fmt.Fprint(w, h)
				}
				fmt.Fprintln(w)
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%g\t%g\t%s\t%s\t%.2f\n",
						r.Timestamp.Format(models.HistoryTimestampLayout),
						r.CaffeineMg, r.AcidityPH, r.Process, r.PredictedLabel, r.ConfidencePct)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of records to show (0 for all)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Version:  %s\n", version)
			fmt.Printf("Commit:   %s\n", commit)
			fmt.Printf("Built:    %s\n", date)
			return nil
		},
	}
}

func withApp(fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printOutcome(out services.Outcome) {
	if out.Prediction != nil {
		fmt.Printf("Prediksi: %s\n", out.Prediction.Label)
		fmt.Println(out.Caption)
		for _, p := range out.Prediction.Probabilities {
			fmt.Printf("  %-8s %6.2f%%\n", p.Class, p.Probability*100)
		}
	}
	if out.Warning != "" {
		fmt.Fprintln(os.Stderr, out.Warning)
	}
	fmt.Println(out.Message)
}
