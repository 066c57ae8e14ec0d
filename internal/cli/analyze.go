package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fuel-price-tracker/internal/app"
)

var (
	analyzeStation string
	analyzeFuel    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show weekday and hour price patterns for a station",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeStation == "" {
			return errors.New("--station is required")
		}

		opts := app.AnalyzeOptions{
			Station: analyzeStation,
			Fuel:    analyzeFuel,
		}

		return getApp().Analyze(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStation, "station", "", "Station URL or id")
	analyzeCmd.Flags().StringVar(&analyzeFuel, "fuel", "diesel", "Fuel grade (diesel, e5, e10)")
}
