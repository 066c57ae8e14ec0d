package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fuel-price-tracker/internal/app"
)

var (
	simulateStation string
	simulateFuel    string
	simulatePrice   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Inject a synthetic reading and run the alert pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateStation == "" || simulatePrice == "" {
			return errors.New("--station and --price are required")
		}

		opts := app.SimulateOptions{
			Station: simulateStation,
			Fuel:    simulateFuel,
			Price:   simulatePrice,
		}

		return getApp().SimulateAlert(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateStation, "station", "", "Station URL or id")
	simulateCmd.Flags().StringVar(&simulateFuel, "fuel", "diesel", "Fuel grade (diesel, e5, e10)")
	simulateCmd.Flags().StringVar(&simulatePrice, "price", "", "Price to inject, e.g. 1.759")
}
