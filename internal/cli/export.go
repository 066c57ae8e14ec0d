package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fuel-price-tracker/internal/app"
)

var (
	exportStation   string
	exportFuel      string
	exportPNGPath   string
	exportCSVPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a station's price history as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportStation == "" {
			return errors.New("--station is required")
		}

		opts := app.ExportOptions{
			Station:   exportStation,
			Fuel:      exportFuel,
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			MaxPoints: exportMaxPoints,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportStation, "station", "", "Station URL or id")
	exportCmd.Flags().StringVar(&exportFuel, "fuel", "", "Limit export to one fuel type (diesel, e5, e10)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export")
}
