package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fuel-price-tracker/internal/app"
)

var (
	showStation string
	showLimit   int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display cached station prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Station: showStation,
			Limit:   showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showStation, "station", "", "Station URL or id (default: all stations)")
	showCmd.Flags().IntVar(&showLimit, "limit", 1, "Number of readings to display per station")
}
