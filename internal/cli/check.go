package cli

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll all stations once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Check(cmd.Context())
	},
}
