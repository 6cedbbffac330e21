package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatehouse",
	Short: "Gatehouse is a local session and credential service",
	Long: `Gatehouse manages the user records and login sessions behind a small
administrative dashboard. Complete documentation is available at
https://github.com/jmcleod/gatehouse`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
