package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "bisectd",
	Short: "Web service for finding the rustc nightly that introduced a regression",
	Long:  ``,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase logging verbosity")
}
