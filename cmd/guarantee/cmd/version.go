package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the guarantee CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("guarantee version %s\n", version)
		fmt.Println("Risk and pricing engine for a multi-currency FX guarantee vehicle")
		fmt.Println("https://github.com/rustyeddy/guarantee")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
