package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	HammersVersion, HammersCommit, HammersDate string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash, build date, and other build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hammers version: %s\n", HammersVersion)
		fmt.Printf("Commit: %s\n", HammersCommit)
		fmt.Printf("Built: %s\n", HammersDate)
	},
}

func init() {
	rootCommand.AddCommand(versionCommand)
}
