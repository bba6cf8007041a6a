package cli

import (
	"fmt"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	ipmiRetryVerbose bool
	ipmiRetryDryRun  bool
)

var ipmiRetryCommand = &cobra.Command{
	Use:     "ipmi-retry {info|reset}",
	GroupID: "janitor",
	Short:   "Kick Ironic nodes stuck in a known IPMI error state",
	Long: `Finds nodes in provision state "error" whose last error matches a
known-transient IPMI failure, and commands a teardown to clear it.
Each node gets a bounded number of automated resets, tracked in the
node's own extra metadata; nodes at the ceiling are reported and left
alone. 'info' prints the treatable nodes without acting.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"info", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Hammers - IPMI Retry"))

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunIPMIRetry(opts, args[0] == "reset", ipmiRetryDryRun, ipmiRetryVerbose)
	},
}

func init() {
	ipmiRetryCommand.Flags().BoolVarP(&ipmiRetryVerbose, "verbose", "v", false, "Also report when there is nothing to do")
	ipmiRetryCommand.Flags().BoolVar(&ipmiRetryDryRun, "dry-run", false, "Evaluate the ledger but perform no resets and write nothing")
	rootCommand.AddCommand(ipmiRetryCommand)
}
