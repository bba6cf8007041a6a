package cli

import (
	"fmt"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
)

var stalePortsVerbose bool

var stalePortsCommand = &cobra.Command{
	Use:     "stale-ports {info|delete}",
	GroupID: "janitor",
	Short:   "Remove orphan Neutron ports referring to inactive Ironic instances",
	Long: `Finds Neutron ports matching Ironic ports that still carry leftover
deployment metadata on a node with no bound instance. A narrower sweep
than conflict-macs: only ports a previous deployment failed to clean up
are touched. 'info' prints them; 'delete' removes the Neutron ports.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"info", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Hammers - Stale Ports"))

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunStalePorts(opts, args[0] == "delete", stalePortsVerbose)
	},
}

func init() {
	stalePortsCommand.Flags().BoolVarP(&stalePortsVerbose, "verbose", "v", false, "Also report when there is nothing to do")
	rootCommand.AddCommand(stalePortsCommand)
}
