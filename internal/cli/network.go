package cli

import (
	"fmt"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
)

var networkNukeInfo bool

var networkCommand = &cobra.Command{
	Use:     "network",
	GroupID: "testbed",
	Short:   "Manage isolated testbed networks",
}

var networkNukeCommand = &cobra.Command{
	Use:   "nuke <name-or-id>",
	Short: "Tear down a network and everything attached to it",
	Long: `Detaches the network's subnets from their router, deletes the router,
the subnets, and finally the network. Safe to re-run on a partially
torn-down network.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Hammers - Network Nuke"))

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunNetworkNuke(opts, args[0], networkNukeInfo)
	},
}

func init() {
	networkNukeCommand.Flags().BoolVarP(&networkNukeInfo, "info", "i", false, "Print the teardown plan without touching anything")
	networkCommand.AddCommand(networkNukeCommand)
	rootCommand.AddCommand(networkCommand)
}
