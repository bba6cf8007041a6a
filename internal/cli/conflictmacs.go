package cli

import (
	"fmt"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
)

var conflictMACsVerbose bool

var conflictMACsCommand = &cobra.Command{
	Use:     "conflict-macs {info|delete}",
	GroupID: "janitor",
	Short:   "Remove orphan Neutron ports conflicting with Ironic MACs",
	Long: `Finds Neutron ports whose MAC address belongs to an Ironic port on a
node with no bound instance. These orphans block the next deployment
onto the node. 'info' prints the conflicts; 'delete' removes the
Neutron ports.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"info", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Hammers - Conflict MACs"))

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunConflictMACs(opts, args[0] == "delete", conflictMACsVerbose)
	},
}

func init() {
	conflictMACsCommand.Flags().BoolVarP(&conflictMACsVerbose, "verbose", "v", false, "Also report when there is nothing to do")
	rootCommand.AddCommand(conflictMACsCommand)
}
