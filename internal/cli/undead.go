package cli

import (
	"fmt"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
)

var undeadVerbose bool

var undeadCommand = &cobra.Command{
	Use:     "undead-instances {info|delete}",
	GroupID: "janitor",
	Short:   "Kick Ironic nodes that refer to deleted Nova instances",
	Long: `Finds Ironic nodes whose bound instance no longer exists in Nova.
'info' prints the zombies; 'delete' commands a provision state
transition to tear the node back down to available.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"info", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Hammers - Undead Instances"))

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunUndeadInstances(opts, args[0] == "delete", undeadVerbose)
	},
}

func init() {
	undeadCommand.Flags().BoolVarP(&undeadVerbose, "verbose", "v", false, "Also report when there is nothing to do")
	rootCommand.AddCommand(undeadCommand)
}
