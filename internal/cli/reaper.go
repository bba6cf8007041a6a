package cli

import (
	"fmt"
	"strconv"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	reaperInfo      bool
	reaperDelete    bool
	reaperWhitelist string
)

var reaperCommand = &cobra.Command{
	Use:     "neutron-reaper {ip|port} <grace-days>",
	GroupID: "janitor",
	Short:   "Reclaim floating IPs or ports held by idle projects",
	Long: `Finds Neutron floating IPs (or unbound ports) belonging to projects
with no running instances and no upcoming reservation, idle for at
least the grace period. By default it prints one delete command per
resource, suitable for piping into the Neutron client as a second
phase; --info prints a read-only report and --delete performs the API
deletions directly.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The default output is piped into the neutron client, so the
		// banner only renders for the read-only report.
		if reaperInfo {
			fmt.Println(headerStyle.Render("Hammers - Neutron Reaper"))
		}

		kind := workflow.ReaperKind(args[0])
		if kind != workflow.ReapIPs && kind != workflow.ReapPorts {
			return fmt.Errorf("resource must be 'ip' or 'port', got '%s'", args[0])
		}

		graceDays, err := strconv.ParseFloat(args[1], 64)
		if err != nil || graceDays < 0 {
			return fmt.Errorf("invalid grace period '%s': must be a non-negative number of days", args[1])
		}

		if reaperInfo && reaperDelete {
			return fmt.Errorf("--info and --delete are mutually exclusive")
		}
		mode := workflow.ModeCommands
		if reaperInfo {
			mode = workflow.ModeInfo
		} else if reaperDelete {
			mode = workflow.ModeDelete
		}

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunNeutronReaper(opts, kind, graceDays, mode, reaperWhitelist)
	},
}

func init() {
	reaperCommand.Flags().BoolVarP(&reaperInfo, "info", "i", false, "Print a read-only report instead of delete commands")
	reaperCommand.Flags().BoolVar(&reaperDelete, "delete", false, "Perform the deletions directly instead of printing commands")
	reaperCommand.Flags().StringVarP(&reaperWhitelist, "whitelist", "w", "", "File of project IDs/names to ignore, one per line (case and dashes ignored)")
	rootCommand.AddCommand(reaperCommand)
}
