package cli

import (
	"fmt"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Flags for lease sub-commands
var (
	leaseName       string
	leaseNodes      int
	leaseHours      int
	leaseEnd        string
	leaseProperties string
)

var leaseCommand = &cobra.Command{
	Use:     "lease",
	GroupID: "testbed",
	Short:   "Manage Blazar bare-metal leases",
	Long:    `List, create and delete Blazar leases reserving physical hosts for a bounded time window.`,
}

var leaseListCommand = &cobra.Command{
	Use:   "list",
	Short: "List all leases",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunLeaseList(opts)
	},
}

var leaseCreateCommand = &cobra.Command{
	Use:   "create",
	Short: "Reserve physical hosts",
	Long: `Creates a lease starting shortly after submission. Provide either
--hours or --end; with neither, the lease runs for one day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Hammers - Lease Create"))

		name := leaseName
		if name == "" {
			name = fmt.Sprintf("lease-%.8s", uuid.New().String())
		}

		createOpts := openstack.LeaseCreateOpts{
			Name:               name,
			Nodes:              leaseNodes,
			ResourceProperties: leaseProperties,
		}
		if leaseHours > 0 {
			createOpts.Length = time.Duration(leaseHours) * time.Hour
		}
		if leaseEnd != "" {
			end, err := time.Parse("2006-01-02 15:04", leaseEnd)
			if err != nil {
				return fmt.Errorf("invalid end time '%s': must be YYYY-MM-DD HH:MM", leaseEnd)
			}
			createOpts.End = end
		}

		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunLeaseCreate(opts, createOpts)
	},
}

var leaseDeleteCommand = &cobra.Command{
	Use:   "delete <lease-id>",
	Short: "Delete a lease, releasing its reservation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := workflowOptions()
		if err != nil {
			return err
		}
		return workflow.RunLeaseDelete(opts, args[0])
	},
}

func init() {
	leaseCreateCommand.Flags().StringVar(&leaseName, "name", "", "Lease name (default lease-<random>)")
	leaseCreateCommand.Flags().IntVar(&leaseNodes, "nodes", 1, "Number of physical hosts to reserve")
	leaseCreateCommand.Flags().IntVar(&leaseHours, "hours", 0, "Lease length in hours (default 24)")
	leaseCreateCommand.Flags().StringVar(&leaseEnd, "end", "", "Lease end time, YYYY-MM-DD HH:MM UTC (alternative to --hours)")
	leaseCreateCommand.Flags().StringVar(&leaseProperties, "resource-properties", "", "Blazar resource constraint expression")

	leaseCommand.AddCommand(leaseListCommand)
	leaseCommand.AddCommand(leaseCreateCommand)
	leaseCommand.AddCommand(leaseDeleteCommand)
	rootCommand.AddCommand(leaseCommand)
}
