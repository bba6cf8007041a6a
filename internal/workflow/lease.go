package workflow

import (
	"fmt"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
)

const leaseSubcommand = "lease"

// RunLeaseList prints every Blazar lease visible to the project.
func RunLeaseList(opts Options) error {
	logger := opts.runLogger(leaseSubcommand)

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	leases, err := client.ListLeases(ctx)
	if err != nil {
		logger.Error("Failed to list leases", "error", err)
		return err
	}

	if len(leases) == 0 {
		fmt.Println("No leases.")
		return nil
	}

	for _, l := range leases {
		fmt.Printf("%s  %-20s  %-10s  %s → %s\n", l.ID, l.Name, l.Status, l.StartDate, l.EndDate)
	}
	return nil
}

// RunLeaseCreate reserves bare-metal hosts via Blazar and reports the
// resulting lease.
func RunLeaseCreate(opts Options, createOpts openstack.LeaseCreateOpts) error {
	logger := opts.runLogger(leaseSubcommand).With("lease_name", createOpts.Name, "nodes", createOpts.Nodes)
	logger.Info("Creating lease")

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	lease, err := client.CreateLease(ctx, createOpts)
	if err != nil {
		logger.Error("Failed to create lease", "error", err)
		return err
	}

	logger.Info("Lease created", "lease_id", lease.ID, "start", lease.StartDate, "end", lease.EndDate)
	fmt.Printf("%s  %s  %s → %s\n", lease.ID, lease.Name, lease.StartDate, lease.EndDate)
	return nil
}

// RunLeaseDelete removes a lease, releasing its reservation.
func RunLeaseDelete(opts Options, leaseID string) error {
	logger := opts.runLogger(leaseSubcommand).With("lease_id", leaseID)
	logger.Info("Deleting lease")

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	if err := client.DeleteLease(ctx, leaseID); err != nil {
		logger.Error("Failed to delete lease", "error", err)
		return err
	}

	logger.Info("Lease deleted")
	return nil
}
