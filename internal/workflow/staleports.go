package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/chameleoncloud/hammers-go/internal/reap"
)

const stalePortsSubcommand = "stale-ports"

// gatherStalePorts computes the Neutron ports orphaned by Ironic ports
// that kept their deployment metadata after the instance went away.
func gatherStalePorts(ctx context.Context, client *openstack.Client) ([]reap.ConflictMAC, error) {
	nodes, nodePorts, neutronMACs, err := gatherPortViews(ctx, client)
	if err != nil {
		return nil, err
	}
	return reap.StalePorts(nodes, nodePorts, neutronMACs), nil
}

// RunStalePorts finds Neutron ports referring to inactive Ironic
// instances by way of Ironic ports that still carry leftover deployment
// metadata, and optionally deletes them.
func RunStalePorts(opts Options, doDelete bool, verbose bool) error {
	logger := opts.runLogger(stalePortsSubcommand)
	logger.Info("Initializing stale port workflow")

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	stale, err := gatherStalePorts(ctx, client)
	if err != nil {
		logger.Error("Failed to gather stale port data", "error", err)
		return err
	}
	logger.Info("Stale port scan complete", "stale", len(stale))

	if !doDelete {
		if len(stale) == 0 {
			fmt.Println("No stale ports currently.")
			return nil
		}
		fmt.Println("STALE PORTS")
		for _, p := range stale {
			fmt.Println("-----")
			fmt.Printf("MAC Address:     %s\n", p.MAC)
			fmt.Printf("Ironic Node ID:  %s\n", p.NodeID)
			fmt.Printf("Ironic Port ID:  %s\n", p.IronicPortID)
			fmt.Printf("Neutron Port ID: %s\n", p.NeutronPortID)
		}
		return nil
	}

	if len(stale) == 0 {
		if verbose {
			opts.notify(logger, stalePortsSubcommand, "No stale Neutron ports visible", notifications.ColorInfo)
		}
		return nil
	}

	var lines []string
	lines = append(lines, "Attempting to remove stale Neutron ports")
	for _, p := range stale {
		lines = append(lines, fmt.Sprintf(" • Neutron Port `%s` → `%s` ← Ironic Node `%s` (Port `%s`)",
			p.NeutronPortID, p.MAC, p.NodeID, p.IronicPortID))
	}
	opts.notify(logger, stalePortsSubcommand, strings.Join(lines, "\n"), notifications.ColorError)

	deleted := 0
	for _, p := range stale {
		if ctx.Err() != nil {
			logger.Warn("Workflow timed out, stopping early")
			return ctx.Err()
		}
		if err := client.DeletePort(ctx, p.NeutronPortID); err != nil {
			logger.Error("Failed to delete stale port", "port_id", p.NeutronPortID, "mac", p.MAC, "error", err)
			continue
		}
		logger.Info("Deleted stale port", "port_id", p.NeutronPortID, "mac", p.MAC)
		deleted++
	}

	opts.notify(logger, stalePortsSubcommand,
		fmt.Sprintf("Deleted %d stale neutron port(s)", deleted), notifications.ColorSuccess)
	logger.Info("Stale port workflow completed", "deleted", deleted)
	return nil
}
