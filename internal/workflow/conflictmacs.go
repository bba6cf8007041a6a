package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/chameleoncloud/hammers-go/internal/reap"
)

const conflictMACsSubcommand = "conflict-macs"

// gatherPortViews pulls the Ironic and Neutron views the port janitors
// compare: the node set, the Ironic port set, and a MAC-to-Neutron-port
// map.
func gatherPortViews(ctx context.Context, client *openstack.Client) ([]reap.Node, []reap.NodePort, map[string]string, error) {
	ironicNodes, err := client.ListNodes(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing ironic nodes: %w", err)
	}

	nodes := make([]reap.Node, 0, len(ironicNodes))
	for _, n := range ironicNodes {
		nodes = append(nodes, reap.Node{ID: n.UUID, InstanceID: n.InstanceUUID})
	}

	ironicPorts, err := client.ListNodePorts(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing ironic ports: %w", err)
	}

	nodePorts := make([]reap.NodePort, 0, len(ironicPorts))
	for _, p := range ironicPorts {
		nodePorts = append(nodePorts, reap.NodePort{ID: p.UUID, NodeID: p.NodeUUID, MACAddress: p.Address, Extra: p.Extra})
	}

	neutronPorts, err := client.ListPorts(ctx, "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing neutron ports: %w", err)
	}

	neutronMACs := make(map[string]string, len(neutronPorts))
	for _, p := range neutronPorts {
		neutronMACs[p.MACAddress] = p.ID
	}

	return nodes, nodePorts, neutronMACs, nil
}

// gatherConflictMACs computes the MAC collisions between the Ironic and
// Neutron views.
func gatherConflictMACs(ctx context.Context, client *openstack.Client) ([]reap.ConflictMAC, error) {
	nodes, nodePorts, neutronMACs, err := gatherPortViews(ctx, client)
	if err != nil {
		return nil, err
	}
	return reap.ConflictMACs(nodes, nodePorts, neutronMACs), nil
}

// RunConflictMACs finds Neutron ports whose MAC addresses collide with
// Ironic ports on instance-less nodes, and optionally deletes them.
// These orphans block the next deployment onto the node.
func RunConflictMACs(opts Options, doDelete bool, verbose bool) error {
	logger := opts.runLogger(conflictMACsSubcommand)
	logger.Info("Initializing MAC conflict workflow")

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	conflicts, err := gatherConflictMACs(ctx, client)
	if err != nil {
		logger.Error("Failed to gather conflict data", "error", err)
		return err
	}
	logger.Info("Conflict scan complete", "conflicts", len(conflicts))

	if !doDelete {
		if len(conflicts) == 0 {
			fmt.Println("No conflicts currently.")
			return nil
		}
		fmt.Println("CONFLICTS")
		for _, c := range conflicts {
			fmt.Println("-----")
			fmt.Printf("MAC Address:     %s\n", c.MAC)
			fmt.Printf("Ironic Node ID:  %s\n", c.NodeID)
			fmt.Printf("Ironic Port ID:  %s\n", c.IronicPortID)
			fmt.Printf("Neutron Port ID: %s\n", c.NeutronPortID)
		}
		return nil
	}

	if len(conflicts) == 0 {
		if verbose {
			opts.notify(logger, conflictMACsSubcommand, "No visible Ironic/Neutron MAC conflicts", notifications.ColorInfo)
		}
		return nil
	}

	var lines []string
	lines = append(lines, "Attempting to remove Ironic/Neutron MAC conflicts")
	for _, c := range conflicts {
		lines = append(lines, fmt.Sprintf(" • Neutron Port `%s` → `%s` ← Ironic Node `%s` (Port `%s`)",
			c.NeutronPortID, c.MAC, c.NodeID, c.IronicPortID))
	}
	opts.notify(logger, conflictMACsSubcommand, strings.Join(lines, "\n"), notifications.ColorError)

	deleted := 0
	for _, c := range conflicts {
		if ctx.Err() != nil {
			logger.Warn("Workflow timed out, stopping early")
			return ctx.Err()
		}
		if err := client.DeletePort(ctx, c.NeutronPortID); err != nil {
			logger.Error("Failed to delete conflicting port", "port_id", c.NeutronPortID, "mac", c.MAC, "error", err)
			continue
		}
		logger.Info("Deleted conflicting port", "port_id", c.NeutronPortID, "mac", c.MAC)
		deleted++
	}

	opts.notify(logger, conflictMACsSubcommand,
		fmt.Sprintf("Deleted %d neutron port(s)", deleted), notifications.ColorSuccess)
	logger.Info("MAC conflict workflow completed", "deleted", deleted)
	return nil
}
