package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/chameleoncloud/hammers-go/internal/reap"
	"github.com/gophercloud/gophercloud/v2/openstack/baremetal/v1/nodes"
)

const undeadSubcommand = "undead-instances"

// gatherUndeadNodes finds Ironic nodes bound to Nova instances that no
// longer exist.
func gatherUndeadNodes(ctx context.Context, client *openstack.Client) ([]reap.Node, error) {
	ironicNodes, err := client.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing ironic nodes: %w", err)
	}

	all := make([]reap.Node, 0, len(ironicNodes))
	for _, n := range ironicNodes {
		all = append(all, reap.Node{
			ID:             n.UUID,
			InstanceID:     n.InstanceUUID,
			ProvisionState: n.ProvisionState,
		})
	}

	servers, err := client.ListServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing nova instances: %w", err)
	}

	live := make(map[string]struct{}, len(servers))
	for _, s := range servers {
		live[s.ID] = struct{}{}
	}

	return reap.UndeadNodes(all, live), nil
}

// RunUndeadInstances finds Ironic nodes clinging to deleted Nova
// instances and optionally kicks them back to a clean state by sending
// the "deleted" provision target.
func RunUndeadInstances(opts Options, doDelete bool, verbose bool) error {
	logger := opts.runLogger(undeadSubcommand)
	logger.Info("Initializing undead instance workflow")

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	undead, err := gatherUndeadNodes(ctx, client)
	if err != nil {
		logger.Error("Failed to gather node data", "error", err)
		return err
	}
	logger.Info("Undead scan complete", "nodes", len(undead))

	if !doDelete {
		if len(undead) == 0 {
			fmt.Println("No zombies currently.")
			return nil
		}
		fmt.Println("ZOMBIE INSTANCES ON NODES")
		for _, n := range undead {
			fmt.Println("-----")
			fmt.Printf("Ironic Node\n  ID:       %s\n", n.ID)
			fmt.Printf("  Instance: %s\n", n.InstanceID)
			fmt.Printf("  State:    %s\n", n.ProvisionState)
		}
		return nil
	}

	if len(undead) == 0 {
		if verbose {
			opts.notify(logger, undeadSubcommand, "No Ironic nodes visibly clinging to dead instances", notifications.ColorInfo)
		}
		return nil
	}

	var lines []string
	lines = append(lines, "Possible Ironic nodes with nonexistent instances:")
	for _, n := range undead {
		lines = append(lines, fmt.Sprintf(" • node `%s` → instance `%s`", n.ID, n.InstanceID))
	}
	opts.notify(logger, undeadSubcommand, strings.Join(lines, "\n"), notifications.ColorError)

	kicked := 0
	for _, n := range undead {
		if ctx.Err() != nil {
			logger.Warn("Workflow timed out, stopping early")
			return ctx.Err()
		}
		if err := client.SetNodeProvisionState(ctx, n.ID, nodes.TargetDeleted); err != nil {
			logger.Error("Failed to command node teardown", "node_id", n.ID, "instance_id", n.InstanceID, "error", err)
			continue
		}
		logger.Info("Commanded node teardown", "node_id", n.ID, "instance_id", n.InstanceID)
		kicked++
	}

	opts.notify(logger, undeadSubcommand,
		fmt.Sprintf("Commanded state transition of %d instance(s).", kicked), notifications.ColorSuccess)
	logger.Info("Undead instance workflow completed", "kicked", kicked)
	return nil
}
