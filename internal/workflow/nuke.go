package workflow

import (
	"fmt"
)

const networkSubcommand = "network"

// RunNetworkNuke tears down an isolated network and everything hanging
// off it: router interfaces first, then the router, the subnets, and
// finally the network itself. Each step is best-effort so a partially
// torn-down network can be nuked again. With info set, the plan is
// printed and nothing is touched.
func RunNetworkNuke(opts Options, nameOrID string, info bool) error {
	logger := opts.runLogger(networkSubcommand).With("network", nameOrID)
	logger.Info("Initializing network teardown workflow")

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	network, err := client.FindNetwork(ctx, nameOrID)
	if err != nil {
		logger.Error("Failed to resolve network", "error", err)
		return err
	}
	logger = logger.With("network_id", network.ID)

	// A router shows up as the device behind the network's
	// router_interface ports.
	networkPorts, err := client.ListPorts(ctx, network.ID)
	if err != nil {
		logger.Error("Failed to list network ports", "error", err)
		return err
	}

	routerID := ""
	routerSubnets := make(map[string]struct{})
	for _, p := range networkPorts {
		if p.DeviceOwner != "network:router_interface" {
			continue
		}
		routerID = p.DeviceID
		for _, fixedIP := range p.FixedIPs {
			routerSubnets[fixedIP.SubnetID] = struct{}{}
		}
	}

	subnets, err := client.ListSubnets(ctx, network.ID)
	if err != nil {
		logger.Error("Failed to list subnets", "error", err)
		return err
	}

	if info {
		fmt.Printf("Would nuke network %s (%s)\n", network.Name, network.ID)
		if routerID != "" {
			fmt.Printf("  router %s (%d attached subnet(s))\n", routerID, len(routerSubnets))
		}
		for _, s := range subnets {
			fmt.Printf("  subnet %s (%s)\n", s.ID, s.CIDR)
		}
		return nil
	}

	if routerID != "" {
		for subnetID := range routerSubnets {
			if err := client.RemoveRouterSubnet(ctx, routerID, subnetID); err != nil {
				logger.Error("Failed to detach subnet from router", "router_id", routerID, "subnet_id", subnetID, "error", err)
				continue
			}
			logger.Info("Detached subnet from router", "router_id", routerID, "subnet_id", subnetID)
		}

		if err := client.DeleteRouter(ctx, routerID); err != nil {
			logger.Error("Failed to delete router", "router_id", routerID, "error", err)
		} else {
			logger.Info("Deleted router", "router_id", routerID)
		}
	}

	for _, s := range subnets {
		if err := client.DeleteSubnet(ctx, s.ID); err != nil {
			logger.Error("Failed to delete subnet", "subnet_id", s.ID, "error", err)
			continue
		}
		logger.Info("Deleted subnet", "subnet_id", s.ID)
	}

	if err := client.DeleteNetwork(ctx, network.ID); err != nil {
		logger.Error("Failed to delete network", "error", err)
		return err
	}
	logger.Info("Deleted network")

	return nil
}
