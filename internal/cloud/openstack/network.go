package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/routers"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/subnets"
)

// FindNetwork resolves a network by ID or, failing that, by unique
// name.
func (c *Client) FindNetwork(ctx context.Context, nameOrID string) (networks.Network, error) {
	var result networks.Network

	findOperation := func(innerCtx context.Context) error {
		if network, err := networks.Get(innerCtx, c.NetworkClient, nameOrID).Extract(); err == nil {
			result = *network
			return nil
		} else if !IsNotFound(err) {
			return err
		}

		pages, err := networks.List(c.NetworkClient, networks.ListOpts{Name: nameOrID}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		matches, err := networks.ExtractNetworks(pages)
		if err != nil {
			return err
		}

		switch len(matches) {
		case 0:
			return fmt.Errorf("no network found with name or ID '%s'", nameOrID)
		case 1:
			result = matches[0]
			return nil
		default:
			return fmt.Errorf("multiple networks named '%s', use the ID", nameOrID)
		}
	}

	if err := c.executeWithRetry(ctx, "FindNetwork", findOperation); err != nil {
		return networks.Network{}, err
	}

	return result, nil
}

// ListSubnets fetches the subnets of one network.
func (c *Client) ListSubnets(ctx context.Context, networkID string) ([]subnets.Subnet, error) {
	var result []subnets.Subnet

	listOperation := func(innerCtx context.Context) error {
		pages, err := subnets.List(c.NetworkClient, subnets.ListOpts{NetworkID: networkID}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := subnets.ExtractSubnets(pages)
		if err != nil {
			return err
		}

		result = all
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListSubnets", listOperation); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteSubnet removes a subnet.
func (c *Client) DeleteSubnet(ctx context.Context, id string) error {
	deleteOperation := func(innerCtx context.Context) error {
		err := subnets.Delete(innerCtx, c.NetworkClient, id).ExtractErr()
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "DeleteSubnet", deleteOperation)
}

// DeleteNetwork removes a network. All its ports and subnets must be
// gone first.
func (c *Client) DeleteNetwork(ctx context.Context, id string) error {
	deleteOperation := func(innerCtx context.Context) error {
		err := networks.Delete(innerCtx, c.NetworkClient, id).ExtractErr()
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "DeleteNetwork", deleteOperation)
}

// RemoveRouterSubnet detaches a subnet's interface from a router.
func (c *Client) RemoveRouterSubnet(ctx context.Context, routerID, subnetID string) error {
	removeOperation := func(innerCtx context.Context) error {
		_, err := routers.RemoveInterface(innerCtx, c.NetworkClient, routerID, routers.RemoveInterfaceOpts{
			SubnetID: subnetID,
		}).Extract()
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "RemoveRouterSubnet", removeOperation)
}

// DeleteRouter removes a router once its interfaces are detached.
func (c *Client) DeleteRouter(ctx context.Context, id string) error {
	deleteOperation := func(innerCtx context.Context) error {
		err := routers.Delete(innerCtx, c.NetworkClient, id).ExtractErr()
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "DeleteRouter", deleteOperation)
}
