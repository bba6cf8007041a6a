package openstack

import (
	"context"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"
)

// ListPorts fetches all Neutron ports, optionally filtered by network.
func (c *Client) ListPorts(ctx context.Context, networkID string) ([]ports.Port, error) {
	var result []ports.Port

	listOperation := func(innerCtx context.Context) error {
		opts := ports.ListOpts{}
		if networkID != "" {
			opts.NetworkID = networkID
		}

		pages, err := ports.List(c.NetworkClient, opts).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := ports.ExtractPorts(pages)
		if err != nil {
			return err
		}

		result = all
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListPorts", listOperation); err != nil {
		return nil, err
	}

	return result, nil
}

// DeletePort removes a Neutron port. Already-gone ports are treated as
// success.
func (c *Client) DeletePort(ctx context.Context, id string) error {
	deleteOperation := func(innerCtx context.Context) error {
		err := ports.Delete(innerCtx, c.NetworkClient, id).ExtractErr()
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "DeletePort", deleteOperation)
}
