package openstack

import (
	"context"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/floatingips"
)

// ListFloatingIPs fetches every floating IP visible to the
// authenticated project, across all pages.
func (c *Client) ListFloatingIPs(ctx context.Context) ([]floatingips.FloatingIP, error) {
	var result []floatingips.FloatingIP

	listOperation := func(innerCtx context.Context) error {
		pages, err := floatingips.List(c.NetworkClient, floatingips.ListOpts{}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		ips, err := floatingips.ExtractFloatingIPs(pages)
		if err != nil {
			return err
		}

		result = ips
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListFloatingIPs", listOperation); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteFloatingIP releases a floating IP back to the pool. A 404 is
// not an error; someone else already released it.
func (c *Client) DeleteFloatingIP(ctx context.Context, id string) error {
	deleteOperation := func(innerCtx context.Context) error {
		err := floatingips.Delete(innerCtx, c.NetworkClient, id).ExtractErr()
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "DeleteFloatingIP", deleteOperation)
}
