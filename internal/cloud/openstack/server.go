package openstack

import (
	"context"

	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/projects"
)

// ListServers fetches Nova instances across all tenants. The janitor
// tools run with admin credentials, so the all-tenants view is the
// authoritative picture of which projects are active.
func (c *Client) ListServers(ctx context.Context) ([]servers.Server, error) {
	var result []servers.Server

	listOperation := func(innerCtx context.Context) error {
		pages, err := servers.List(c.ComputeClient, servers.ListOpts{AllTenants: true}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := servers.ExtractServers(pages)
		if err != nil {
			return err
		}

		result = all
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListServers", listOperation); err != nil {
		return nil, err
	}

	return result, nil
}

// ProjectNames returns an ID-to-name map of all Keystone projects, used
// to let whitelists refer to projects by name and to make reports
// readable.
func (c *Client) ProjectNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)

	listOperation := func(innerCtx context.Context) error {
		pages, err := projects.List(c.IdentityClient, projects.ListOpts{}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := projects.ExtractProjects(pages)
		if err != nil {
			return err
		}

		for _, p := range all {
			names[p.ID] = p.Name
		}
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListProjects", listOperation); err != nil {
		return nil, err
	}

	return names, nil
}
