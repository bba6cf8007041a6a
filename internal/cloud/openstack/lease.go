package openstack

import (
	"context"
	"fmt"
	"time"

	"github.com/gophercloud/gophercloud/v2"
)

// blazarTimeFormat is the timestamp layout the Blazar API expects in
// create requests.
const blazarTimeFormat = "2006-01-02 15:04"

// DefaultLeaseLength is used when neither a length nor an end time is
// given.
const DefaultLeaseLength = 24 * time.Hour

// leaseStartLead pads the start time so the lease does not begin in the
// past by the time Blazar processes the request.
const leaseStartLead = 70 * time.Second

// Lease is a Blazar reservation of bare-metal resources for a bounded
// time window. Blazar reports timestamps as opaque strings; the janitor
// tools only display them, so they are kept as-is.
type Lease struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Status    string           `json:"status"`
	ProjectID string           `json:"project_id"`
	Resources []map[string]any `json:"reservations"`
}

// LeaseCreateOpts describes a new lease for a number of physical hosts.
type LeaseCreateOpts struct {
	Name string
	// Start defaults to now plus a small lead.
	Start time.Time
	// End defaults to Start + Length (or DefaultLeaseLength).
	End    time.Time
	Length time.Duration
	// Nodes is the host count; reservation min and max are both set to
	// it.
	Nodes int
	// ResourceProperties is a Blazar constraint expression, e.g.
	// ["=", "$node_type", "compute"]. Empty means any host.
	ResourceProperties string
}

// ToLeaseCreateMap normalizes the options and builds the request body.
func (opts LeaseCreateOpts) ToLeaseCreateMap(now time.Time) (map[string]any, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("lease name is required")
	}
	if opts.Nodes <= 0 {
		return nil, fmt.Errorf("lease needs at least one node")
	}
	if !opts.End.IsZero() && opts.Length != 0 {
		return nil, fmt.Errorf("provide either a length or an end time, not both")
	}

	start := opts.Start
	if start.IsZero() {
		start = now.UTC().Add(leaseStartLead)
	}

	end := opts.End
	if end.IsZero() {
		length := opts.Length
		if length == 0 {
			length = DefaultLeaseLength
		}
		end = start.Add(length)
	}

	if !end.After(start) {
		return nil, fmt.Errorf("lease end %s is not after start %s", end, start)
	}

	return map[string]any{
		"name":  opts.Name,
		"start": start.UTC().Format(blazarTimeFormat),
		"end":   end.UTC().Format(blazarTimeFormat),
		"reservations": []map[string]any{{
			"resource_type":         "physical:host",
			"resource_properties":   opts.ResourceProperties,
			"hypervisor_properties": "",
			"min":                   fmt.Sprint(opts.Nodes),
			"max":                   fmt.Sprint(opts.Nodes),
		}},
		"events": []any{},
	}, nil
}

// ListLeases fetches all leases from Blazar.
func (c *Client) ListLeases(ctx context.Context) ([]Lease, error) {
	client, err := c.reservationClient()
	if err != nil {
		return nil, err
	}

	var body struct {
		Leases []Lease `json:"leases"`
	}

	listOperation := func(innerCtx context.Context) error {
		_, err := client.Get(innerCtx, client.ServiceURL("leases"), &body, &gophercloud.RequestOpts{
			OkCodes: []int{200},
		})
		return err
	}

	if err := c.executeWithRetry(ctx, "ListLeases", listOperation); err != nil {
		return nil, err
	}

	return body.Leases, nil
}

// GetLease fetches a single lease by ID.
func (c *Client) GetLease(ctx context.Context, id string) (Lease, error) {
	client, err := c.reservationClient()
	if err != nil {
		return Lease{}, err
	}

	var body struct {
		Lease Lease `json:"lease"`
	}

	getOperation := func(innerCtx context.Context) error {
		_, err := client.Get(innerCtx, client.ServiceURL("leases", id), &body, &gophercloud.RequestOpts{
			OkCodes: []int{200},
		})
		return err
	}

	if err := c.executeWithRetry(ctx, "GetLease", getOperation); err != nil {
		return Lease{}, err
	}

	return body.Lease, nil
}

// CreateLease submits a new lease and returns Blazar's view of it.
func (c *Client) CreateLease(ctx context.Context, opts LeaseCreateOpts) (Lease, error) {
	client, err := c.reservationClient()
	if err != nil {
		return Lease{}, err
	}

	request, err := opts.ToLeaseCreateMap(time.Now())
	if err != nil {
		return Lease{}, err
	}

	var body struct {
		Lease Lease `json:"lease"`
	}

	createOperation := func(innerCtx context.Context) error {
		_, err := client.Post(innerCtx, client.ServiceURL("leases"), request, &body, &gophercloud.RequestOpts{
			OkCodes: []int{200, 201, 202},
		})
		return err
	}

	if err := c.executeWithRetry(ctx, "CreateLease", createOperation); err != nil {
		return Lease{}, err
	}

	return body.Lease, nil
}

// DeleteLease removes a lease, releasing its reservation.
func (c *Client) DeleteLease(ctx context.Context, id string) error {
	client, err := c.reservationClient()
	if err != nil {
		return err
	}

	deleteOperation := func(innerCtx context.Context) error {
		_, err := client.Delete(innerCtx, client.ServiceURL("leases", id), &gophercloud.RequestOpts{
			OkCodes: []int{200, 202, 204},
		})
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return c.executeWithRetry(ctx, "DeleteLease", deleteOperation)
}
