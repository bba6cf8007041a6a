package openstack

import (
	"context"
	"fmt"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/ledger"
	"github.com/gophercloud/gophercloud/v2/openstack/baremetal/v1/nodes"
	bmports "github.com/gophercloud/gophercloud/v2/openstack/baremetal/v1/ports"
)

// ListNodes fetches all Ironic nodes with full details (provision
// state, last error, extra metadata).
func (c *Client) ListNodes(ctx context.Context) ([]nodes.Node, error) {
	var result []nodes.Node

	listOperation := func(innerCtx context.Context) error {
		pages, err := nodes.ListDetail(c.BareMetalClient, nodes.ListOpts{}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := nodes.ExtractNodes(pages)
		if err != nil {
			return err
		}

		result = all
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListNodes", listOperation); err != nil {
		return nil, err
	}

	return result, nil
}

// ListNodePorts fetches all Ironic ports (physical NICs) with details,
// including the owning node UUID.
func (c *Client) ListNodePorts(ctx context.Context) ([]bmports.Port, error) {
	var result []bmports.Port

	listOperation := func(innerCtx context.Context) error {
		pages, err := bmports.ListDetail(c.BareMetalClient, bmports.ListOpts{}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := bmports.ExtractPorts(pages)
		if err != nil {
			return err
		}

		result = all
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListNodePorts", listOperation); err != nil {
		return nil, err
	}

	return result, nil
}

// GetNode fetches one Ironic node by UUID.
func (c *Client) GetNode(ctx context.Context, id string) (nodes.Node, error) {
	var result nodes.Node

	getOperation := func(innerCtx context.Context) error {
		node, err := nodes.Get(innerCtx, c.BareMetalClient, id).Extract()
		if err != nil {
			return err
		}
		result = *node
		return nil
	}

	if err := c.executeWithRetry(ctx, "GetNode", getOperation); err != nil {
		return nodes.Node{}, err
	}

	return result, nil
}

// SetNodeProvisionState requests a provision state transition. The
// janitor tools only ever send "deleted", which tears the node back
// down to available.
func (c *Client) SetNodeProvisionState(ctx context.Context, id string, target nodes.TargetProvisionState) error {
	stateOperation := func(innerCtx context.Context) error {
		return nodes.ChangeProvisionState(innerCtx, c.BareMetalClient, id, nodes.ProvisionStateOpts{
			Target: target,
		}).ExtractErr()
	}

	return c.executeWithRetry(ctx, fmt.Sprintf("SetNodeProvisionState(%s)", target), stateOperation)
}

// patchNodeExtra applies a JSON-patch style update to a node. Ironic
// returns 409 when a patch races a provision state transition, so those
// are retried a few times with a short ramp before giving up.
func (c *Client) patchNodeExtra(ctx context.Context, id string, ops nodes.UpdateOpts) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err = nodes.Update(ctx, c.BareMetalClient, id, ops).Extract()
		if err == nil || !IsConflict(err) {
			return err
		}

		select {
		case <-time.After(time.Duration(attempt) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// NodeLedger is the ledger.Store implementation backed by the Ironic
// node extra field. State lives with the node itself, so no local
// database is needed and every site operator sees the same history.
type NodeLedger struct {
	Client *Client
	// Key is the extra-field entry holding the attempt timestamps.
	// Defaults to ledger.ExtraKey.
	Key string
}

func (l *NodeLedger) key() string {
	if l.Key == "" {
		return ledger.ExtraKey
	}
	return l.Key
}

// Read fetches the node and decodes its attempt record. A node with no
// record reads as healthy.
func (l *NodeLedger) Read(ctx context.Context, nodeID string) (ledger.Record, error) {
	node, err := l.Client.GetNode(ctx, nodeID)
	if err != nil {
		return ledger.Record{}, err
	}
	return ledger.ParseRecord(node.Extra)
}

// Mark appends one attempt timestamp. The first mark creates the list;
// later marks append to it, matching a JSON-patch "add" on the list
// tail. This is a read-modify-write against remote state; a lost update
// under concurrent invocations is accepted.
func (l *NodeLedger) Mark(ctx context.Context, nodeID string, at time.Time) error {
	rec, err := l.Read(ctx, nodeID)
	if err != nil {
		return err
	}

	var op nodes.UpdateOperation
	if rec.Count() == 0 {
		op = nodes.UpdateOperation{
			Op:    nodes.AddOp,
			Path:  "/extra/" + l.key(),
			Value: []string{at.UTC().Format(time.RFC3339)},
		}
	} else {
		op = nodes.UpdateOperation{
			Op:    nodes.AddOp,
			Path:  "/extra/" + l.key() + "/-",
			Value: at.UTC().Format(time.RFC3339),
		}
	}

	return l.Client.patchNodeExtra(ctx, nodeID, nodes.UpdateOpts{op})
}

// Clear removes the attempt record entirely. Clearing an absent record
// is a no-op.
func (l *NodeLedger) Clear(ctx context.Context, nodeID string) error {
	rec, err := l.Read(ctx, nodeID)
	if err != nil {
		return err
	}
	if rec.Count() == 0 {
		return nil
	}

	return l.Client.patchNodeExtra(ctx, nodeID, nodes.UpdateOpts{
		nodes.UpdateOperation{
			Op:   nodes.RemoveOp,
			Path: "/extra/" + l.key(),
		},
	})
}
