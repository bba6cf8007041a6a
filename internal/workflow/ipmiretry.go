package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/ledger"
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/chameleoncloud/hammers-go/internal/reap"
	"github.com/gophercloud/gophercloud/v2/openstack/baremetal/v1/nodes"
)

const ipmiRetrySubcommand = "ipmi-retry"

// RunIPMIRetry kicks Ironic nodes stuck in a known IPMI error state.
// Each node gets at most the ledger ceiling of automated resets; the
// attempt history rides on the node's extra field. Nodes at the ceiling
// are reported as abstained rather than reset again.
func RunIPMIRetry(opts Options, doReset bool, dryRun bool, verbose bool) error {
	logger := opts.runLogger(ipmiRetrySubcommand)
	logger.Info("Initializing IPMI retry workflow", "dry_run", dryRun)

	ctx, cancel := opts.newContext()
	defer cancel()

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	allNodes, err := client.ListNodes(ctx)
	if err != nil {
		logger.Error("Failed to list nodes", "error", err)
		return err
	}

	byID := make(map[string]nodes.Node, len(allNodes))
	view := make([]reap.Node, 0, len(allNodes))
	records := make(map[string]ledger.Record)
	for _, n := range allNodes {
		byID[n.UUID] = n
		view = append(view, reap.Node{
			ID:             n.UUID,
			InstanceID:     n.InstanceUUID,
			ProvisionState: n.ProvisionState,
			LastError:      n.LastError,
			Maintenance:    n.Maintenance,
		})
		if rec, err := ledger.ParseRecord(n.Extra); err == nil && rec.Count() > 0 {
			records[n.UUID] = rec
		}
	}

	curable := reap.CurableNodes(view)
	logger.Info("Node scan complete", "curable", len(curable))

	if !doReset {
		fmt.Printf("%d node(s) in a state that we can treat\n", len(curable))
		for _, c := range curable {
			n := byID[c.ID]
			fmt.Println(strings.Repeat("-", 40))
			fmt.Printf("%-25s %s\n", "uuid", n.UUID)
			fmt.Printf("%-25s %s\n", "provision_updated_at", n.ProvisionUpdatedAt)
			fmt.Printf("%-25s %s\n", "provision_state", n.ProvisionState)
			fmt.Printf("%-25s %s\n", "last_error", n.LastError)
			fmt.Printf("%-25s %s\n", "instance_uuid", n.InstanceUUID)
			fmt.Printf("%-25s %v\n", "extra", n.Extra)
			fmt.Printf("%-25s %v\n", "maintenance", n.Maintenance)
		}
		return nil
	}

	resetter := &ledger.Resetter{
		Store:   &openstack.NodeLedger{Client: client},
		Ceiling: ledger.DefaultCeiling,
		DryRun:  dryRun,
		Action: func(actionCtx context.Context, nodeID string) error {
			return client.SetNodeProvisionState(actionCtx, nodeID, nodes.TargetDeleted)
		},
	}

	// Nodes that left the error state with attempts still on the books
	// get their history cleared, re-arming the ceiling. Without this a
	// manually repaired node would be refused forever on its next
	// failure.
	for _, id := range recoveredNodeIDs(view, records) {
		if err := resetter.Recover(ctx, id); err != nil {
			logger.Error("Failed to clear reset history", "node_id", id, "error", err)
			continue
		}
		logger.Info("Cleared reset history of recovered node", "node_id", id, "attempts", records[id].Count())
	}

	if len(curable) == 0 {
		if verbose {
			fmt.Println("Nothing to do.")
			opts.notify(logger, ipmiRetrySubcommand, "Nothing to do.", notifications.ColorInfo)
		}
		return nil
	}

	var lines []string
	lines = append(lines, "Ironic nodes in correctable error states")
	for _, c := range curable {
		lines = append(lines, fmt.Sprintf(" • `%s`: \"%s\"", c.ID, c.LastError))
	}
	opts.notify(logger, ipmiRetrySubcommand, strings.Join(lines, "\n"), notifications.ColorError)

	type resetResult struct {
		nodeID  string
		attempt int
	}
	var resetOK []resetResult
	var exhausted []string

	now := time.Now().UTC()
	for _, c := range curable {
		if ctx.Err() != nil {
			logger.Warn("Workflow timed out, stopping early")
			return ctx.Err()
		}

		attempt, err := resetter.Reset(ctx, c.ID, now)
		switch {
		case errors.Is(err, ledger.ErrExhausted):
			logger.Warn("Node at reset ceiling, abstaining", "node_id", c.ID, "attempts", attempt)
			exhausted = append(exhausted, c.ID)
		case err != nil:
			logger.Error("Failed to reset node", "node_id", c.ID, "error", err)
		default:
			logger.Info("Commanded node reset", "node_id", c.ID, "attempt", attempt)
			resetOK = append(resetOK, resetResult{nodeID: c.ID, attempt: attempt})
		}
	}

	fmt.Printf("Attempted to fix: %d node(s)\n", len(resetOK))
	fmt.Printf("Refused to fix:   %d node(s)\n", len(exhausted))

	var report []string
	if len(resetOK) > 0 {
		report = append(report, "Attempted reset of nodes")
		for _, r := range resetOK {
			report = append(report, fmt.Sprintf(" • `%s`: %d resets", r.nodeID, r.attempt))
		}
	}
	if len(exhausted) > 0 {
		report = append(report, "Abstained (already at limit)")
		for _, id := range exhausted {
			report = append(report, fmt.Sprintf(" • `%s`", id))
		}
	}

	color := notifications.ColorSuccess
	if len(exhausted) > 0 {
		color = notifications.ColorWarning
	}
	opts.notify(logger, ipmiRetrySubcommand, strings.Join(report, "\n"), color)

	logger.Info("IPMI retry workflow completed", "reset", len(resetOK), "exhausted", len(exhausted))
	return nil
}

// recoveredNodeIDs returns the nodes holding a reset record despite no
// longer being in the error state, sorted by ID.
func recoveredNodeIDs(nodes []reap.Node, records map[string]ledger.Record) []string {
	var recovered []string
	for _, n := range nodes {
		if n.ProvisionState == "error" {
			continue
		}
		if records[n.ID].Count() == 0 {
			continue
		}
		recovered = append(recovered, n.ID)
	}
	sort.Strings(recovered)
	return recovered
}
