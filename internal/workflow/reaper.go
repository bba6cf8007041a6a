package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/chameleoncloud/hammers-go/internal/reap"
)

const reaperSubcommand = "neutron-reaper"

// ReaperKind selects which Neutron resource class to reclaim.
type ReaperKind string

const (
	ReapIPs   ReaperKind = "ip"
	ReapPorts ReaperKind = "port"
)

// ReaperMode selects what the reaper does with its findings.
type ReaperMode int

const (
	// ModeCommands prints one delete command per resource for piping
	// into the Neutron client. Nothing is mutated.
	ModeCommands ReaperMode = iota
	// ModeInfo prints a detailed per-project report. Nothing is
	// mutated.
	ModeInfo
	// ModeDelete performs the API deletions directly.
	ModeDelete
)

var reaperCommands = map[ReaperKind]string{
	ReapIPs:   "floatingip-delete",
	ReapPorts: "port-delete",
}

var reaperNouns = map[ReaperKind]string{
	ReapIPs:   "floating IP",
	ReapPorts: "port",
}

// Candidate is a Neutron resource under consideration for reclamation.
type Candidate struct {
	ID           string
	ProjectID    string
	Status       string
	LastActivity time.Time
}

// Reapable applies the reclamation policy to a candidate set: the
// owning project must have no live instances, no future reservation,
// and must not be whitelisted (by ID or name), and the project must have
// been idle for at least graceDays. Idleness is judged at the project
// level: the later of the resource's own activity and the project's most
// recent activity (projectActivity, e.g. the last server update seen for
// it) must clear the grace period, so a project whose last instance was
// deleted yesterday keeps its older resources. Results are sorted by
// project then ID.
func Reapable(
	candidates []Candidate,
	activeProjects map[string]struct{},
	reservedProjects map[string]struct{},
	whitelist map[string]struct{},
	projectNames map[string]string,
	projectActivity map[string]time.Time,
	now time.Time,
	graceDays float64,
) []Candidate {
	var eligible []Candidate

	for _, c := range candidates {
		if _, ok := activeProjects[c.ProjectID]; ok {
			continue
		}
		if _, ok := reservedProjects[reap.NormalizeProject(c.ProjectID)]; ok {
			continue
		}
		if reap.Whitelisted(whitelist, c.ProjectID, projectNames[c.ProjectID]) {
			continue
		}
		last := c.LastActivity
		if activity := projectActivity[c.ProjectID]; activity.After(last) {
			last = activity
		}
		if !reap.Eligible(now, last, graceDays) {
			continue
		}
		eligible = append(eligible, c)
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].ProjectID != eligible[j].ProjectID {
			return eligible[i].ProjectID < eligible[j].ProjectID
		}
		return eligible[i].ID < eligible[j].ID
	})
	return eligible
}

// blazarDateLayouts are the timestamp formats Blazar has been seen to
// emit.
var blazarDateLayouts = []string{
	"2006-01-02T15:04:05.000000",
	time.RFC3339,
	"2006-01-02 15:04",
}

func parseBlazarDate(s string) (time.Time, bool) {
	for _, layout := range blazarDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RunNeutronReaper reclaims floating IPs or ports belonging to idle
// projects. See ReaperMode for the three output behaviors.
func RunNeutronReaper(opts Options, kind ReaperKind, graceDays float64, mode ReaperMode, whitelistPath string) error {
	logger := opts.runLogger(reaperSubcommand).With("resource", string(kind), "grace_days", graceDays)
	logger.Info("Initializing reaper workflow")

	ctx, cancel := opts.newContext()
	defer cancel()

	whitelist := map[string]struct{}{}
	if whitelistPath != "" {
		var err error
		whitelist, err = reap.LoadWhitelist(whitelistPath)
		if err != nil {
			logger.Error("Failed to read whitelist", "error", err)
			return err
		}
		logger.Debug("Whitelist loaded", "entries", len(whitelist))
	}

	client, err := opts.initClient(logger)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	// Projects with any live instance are active and untouchable; every
	// server sighting, live or not, counts as project activity so a
	// recently emptied project is not reaped the same day.
	servers, err := client.ListServers(ctx)
	if err != nil {
		logger.Error("Failed to list servers", "error", err)
		return err
	}
	activeProjects := make(map[string]struct{})
	projectActivity := make(map[string]time.Time)
	for _, s := range servers {
		switch s.Status {
		case "DELETED", "SOFT_DELETED", "ERROR":
		default:
			activeProjects[s.TenantID] = struct{}{}
		}
		if s.Updated.After(projectActivity[s.TenantID]) {
			projectActivity[s.TenantID] = s.Updated
		}
	}

	// Projects holding a future lease get the benefit of the doubt.
	reservedProjects := make(map[string]struct{})
	leases, err := client.ListLeases(ctx)
	if err != nil {
		// KVM sites have no Blazar; skip the check there.
		logger.Debug("Skipping future-reservation check", "error", err)
	} else {
		for _, l := range leases {
			if start, ok := parseBlazarDate(l.StartDate); ok && start.After(now) {
				reservedProjects[reap.NormalizeProject(l.ProjectID)] = struct{}{}
			}
		}
	}

	projectNames, err := client.ProjectNames(ctx)
	if err != nil {
		logger.Warn("Failed to list projects, whitelist matches IDs only", "error", err)
		projectNames = map[string]string{}
	}

	candidates, err := listReaperCandidates(ctx, client, kind)
	if err != nil {
		logger.Error("Failed to list resources", "error", err)
		return err
	}

	eligible := Reapable(candidates, activeProjects, reservedProjects, whitelist, projectNames, projectActivity, now, graceDays)
	logger.Info("Reaper evaluation complete", "candidates", len(candidates), "eligible", len(eligible))

	if mode == ModeInfo {
		printReaperReport(eligible, projectNames, now)
		return nil
	}

	if err := executeReaperMode(ctx, logger, client, kind, mode, eligible); err != nil {
		return err
	}

	opts.notify(logger, reaperSubcommand, reaperSummary(kind, len(eligible), graceDays), reaperColor(len(eligible)))
	logger.Info("Reaper workflow completed")
	return nil
}

// reaperDeleter is the mutating slice of the client the reaper needs.
// Only ModeDelete ever calls it.
type reaperDeleter interface {
	DeleteFloatingIP(ctx context.Context, id string) error
	DeletePort(ctx context.Context, id string) error
}

// executeReaperMode carries out the chosen mode over the eligible set.
// ModeCommands only prints; only ModeDelete touches the deleter.
func executeReaperMode(ctx context.Context, logger *slog.Logger, deleter reaperDeleter, kind ReaperKind, mode ReaperMode, eligible []Candidate) error {
	switch mode {
	case ModeCommands:
		for _, c := range eligible {
			fmt.Printf("%s %s\n", reaperCommands[kind], c.ID)
		}

	case ModeDelete:
		for _, c := range eligible {
			if ctx.Err() != nil {
				logger.Warn("Workflow timed out, stopping early")
				return ctx.Err()
			}
			if err := deleteReaperResource(ctx, deleter, kind, c.ID); err != nil {
				logger.Error("Failed to delete resource", "id", c.ID, "project_id", c.ProjectID, "error", err)
				continue
			}
			logger.Info("Resource deleted", "id", c.ID, "project_id", c.ProjectID)
		}
	}

	return nil
}

func listReaperCandidates(ctx context.Context, client *openstack.Client, kind ReaperKind) ([]Candidate, error) {
	switch kind {
	case ReapIPs:
		ips, err := client.ListFloatingIPs(ctx)
		if err != nil {
			return nil, err
		}
		var candidates []Candidate
		for _, ip := range ips {
			if ip.Status != "DOWN" {
				continue
			}
			candidates = append(candidates, Candidate{
				ID:           ip.ID,
				ProjectID:    ip.ProjectID,
				Status:       ip.Status,
				LastActivity: lastActivity(ip.UpdatedAt, ip.CreatedAt),
			})
		}
		return candidates, nil

	case ReapPorts:
		ports, err := client.ListPorts(ctx, "")
		if err != nil {
			return nil, err
		}
		var candidates []Candidate
		for _, p := range ports {
			if p.DeviceOwner != "" {
				continue
			}
			candidates = append(candidates, Candidate{
				ID:           p.ID,
				ProjectID:    p.ProjectID,
				Status:       p.Status,
				LastActivity: lastActivity(p.UpdatedAt, p.CreatedAt),
			})
		}
		return candidates, nil

	default:
		return nil, fmt.Errorf("unknown resource kind '%s'", kind)
	}
}

func deleteReaperResource(ctx context.Context, deleter reaperDeleter, kind ReaperKind, id string) error {
	switch kind {
	case ReapIPs:
		return deleter.DeleteFloatingIP(ctx, id)
	case ReapPorts:
		return deleter.DeletePort(ctx, id)
	default:
		return fmt.Errorf("unknown resource kind '%s'", kind)
	}
}

// lastActivity prefers the update timestamp, falling back to creation
// for resources never touched since.
func lastActivity(updated, created time.Time) time.Time {
	if !updated.IsZero() {
		return updated
	}
	return created
}

func printReaperReport(eligible []Candidate, projectNames map[string]string, now time.Time) {
	if len(eligible) == 0 {
		fmt.Println("Nothing to reclaim.")
		return
	}

	currentProject := ""
	for _, c := range eligible {
		if c.ProjectID != currentProject {
			currentProject = c.ProjectID
			name := projectNames[c.ProjectID]
			if name == "" {
				name = "(unknown)"
			}
			fmt.Printf("project %s %s\n", c.ProjectID, name)
		}
		fmt.Printf("  %s  status=%s  idle=%.1f days\n", c.ID, c.Status, reap.DaysPast(now, c.LastActivity))
	}
}

func reaperSummary(kind ReaperKind, count int, graceDays float64) string {
	noun := reaperNouns[kind]
	if count != 1 {
		noun += "s"
	}
	if count > 0 {
		return fmt.Sprintf("Commanded deletion of *%d %s* (%.0f day grace-period)", count, noun, graceDays)
	}
	return fmt.Sprintf("No %s to delete (%.0f day grace-period)", noun, graceDays)
}

func reaperColor(count int) string {
	if count > 0 {
		return notifications.ColorAction
	}
	return notifications.ColorInfo
}
