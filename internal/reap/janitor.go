package reap

import (
	"regexp"
	"sort"
)

// Node is the subset of an Ironic bare-metal node the janitor logic
// inspects. InstanceID is empty when no Nova instance is bound.
type Node struct {
	ID             string
	InstanceID     string
	ProvisionState string
	LastError      string
	Maintenance    bool
}

// NodePort is an Ironic port: a physical NIC belonging to a node. Extra
// holds leftover deployment metadata; a populated Extra on an
// instance-less node marks the port as stale.
type NodePort struct {
	ID         string
	NodeID     string
	MACAddress string
	Extra      map[string]any
}

// ConflictMAC describes a MAC address claimed both by a Neutron port and
// by an Ironic port whose node has no active instance. The Neutron port
// is the orphan to be removed.
type ConflictMAC struct {
	MAC           string
	NodeID        string
	IronicPortID  string
	NeutronPortID string
}

// ConflictMACs computes the orphan Neutron ports: ports whose MAC
// address also belongs to an Ironic port on a node with no instance
// bound. neutronMACs maps MAC address to Neutron port ID. Results are
// sorted by MAC for stable output.
func ConflictMACs(nodes []Node, ironicPorts []NodePort, neutronMACs map[string]string) []ConflictMAC {
	inactive := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.InstanceID == "" {
			inactive[n.ID] = struct{}{}
		}
	}

	var conflicts []ConflictMAC
	for _, p := range ironicPorts {
		if _, ok := inactive[p.NodeID]; !ok {
			continue
		}
		neutronPortID, ok := neutronMACs[p.MACAddress]
		if !ok {
			continue
		}
		conflicts = append(conflicts, ConflictMAC{
			MAC:           p.MACAddress,
			NodeID:        p.NodeID,
			IronicPortID:  p.ID,
			NeutronPortID: neutronPortID,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].MAC < conflicts[j].MAC })
	return conflicts
}

// StalePorts narrows the conflict computation to Ironic ports still
// carrying extra metadata from a previous deployment. Those ports were
// never fully cleaned up; the matching Neutron ports are the orphans.
func StalePorts(nodes []Node, ironicPorts []NodePort, neutronMACs map[string]string) []ConflictMAC {
	var stale []NodePort
	for _, p := range ironicPorts {
		if len(p.Extra) > 0 {
			stale = append(stale, p)
		}
	}
	return ConflictMACs(nodes, stale, neutronMACs)
}

// UndeadNodes returns the nodes still clinging to a Nova instance that
// no longer exists. liveInstances is the set of instance IDs currently
// known to Nova. Results are sorted by node ID.
func UndeadNodes(nodes []Node, liveInstances map[string]struct{}) []Node {
	var undead []Node
	for _, n := range nodes {
		if n.InstanceID == "" {
			continue
		}
		if _, ok := liveInstances[n.InstanceID]; ok {
			continue
		}
		undead = append(undead, n)
	}
	sort.Slice(undead, func(i, j int) bool { return undead[i].ID < undead[j].ID })
	return undead
}

// ipmiErrorPatterns match the known-transient Ironic last_error messages
// that an automated power-state reset can clear.
var ipmiErrorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Failed to tear down\. Error: Failed to set node power state to power off\.`),
	regexp.MustCompile(`^Failed to tear down\. Error: IPMI call failed: power status\.`),
}

// Curable reports whether a single node is in a state the IPMI retry
// tool knows how to treat: out of maintenance, provision state "error",
// and a last error matching one of the known IPMI failure messages.
func Curable(n Node) bool {
	if n.Maintenance || n.ProvisionState != "error" {
		return false
	}
	for _, re := range ipmiErrorPatterns {
		if re.MatchString(n.LastError) {
			return true
		}
	}
	return false
}

// CurableNodes filters nodes down to those Curable, sorted by ID.
func CurableNodes(nodes []Node) []Node {
	var curable []Node
	for _, n := range nodes {
		if Curable(n) {
			curable = append(curable, n)
		}
	}
	sort.Slice(curable, func(i, j int) bool { return curable[i].ID < curable[j].ID })
	return curable
}
