package reap

import "testing"

func TestConflictMACs(t *testing.T) {
	nodes := []Node{
		{ID: "node-active", InstanceID: "inst-1"},
		{ID: "node-idle-a"},
		{ID: "node-idle-b"},
	}
	ironicPorts := []NodePort{
		{ID: "iport-1", NodeID: "node-active", MACAddress: "00:00:00:00:00:01"},
		{ID: "iport-2", NodeID: "node-idle-a", MACAddress: "00:00:00:00:00:02"},
		{ID: "iport-3", NodeID: "node-idle-b", MACAddress: "00:00:00:00:00:03"},
	}
	neutronMACs := map[string]string{
		"00:00:00:00:00:01": "nport-1", // active node, not a conflict
		"00:00:00:00:00:02": "nport-2", // idle node, conflict
		// 00:...:03 has no neutron port, not a conflict
	}

	conflicts := ConflictMACs(nodes, ironicPorts, neutronMACs)
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}

	c := conflicts[0]
	if c.MAC != "00:00:00:00:00:02" || c.NodeID != "node-idle-a" ||
		c.IronicPortID != "iport-2" || c.NeutronPortID != "nport-2" {
		t.Errorf("unexpected conflict: %+v", c)
	}
}

func TestStalePorts(t *testing.T) {
	nodes := []Node{
		{ID: "node-active", InstanceID: "inst-1"},
		{ID: "node-idle-a"},
		{ID: "node-idle-b"},
	}
	leftover := map[string]any{"vif_port_id": "vif-1"}
	ironicPorts := []NodePort{
		{ID: "iport-1", NodeID: "node-active", MACAddress: "00:00:00:00:00:01", Extra: leftover},
		{ID: "iport-2", NodeID: "node-idle-a", MACAddress: "00:00:00:00:00:02", Extra: leftover},
		{ID: "iport-3", NodeID: "node-idle-b", MACAddress: "00:00:00:00:00:03"},
	}
	neutronMACs := map[string]string{
		"00:00:00:00:00:01": "nport-1", // active node, not stale
		"00:00:00:00:00:02": "nport-2", // idle node with leftover extra, stale
		"00:00:00:00:00:03": "nport-3", // idle node but clean extra, not stale
	}

	stale := StalePorts(nodes, ironicPorts, neutronMACs)
	if len(stale) != 1 {
		t.Fatalf("got %d stale ports, want 1", len(stale))
	}
	if stale[0].NeutronPortID != "nport-2" {
		t.Errorf("stale port = %s, want nport-2", stale[0].NeutronPortID)
	}
}

func TestUndeadNodes(t *testing.T) {
	nodes := []Node{
		{ID: "node-1", InstanceID: "inst-live"},
		{ID: "node-2", InstanceID: "inst-gone"},
		{ID: "node-3"}, // unbound, never undead
	}
	live := map[string]struct{}{"inst-live": {}}

	undead := UndeadNodes(nodes, live)
	if len(undead) != 1 {
		t.Fatalf("got %d undead nodes, want 1", len(undead))
	}
	if undead[0].ID != "node-2" {
		t.Errorf("undead node = %s, want node-2", undead[0].ID)
	}
}

func TestCurableNodes(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{
			name: "Power Off Failure",
			node: Node{
				ID:             "node-1",
				ProvisionState: "error",
				LastError:      "Failed to tear down. Error: Failed to set node power state to power off.",
			},
			want: true,
		},
		{
			name: "IPMI Power Status Failure",
			node: Node{
				ID:             "node-2",
				ProvisionState: "error",
				LastError:      "Failed to tear down. Error: IPMI call failed: power status.",
			},
			want: true,
		},
		{
			name: "In Maintenance",
			node: Node{
				ID:             "node-3",
				ProvisionState: "error",
				LastError:      "Failed to tear down. Error: IPMI call failed: power status.",
				Maintenance:    true,
			},
			want: false,
		},
		{
			name: "Wrong Provision State",
			node: Node{
				ID:             "node-4",
				ProvisionState: "active",
				LastError:      "Failed to tear down. Error: IPMI call failed: power status.",
			},
			want: false,
		},
		{
			name: "Unrecognized Error",
			node: Node{
				ID:             "node-5",
				ProvisionState: "error",
				LastError:      "Some novel failure mode.",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Curable(tt.node); got != tt.want {
				t.Errorf("Curable() = %v, want %v", got, tt.want)
			}
		})
	}

	var all []Node
	for _, tt := range tests {
		all = append(all, tt.node)
	}
	curable := CurableNodes(all)
	if len(curable) != 2 {
		t.Fatalf("CurableNodes() returned %d nodes, want 2", len(curable))
	}
	if curable[0].ID != "node-1" || curable[1].ID != "node-2" {
		t.Errorf("unexpected curable set: %+v", curable)
	}
}
