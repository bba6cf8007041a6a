package workflow

import (
	"testing"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/ledger"
	"github.com/chameleoncloud/hammers-go/internal/reap"
)

func TestRecoveredNodeIDs(t *testing.T) {
	attempt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	marked := ledger.Record{Attempts: []time.Time{attempt}}

	nodes := []reap.Node{
		{ID: "node-still-broken", ProvisionState: "error"},
		{ID: "node-repaired", ProvisionState: "available"},
		{ID: "node-clean", ProvisionState: "available"},
		{ID: "node-active", ProvisionState: "active"},
	}
	records := map[string]ledger.Record{
		"node-still-broken": marked,
		"node-repaired":     marked,
		"node-active":       marked,
	}

	got := recoveredNodeIDs(nodes, records)
	want := []string{"node-active", "node-repaired"}
	if len(got) != len(want) {
		t.Fatalf("recoveredNodeIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recoveredNodeIDs() = %v, want %v", got, want)
		}
	}
}
