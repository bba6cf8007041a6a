package openstack

import (
	"testing"
	"time"
)

func TestLeaseCreateOptsToMap(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Defaults", func(t *testing.T) {
		opts := LeaseCreateOpts{Name: "lease-abc123", Nodes: 2}

		body, err := opts.ToLeaseCreateMap(now)
		if err != nil {
			t.Fatalf("ToLeaseCreateMap() error = %v", err)
		}

		if body["start"] != "2025-06-15 12:01" {
			t.Errorf("start = %v, want 2025-06-15 12:01", body["start"])
		}
		if body["end"] != "2025-06-16 12:01" {
			t.Errorf("end = %v, want 2025-06-16 12:01", body["end"])
		}

		reservations := body["reservations"].([]map[string]any)
		if len(reservations) != 1 {
			t.Fatalf("got %d reservations, want 1", len(reservations))
		}
		r := reservations[0]
		if r["resource_type"] != "physical:host" || r["min"] != "2" || r["max"] != "2" {
			t.Errorf("reservation = %v", r)
		}
	})

	t.Run("Explicit Length", func(t *testing.T) {
		opts := LeaseCreateOpts{
			Name:   "lease-short",
			Nodes:  1,
			Start:  time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
			Length: 6 * time.Hour,
		}

		body, err := opts.ToLeaseCreateMap(now)
		if err != nil {
			t.Fatalf("ToLeaseCreateMap() error = %v", err)
		}
		if body["start"] != "2025-07-01 09:00" || body["end"] != "2025-07-01 15:00" {
			t.Errorf("window = %v - %v", body["start"], body["end"])
		}
	})

	t.Run("Invalid Combinations", func(t *testing.T) {
		cases := []LeaseCreateOpts{
			{Nodes: 1},                       // no name
			{Name: "x", Nodes: 0},            // no nodes
			{Name: "x", Nodes: 1, Length: time.Hour, End: now}, // both length and end
		}
		for i, opts := range cases {
			if _, err := opts.ToLeaseCreateMap(now); err == nil {
				t.Errorf("case %d: expected error", i)
			}
		}
	})
}
