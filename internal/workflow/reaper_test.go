package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestReapable(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -20)
	fresh := now.AddDate(0, 0, -5)

	candidates := []Candidate{
		{ID: "ip-idle-old", ProjectID: "proj-idle", Status: "DOWN", LastActivity: old},
		{ID: "ip-idle-fresh", ProjectID: "proj-idle", Status: "DOWN", LastActivity: fresh},
		{ID: "ip-active", ProjectID: "proj-active", Status: "DOWN", LastActivity: old},
		{ID: "ip-reserved", ProjectID: "proj-reserved", Status: "DOWN", LastActivity: old},
		{ID: "ip-whitelisted", ProjectID: "proj-white", Status: "DOWN", LastActivity: old},
		{ID: "ip-named-white", ProjectID: "proj-named", Status: "DOWN", LastActivity: old},
	}

	eligible := Reapable(
		candidates,
		map[string]struct{}{"proj-active": {}},
		map[string]struct{}{"projreserved": {}},
		map[string]struct{}{"projwhite": {}, "staffproject": {}},
		map[string]string{"proj-named": "Staff-Project"},
		nil,
		now,
		14,
	)

	if len(eligible) != 1 {
		t.Fatalf("got %d eligible, want 1: %+v", len(eligible), eligible)
	}
	if eligible[0].ID != "ip-idle-old" {
		t.Errorf("eligible = %s, want ip-idle-old", eligible[0].ID)
	}
}

func TestReapableBoundary(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Exactly on the grace boundary counts as eligible.
	eligible := Reapable(
		[]Candidate{{ID: "ip-1", ProjectID: "p", LastActivity: now.AddDate(0, 0, -14)}},
		nil, nil, nil, nil, nil, now, 14,
	)
	if len(eligible) != 1 {
		t.Errorf("boundary resource not eligible")
	}
}

func TestReapableProjectActivity(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -20)

	candidates := []Candidate{
		{ID: "ip-recent-project", ProjectID: "proj-recent", Status: "DOWN", LastActivity: old},
		{ID: "ip-idle-project", ProjectID: "proj-idle", Status: "DOWN", LastActivity: old},
	}

	// proj-recent's last server was deleted yesterday; its 20-day-old
	// floating IP must survive. proj-idle's last activity is older than
	// the grace period on both counts.
	activity := map[string]time.Time{
		"proj-recent": now.AddDate(0, 0, -1),
		"proj-idle":   old,
	}

	eligible := Reapable(candidates, nil, nil, nil, nil, activity, now, 14)
	if len(eligible) != 1 {
		t.Fatalf("got %d eligible, want 1: %+v", len(eligible), eligible)
	}
	if eligible[0].ID != "ip-idle-project" {
		t.Errorf("eligible = %s, want ip-idle-project", eligible[0].ID)
	}
}

// fakeDeleter records every mutating call so tests can assert the
// read-only modes make none.
type fakeDeleter struct {
	deleted []string
}

func (f *fakeDeleter) DeleteFloatingIP(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDeleter) DeletePort(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestExecuteReaperModeReadOnly(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eligible := []Candidate{
		{ID: "ip-1", ProjectID: "p"},
		{ID: "ip-2", ProjectID: "p"},
	}

	for _, mode := range []ReaperMode{ModeInfo, ModeCommands} {
		deleter := &fakeDeleter{}
		if err := executeReaperMode(context.Background(), logger, deleter, ReapIPs, mode, eligible); err != nil {
			t.Fatalf("mode %d: %v", mode, err)
		}
		if len(deleter.deleted) != 0 {
			t.Errorf("mode %d deleted %v, want no deletions", mode, deleter.deleted)
		}
	}

	deleter := &fakeDeleter{}
	if err := executeReaperMode(context.Background(), logger, deleter, ReapIPs, ModeDelete, eligible); err != nil {
		t.Fatalf("ModeDelete: %v", err)
	}
	if len(deleter.deleted) != 2 {
		t.Errorf("ModeDelete deleted %v, want both resources", deleter.deleted)
	}
}

func TestReaperSummary(t *testing.T) {
	tests := []struct {
		kind  ReaperKind
		count int
		want  string
	}{
		{ReapIPs, 3, "Commanded deletion of *3 floating IPs* (14 day grace-period)"},
		{ReapIPs, 1, "Commanded deletion of *1 floating IP* (14 day grace-period)"},
		{ReapPorts, 0, "No ports to delete (14 day grace-period)"},
	}

	for _, tt := range tests {
		if got := reaperSummary(tt.kind, tt.count, 14); got != tt.want {
			t.Errorf("reaperSummary(%s, %d) = %q, want %q", tt.kind, tt.count, got, tt.want)
		}
	}
}

func TestParseBlazarDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2025-06-15T12:00:00.000000", true},
		{"2025-06-15T12:00:00Z", true},
		{"2025-06-15 12:00", true},
		{"not-a-date", false},
	}

	for _, tt := range tests {
		if _, ok := parseBlazarDate(tt.in); ok != tt.ok {
			t.Errorf("parseBlazarDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
