package reap

import (
	"strings"
	"testing"
	"time"
)

func TestEligible(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastActivity time.Time
		graceDays    float64
		want         bool
	}{
		{
			name:         "Well Past Grace Period",
			lastActivity: now.AddDate(0, 0, -20),
			graceDays:    14,
			want:         true,
		},
		{
			name:         "Recent Activity",
			lastActivity: now.AddDate(0, 0, -5),
			graceDays:    14,
			want:         false,
		},
		{
			name:         "Exact Boundary Is Eligible",
			lastActivity: now.AddDate(0, 0, -14),
			graceDays:    14,
			want:         true,
		},
		{
			name:         "One Second Inside Grace",
			lastActivity: now.Add(-14*24*time.Hour + time.Second),
			graceDays:    14,
			want:         false,
		},
		{
			name:         "Zero Timestamp Never Eligible",
			lastActivity: time.Time{},
			graceDays:    14,
			want:         false,
		},
		{
			name:         "Fractional Grace Period",
			lastActivity: now.Add(-36 * time.Hour),
			graceDays:    1.5,
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(now, tt.lastActivity, tt.graceDays); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysPast(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	got := DaysPast(now, now.Add(-36*time.Hour))
	if got != 1.5 {
		t.Errorf("DaysPast() = %v, want 1.5", got)
	}
}

func TestNormalizeProject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CH-816532", "ch816532"},
		{"  Chameleon  ", "chameleon"},
		{"already-normal", "alreadynormal"},
	}

	for _, tt := range tests {
		if got := NormalizeProject(tt.in); got != tt.want {
			t.Errorf("NormalizeProject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadWhitelist(t *testing.T) {
	input := "CH-816532\n\n# operators\nStaff-Project\n"

	whitelist, err := ReadWhitelist(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadWhitelist() error = %v", err)
	}

	if len(whitelist) != 2 {
		t.Fatalf("whitelist has %d entries, want 2", len(whitelist))
	}

	if !Whitelisted(whitelist, "ch816532", "") {
		t.Error("expected normalized ID match")
	}
	if !Whitelisted(whitelist, "some-id", "staff-project") {
		t.Error("expected match on project name")
	}
	if Whitelisted(whitelist, "other-id", "other-name") {
		t.Error("unexpected match for unlisted project")
	}
}
