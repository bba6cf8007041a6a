package notifications

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slack.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSlackConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "Minimal",
			content: `{"webhook": "https://hooks.example.com/T/B/X"}`,
		},
		{
			name:    "Missing Webhook Key",
			content: `{"channel": "#ops"}`,
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			content: `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadSlackConfig(writeConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadSlackConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if s.Channel != "#notifications" || s.Username != "Bag o' Hammers" || s.IconEmoji != ":hammer:" {
				t.Errorf("defaults not applied: %+v", s)
			}
			if !s.Enabled() {
				t.Error("loaded config should be enabled")
			}
		})
	}
}

func TestBuildPayload(t *testing.T) {
	s := &Slack{
		WebhookURL: "https://hooks.example.com/T/B/X",
		Channel:    "#ops",
		Username:   "Bag o' Hammers",
		IconEmoji:  ":hammer:",
	}

	p := s.buildPayload("neutron-reaper", "Commanded deletion of *3 floating IPs*", ColorAction)

	if p.Channel != "#ops" || p.Username != "Bag o' Hammers" {
		t.Errorf("payload identity wrong: %+v", p)
	}
	if len(p.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(p.Attachments))
	}
	a := p.Attachments[0]
	if a.Title != "neutron-reaper" || a.Color != ColorAction {
		t.Errorf("attachment = %+v", a)
	}
	if !strings.Contains(a.Fallback, "neutron-reaper:") {
		t.Errorf("fallback missing subcommand prefix: %q", a.Fallback)
	}
}

func TestDisabledReporterPost(t *testing.T) {
	var s *Slack
	if err := s.Post("neutron-reaper", "message", ColorInfo); err != nil {
		t.Errorf("nil reporter Post() = %v, want nil", err)
	}
}
