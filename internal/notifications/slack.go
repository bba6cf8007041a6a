package notifications

import (
	"encoding/json"
	"fmt"
	"os"
)

// Slack posts maintenance reports to a Slack incoming webhook. The
// zero value is a disabled reporter; Post on it is a no-op.
type Slack struct {
	WebhookURL string `json:"webhook"`
	Channel    string `json:"channel"`
	Username   string `json:"username"`
	IconEmoji  string `json:"icon_emoji"`
}

// LoadSlackConfig reads the webhook configuration from a JSON file. The
// file must contain at least the "webhook" key; channel, username and
// icon have defaults matching the hammers house style.
func LoadSlackConfig(path string) (*Slack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Slack
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid slack config %s: %w", path, err)
	}

	if s.WebhookURL == "" {
		return nil, fmt.Errorf("slack config %s must contain a \"webhook\" key", path)
	}

	if s.Channel == "" {
		s.Channel = "#notifications"
	}
	if s.Username == "" {
		s.Username = "Bag o' Hammers"
	}
	if s.IconEmoji == "" {
		s.IconEmoji = ":hammer:"
	}

	return &s, nil
}

// Enabled reports whether a webhook is configured.
func (s *Slack) Enabled() bool {
	return s != nil && s.WebhookURL != ""
}

// Attachment colors for report severity.
const (
	ColorInfo    = "#cccccc"
	ColorAction  = "#000000"
	ColorWarning = "#e8760c"
	ColorError   = "#b00505"
	ColorSuccess = "#4cbb17"
)
