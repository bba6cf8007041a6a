package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type attachment struct {
	Fallback string   `json:"fallback"`
	Color    string   `json:"color,omitempty"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	MrkdwnIn []string `json:"mrkdwn_in"`
}

type payload struct {
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji"`
	Channel     string       `json:"channel"`
	Attachments []attachment `json:"attachments"`
}

// buildPayload assembles the webhook body for one report. Split out of
// Post so the shape can be tested without an HTTP server.
func (s *Slack) buildPayload(subcommand, message, color string) payload {
	return payload{
		Username:  s.Username,
		IconEmoji: s.IconEmoji,
		Channel:   s.Channel,
		Attachments: []attachment{{
			Fallback: fmt.Sprintf("%s: %s", subcommand, message),
			Color:    color,
			Title:    subcommand,
			Text:     message,
			MrkdwnIn: []string{"text"},
		}},
	}
}

// Post sends one report to the configured webhook. Disabled reporters
// return nil immediately, so callers never need to branch on whether
// Slack was configured.
func (s *Slack) Post(subcommand, message, color string) error {
	if !s.Enabled() {
		return nil
	}

	body, err := json.Marshal(s.buildPayload(subcommand, message, color))
	if err != nil {
		return err
	}

	client := http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequest("POST", s.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to post slack notification: HTTP %d", resp.StatusCode)
	}

	return nil
}
