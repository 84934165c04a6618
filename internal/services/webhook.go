package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title     string                `json:"title"`
	Color     int                   `json:"color"`
	Fields    []DiscordWebhookField `json:"fields"`
	Footer    *DiscordFooter        `json:"footer,omitempty"`
	Timestamp string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

const (
	ColorBlue = 3447003 // #3498DB - Form submission

	Username = "TaskHive Feedback"
)

// SendFormSubmission posts a feedback form as a Discord embed to the
// configured webhook.
func SendFormSubmission(webhookURL, title, contact, message string, stars int) error {
	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title: "New Form Submission",
				Color: ColorBlue,
				Fields: []DiscordWebhookField{
					{Name: "Title", Value: title, Inline: true},
					{Name: "Contact", Value: contact, Inline: true},
					{Name: "Stars", Value: fmt.Sprintf("%d/5 (%s)", stars, strings.Repeat("⭐", stars)), Inline: true},
					{Name: "Message", Value: message, Inline: false},
				},
				Footer: &DiscordFooter{
					Text: "TaskHive",
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendDiscordWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}
