package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

type discordEmbed struct {
	Title     string       `json:"title"`
	URL       string       `json:"url,omitempty"`
	Color     int          `json:"color"`
	Fields    []Field      `json:"fields,omitempty"`
	Footer    *discordFoot `json:"footer,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

type discordFoot struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// DiscordSink 通过 webhook 发送 embed, destination 即 webhook url
type DiscordSink struct {
	client *http.Client
}

func NewDiscordSink(client *http.Client) *DiscordSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DiscordSink{client: client}
}

func (s *DiscordSink) Deliver(ctx context.Context, webhookURL string, msg Message) error {
	if webhookURL == "" {
		return ErrNoDestination
	}
	embed := discordEmbed{
		Title:  msg.Title,
		URL:    msg.URL,
		Color:  msg.Color,
		Fields: msg.Fields,
	}
	if msg.Footer != "" {
		embed.Footer = &discordFoot{Text: msg.Footer}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}

	body, err := sonic.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("discord: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send: %w", err)
	}
	defer resp.Body.Close()

	// 成功时 discord 返回 204
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord: send: status %d: %s", resp.StatusCode, b)
	}
	return nil
}
