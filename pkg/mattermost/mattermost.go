package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Payload represents a message for a Mattermost incoming webhook
type Payload struct {
	Username string `json:"username,omitempty"`
	IconURL  string `json:"icon_url,omitempty"`
	Text     string `json:"text"`
}

// Client posts alerts to a Mattermost incoming webhook
type Client struct {
	WebhookURL string
	Username   string
	IconURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client for webhookURL
func NewClient(webhookURL, username, iconURL string) *Client {
	return &Client{
		WebhookURL: webhookURL,
		Username:   username,
		IconURL:    iconURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewPayload generates a new Mattermost Payload
func (c *Client) NewPayload(text string) Payload {
	return Payload{
		Username: c.Username,
		IconURL:  c.IconURL,
		Text:     text,
	}
}

// Name returns "mattermost"
func (c *Client) Name() string {
	return "mattermost"
}

// Notify posts text to the webhook
func (c *Client) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(c.NewPayload(text))
	if err != nil {
		return errors.Wrap(err, "marshal mattermost payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build mattermost request")
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "mattermost post")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("mattermost post: status %d", resp.StatusCode)
	}
	return nil
}
