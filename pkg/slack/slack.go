package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// PostMessageURL is the Slack Web API method used to post alerts
const PostMessageURL = "https://slack.com/api/chat.postMessage"

// Message represents a chat.postMessage request
type Message struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// response is the part of the Slack answer we care about
type response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Client posts alerts to a Slack channel with a bot token
type Client struct {
	Token      string
	Channel    string
	APIURL     string
	HTTPClient *http.Client
}

// NewClient returns a Client for channel
func NewClient(token, channel string) *Client {
	return &Client{
		Token:      token,
		Channel:    channel,
		APIURL:     PostMessageURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns "slack"
func (c *Client) Name() string {
	return "slack"
}

// Notify posts text to the channel
func (c *Client) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(Message{Channel: c.Channel, Text: text})
	if err != nil {
		return errors.Wrap(err, "marshal slack message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build slack request")
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "slack post")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("slack post: status %d", resp.StatusCode)
	}
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return errors.Wrap(err, "decode slack response")
	}
	if !r.OK {
		return errors.Errorf("slack post: %s", r.Error)
	}
	return nil
}
