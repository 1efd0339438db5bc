package urlscan

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ScanURL is the urlscan.io submission endpoint
const ScanURL = "https://urlscan.io/api/v1/scan/"

type request struct {
	URL    string `json:"url"`
	Public string `json:"public"`
}

type response struct {
	Result string `json:"result"`
}

// Client submits domains to urlscan.io
type Client struct {
	APIKey     string
	URL        string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Log        *log.Logger
}

// NewClient returns a Client allowing perSecond submissions per second, unlimited if perSecond <= 0
func NewClient(apiKey string, perSecond float64, logger *log.Logger) *Client {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Client{
		APIKey:     apiKey,
		URL:        ScanURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Limiter:    rate.NewLimiter(limit, 1),
		Log:        logger,
	}
}

// Submit asks for a public scan of domain and returns the result page URL, "" on failure
func (c *Client) Submit(ctx context.Context, domain string) string {
	if err := c.Limiter.Wait(ctx); err != nil {
		c.Log.Warnf("Domain not submitted to URLScan.io: %s: %v", domain, err)
		return ""
	}

	body, err := json.Marshal(request{URL: domain, Public: "on"})
	if err != nil {
		c.Log.Warnf("Domain unable to be scanned by URLScan.io: %s: %v", domain, errors.Wrap(err, "can't marshal URLScan.io request"))
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		c.Log.Warnf("Domain unable to be scanned by URLScan.io: %s: %v", domain, errors.Wrap(err, "can't create URLScan.io request"))
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Warnf("Domain unable to be scanned by URLScan.io: %s: %v", domain, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Log.Infof("Domain unable to be scanned by URLScan.io: %s (status %d)", domain, resp.StatusCode)
		return ""
	}
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		c.Log.Warnf("Can't decode URLScan.io answer for %s: %v", domain, err)
		return ""
	}
	c.Log.Infof("Domain submitted to URLScan.io: %s", domain)
	c.Log.Infof("Scan results URL: %s", r.Result)
	return r.Result
}
