package config

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"certpipe/pkg/certstream"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/net/publicsuffix"
)

// Configuration represents a configuration element
type Configuration struct {
	Keywords       []string
	NoFuzzKeywords []string
	IgnoreKeywords []string

	// AlertSendFrequency is the number of seconds between two alert batches
	AlertSendFrequency int

	EnableCSVOutput bool
	OutputCSVFile   string

	EnableSlack  bool
	SlackToken   string
	SlackChannel string

	EnableMattermost     bool
	MattermostWebhookURL string
	MattermostUsername   string
	MattermostIconURL    string

	EnableURLScan bool
	URLScanAPIKey string
	URLScanRate   float64

	EnableLogging bool
	LogLevel      string

	Workers     int
	LedgerLimit int
	DecodeIDN   bool

	// IgnoreOlderThan drops matches on domains registered more than this many days ago, 0 disables it
	IgnoreOlderThan int

	TakeScreenshot      bool
	ScreenshotUploadURL string

	CertStreamURL string
	DebugAddr     string

	Log *log.Logger
}

// GetConfig provides a Configuration, exits on error
func GetConfig(configFile *string) *Configuration {
	file := ""
	if configFile != nil {
		file = *configFile
	}
	c, err := Load(file)
	if err != nil {
		log.Fatalf("[ERROR] : %v", err)
	}
	return c
}

// Load reads the optional config file and the environment
func Load(configFile string) (*Configuration, error) {
	c := &Configuration{}

	v := viper.New()
	v.SetDefault("Keywords", []string{})
	v.SetDefault("NoFuzzKeywords", []string{})
	v.SetDefault("IgnoreKeywords", []string{})
	v.SetDefault("AlertSendFrequency", 30)
	v.SetDefault("EnableCSVOutput", false)
	v.SetDefault("OutputCSVFile", "certpipe_matches.csv")
	v.SetDefault("EnableSlack", false)
	v.SetDefault("SlackToken", "")
	v.SetDefault("SlackChannel", "")
	v.SetDefault("EnableMattermost", false)
	v.SetDefault("MattermostWebhookURL", "")
	v.SetDefault("MattermostUsername", "CertPipe")
	v.SetDefault("MattermostIconURL", "https://www.mattermost.org/wp-content/uploads/2016/04/icon.png")
	v.SetDefault("EnableURLScan", false)
	v.SetDefault("URLScanAPIKey", "")
	v.SetDefault("URLScanRate", 1)
	v.SetDefault("EnableLogging", true)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("Workers", 1)
	v.SetDefault("LedgerLimit", 0)
	v.SetDefault("DecodeIDN", true)
	v.SetDefault("IgnoreOlderThan", 0)
	v.SetDefault("TakeScreenshot", false)
	v.SetDefault("ScreenshotUploadURL", "https://transfer.sh/")
	v.SetDefault("CertStreamURL", certstream.DefaultURL)
	v.SetDefault("DebugAddr", "localhost:6060")

	if configFile != "" {
		d, f := path.Split(configFile)
		if d == "" {
			d = "."
		}
		v.SetConfigName(f[0 : len(f)-len(filepath.Ext(f))])
		v.AddConfigPath(d)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "Error when reading config file")
		}
	}
	v.AutomaticEnv()
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "Error when decoding config")
	}

	c.Keywords = normalizeKeywords(c.Keywords)
	c.NoFuzzKeywords = normalize(c.NoFuzzKeywords)
	c.IgnoreKeywords = normalize(c.IgnoreKeywords)

	if c.MattermostUsername == "" {
		c.MattermostUsername = "CertPipe"
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(c.LogLevel, c.EnableLogging)
	if err != nil {
		return nil, err
	}
	c.Log = logger
	return c, nil
}

// MinKeywordLength is the shortest keyword that can be fuzzed; shorter ones give
// permutations of one or two letters that match most domains
const MinKeywordLength = 3

func (c *Configuration) validate() error {
	if len(c.Keywords) == 0 && len(c.NoFuzzKeywords) == 0 {
		return errors.New("Keywords and NoFuzzKeywords can't be both empty")
	}
	for _, k := range c.Keywords {
		if utf8.RuneCountInString(k) < MinKeywordLength {
			return errors.Errorf("Keyword %q is too short to be fuzzed, use NoFuzzKeywords", k)
		}
	}
	if c.AlertSendFrequency <= 0 {
		return errors.New("AlertSendFrequency must be strictly a positive number")
	}
	if c.Workers < 1 {
		return errors.New("Workers must be strictly a positive number")
	}
	if c.LedgerLimit < 0 {
		return errors.New("LedgerLimit can't be negative")
	}
	if c.EnableSlack && (c.SlackToken == "" || c.SlackChannel == "") {
		return errors.New("SlackToken and SlackChannel are required when Slack is enabled")
	}
	if c.EnableMattermost && c.MattermostWebhookURL == "" {
		return errors.New("MattermostWebhookURL is required when Mattermost is enabled")
	}
	if c.EnableURLScan && c.URLScanAPIKey == "" {
		return errors.New("URLScanAPIKey is required when URLScan is enabled")
	}
	return nil
}

// NotificationsEnabled reports whether alerts are batched for a chat or webhook sink
func (c *Configuration) NotificationsEnabled() bool {
	return c.EnableSlack || c.EnableMattermost
}

func newLogger(level string, enabled bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "Bad LogLevel %q", level)
	}
	if !enabled && lvl > log.WarnLevel {
		lvl = log.WarnLevel
	}
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return logger, nil
}

// normalize lowercases and trims keywords, dropping empty ones
func normalize(keywords []string) []string {
	result := []string{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			result = append(result, k)
		}
	}
	return result
}

// normalizeKeywords also reduces keywords written as domains to their registrable label:
// "login.amazon.co.uk" becomes "amazon"
func normalizeKeywords(keywords []string) []string {
	result := []string{}
	for _, k := range normalize(keywords) {
		result = append(result, Label(k))
	}
	return result
}

// Label returns the label just left of the public suffix of domain, or domain itself
// if it has no known suffix
func Label(domain string) string {
	if !strings.Contains(domain, ".") {
		return domain
	}
	p, icann := publicsuffix.PublicSuffix(domain)
	if !icann || p == domain || !strings.HasSuffix(domain, "."+p) {
		return domain
	}
	s := strings.Split(strings.TrimSuffix(domain, "."+p), ".")
	return s[len(s)-1]
}
