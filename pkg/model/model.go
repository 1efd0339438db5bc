package model

import "time"

// CertStream message types
const (
	Heartbeat         = "heartbeat"
	CertificateUpdate = "certificate_update"
)

// Certificate represents a message from CertStream
type Certificate struct {
	MessageType string `json:"message_type"`
	Data        Data   `json:"data"`
}

// Data represents data field for a certificate from CertStream
type Data struct {
	UpdateType string            `json:"update_type"`
	LeafCert   LeafCert          `json:"leaf_cert"`
	Chain      []LeafCert        `json:"chain"`
	CertIndex  float64           `json:"cert_index"`
	Seen       float64           `json:"seen"`
	Source     map[string]string `json:"source"`
}

// LeafCert represents leaf_cert field from CertStream
type LeafCert struct {
	Subject      map[string]interface{} `json:"subject"`
	Issuer       map[string]interface{} `json:"issuer"`
	Extensions   map[string]interface{} `json:"extensions"`
	NotBefore    float64                `json:"not_before"`
	NotAfter     float64                `json:"not_after"`
	SerialNumber string                 `json:"serial_number"`
	FingerPrint  string                 `json:"fingerprint"`
	AsDer        string                 `json:"as_der"`
	AllDomains   []string               `json:"all_domains"`
}

// Match represents a first-seen domain that matched a keyword
type Match struct {
	Timestamp  time.Time `json:"timestamp"`
	Keyword    string    `json:"matched_keyword"`
	Domain     string    `json:"domain"`
	ScanURL    string    `json:"scan_results_url,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"`
}

// Alert formats the match as a chat alert block
func (m Match) Alert() string {
	s := "Keyword: " + m.Keyword + "\nDomain: " + m.Domain
	if m.ScanURL != "" {
		s += "\nScan: " + m.ScanURL
	}
	if m.Screenshot != "" {
		s += "\nScreenshot: " + m.Screenshot
	}
	return s
}
