package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"certpipe/pkg/batcher"
	"certpipe/pkg/homoglyph"
	"certpipe/pkg/ledger"
	"certpipe/pkg/matcher"
	"certpipe/pkg/metrics"
	"certpipe/pkg/model"
	"certpipe/pkg/universe"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/idna"
)

// Scanner submits a domain to a URL scanning service and returns the result page, "" on failure
type Scanner interface {
	Submit(ctx context.Context, domain string) string
}

// RowWriter stores a match
type RowWriter interface {
	WriteRow(m model.Match) error
}

// AgeChecker tells whether a domain was registered recently
type AgeChecker interface {
	IsRecent(domain string) bool
}

// Screenshotter returns the URL of a screenshot of a domain, "" on failure
type Screenshotter interface {
	Take(ctx context.Context, domain string) string
}

// Processor matches the domains of CertStream certificates and dispatches alerts.
// Universe, Ledger and Log are required; nil sinks are disabled.
type Processor struct {
	Universe *universe.Universe
	Ledger   *ledger.Ledger
	Batcher  *batcher.Batcher
	Log      *log.Logger

	Scanner     Scanner
	CSV         RowWriter
	Age         AgeChecker
	Screenshots Screenshotter

	// DecodeIDN also matches the Unicode and homoglyph-folded forms of punycode domains
	DecodeIDN  bool
	Homoglyphs map[string]string

	// Out receives one "keyword : domain" line per match
	Out io.Writer

	Now func() time.Time
}

// Run handles raw messages until msgs is closed or ctx is done
func (p *Processor) Run(ctx context.Context, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			p.HandleMessage(ctx, msg)
		}
	}
}

// HandleMessage decodes a raw CertStream message and handles it. Undecodable messages are skipped.
func (p *Processor) HandleMessage(ctx context.Context, msg []byte) []model.Match {
	var c model.Certificate
	if err := json.Unmarshal(msg, &c); err != nil {
		p.Log.Debugf("Error parsing message: %s", err)
		return nil
	}
	return p.HandleEvent(ctx, &c)
}

// HandleEvent processes one CertStream message and returns the alerts it raised
func (p *Processor) HandleEvent(ctx context.Context, c *model.Certificate) []model.Match {
	switch c.MessageType {
	case model.Heartbeat:
		metrics.EventsTotal.WithLabelValues(model.Heartbeat).Inc()
		return nil
	case model.CertificateUpdate:
		metrics.EventsTotal.WithLabelValues(model.CertificateUpdate).Inc()
	default:
		metrics.EventsTotal.WithLabelValues("other").Inc()
		return nil
	}

	var matches []model.Match
	for _, domain := range c.Data.LeafCert.AllDomains {
		domain = strings.ToLower(strings.TrimPrefix(domain, "*."))
		if domain == "" {
			continue
		}
		metrics.DomainsTotal.Inc()

		outcome := p.evaluate(domain)
		firstSeen := p.Ledger.CheckAndMark(domain)
		if !outcome.Matched || !firstSeen {
			continue
		}
		if p.Age != nil && !p.Age.IsRecent(domain) {
			p.Log.Debugf("Ignoring match %s: domain registered long ago", domain)
			continue
		}
		matches = append(matches, p.alert(ctx, outcome, domain))
	}
	metrics.LedgerSize.Set(float64(p.Ledger.Len()))
	return matches
}

// evaluate runs the matcher on domain and, for IDNs, on its decoded forms.
// An ignore hit on any form wins.
func (p *Processor) evaluate(domain string) matcher.Outcome {
	var first *matcher.Outcome
	for _, form := range p.forms(domain) {
		o := matcher.Evaluate(form, p.Universe)
		if o.Source == matcher.Ignored {
			return o
		}
		if o.Matched && first == nil {
			first = &o
		}
	}
	if first == nil {
		return matcher.Outcome{Source: matcher.None}
	}
	return *first
}

// forms returns domain, then its Unicode and homoglyph-folded forms if it is an IDN
func (p *Processor) forms(domain string) []string {
	forms := []string{domain}
	if !p.DecodeIDN || !isIDN(domain) {
		return forms
	}
	unicode, err := idna.ToUnicode(domain)
	if err != nil || unicode == domain {
		return forms
	}
	forms = append(forms, unicode)
	if p.Homoglyphs != nil {
		if folded := homoglyph.ReplaceHomoglyph(unicode, p.Homoglyphs); folded != unicode {
			forms = append(forms, folded)
		}
	}
	return forms
}

// alert runs the enrichment sinks for a first-seen match and queues its alert block
func (p *Processor) alert(ctx context.Context, outcome matcher.Outcome, domain string) model.Match {
	m := model.Match{
		Timestamp: p.now(),
		Keyword:   outcome.Token,
		Domain:    domain,
	}
	metrics.MatchesTotal.WithLabelValues(string(outcome.Source)).Inc()
	p.Log.WithFields(log.Fields{"keyword": m.Keyword, "domain": m.Domain, "source": outcome.Source}).Info("Found match")

	if p.Scanner != nil {
		m.ScanURL = p.Scanner.Submit(ctx, domain)
	}
	if p.Screenshots != nil {
		m.Screenshot = p.Screenshots.Take(ctx, domain)
	}
	if p.CSV != nil {
		p.Log.Debug("Writing output to CSV file")
		if err := p.CSV.WriteRow(m); err != nil {
			metrics.SinkErrorsTotal.WithLabelValues("csv").Inc()
			p.Log.Errorf("CSV File I/O error: %v", err)
		}
	}
	if p.Batcher != nil && p.Batcher.Enabled() {
		p.Batcher.Accumulate(m.Alert())
	}
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s : %s\n", m.Keyword, m.Domain)
	}
	return m
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// isIDN checks if one of the labels of domain is punycode
func isIDN(domain string) bool {
	for _, label := range strings.Split(domain, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}
