package processor_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"certpipe/pkg/batcher"
	"certpipe/pkg/ledger"
	"certpipe/pkg/model"
	"certpipe/pkg/processor"
	"certpipe/pkg/universe"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"
)

type nopNotifier struct{}

func (nopNotifier) Name() string { return "nop" }
func (nopNotifier) Notify(_ context.Context, _ string) error { return nil }

type fakeScanner struct{ submitted []string }

func (f *fakeScanner) Submit(_ context.Context, domain string) string {
	f.submitted = append(f.submitted, domain)
	return "https://urlscan.io/result/" + domain + "/"
}

type fakeCSV struct {
	rows []model.Match
	err  error
}

func (f *fakeCSV) WriteRow(m model.Match) error {
	f.rows = append(f.rows, m)
	return f.err
}

type fakeAge struct{ recent bool }

func (f fakeAge) IsRecent(string) bool { return f.recent }

func update(domains ...string) *model.Certificate {
	c := &model.Certificate{MessageType: model.CertificateUpdate}
	c.Data.LeafCert.AllDomains = domains
	return c
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newUniverse(fuzzed, noFuzz, ignore []string) *universe.Universe {
	u, err := universe.New(fuzzed, noFuzz, ignore)
	Expect(err).NotTo(HaveOccurred())
	return u
}

var _ = Describe("Processor", func() {
	var (
		p   *processor.Processor
		b   *batcher.Batcher
		out *bytes.Buffer
		ctx context.Context
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		out = &bytes.Buffer{}
		b = batcher.New(time.Hour, quietLogger(), nopNotifier{})
		p = &processor.Processor{
			Universe: newUniverse([]string{"amaz0n"}, []string{"admin"}, []string{"test"}),
			Ledger:  ledger.New(0),
			Batcher: b,
			Log:     quietLogger(),
			Out:     out,
			Now:     func() time.Time { return now },
		}
	})

	Describe("If certificate matches", func() {
		It("should strip the wildcard and alert once", func() {
			matches := p.HandleEvent(ctx, update("*.amaz0n-login.com"))
			Expect(matches).To(Equal([]model.Match{{Timestamp: now, Keyword: "amaz0n", Domain: "amaz0n-login.com"}}))
			Expect(p.Ledger.Contains("amaz0n-login.com")).To(BeTrue())
			Expect(b.Flush()).To(Equal("Keyword: amaz0n\nDomain: amaz0n-login.com\n\n"))
			Expect(out.String()).To(Equal("amaz0n : amaz0n-login.com\n"))
		})
		It("should not alert again when the event is replayed", func() {
			p.HandleEvent(ctx, update("*.amaz0n-login.com"))
			b.Flush()
			Expect(p.HandleEvent(ctx, update("*.amaz0n-login.com"))).To(BeEmpty())
			Expect(b.Flush()).To(Equal(""))
		})
		It("should alert once for a wildcard and its base domain", func() {
			matches := p.HandleEvent(ctx, update("*.amaz0n-login.com", "amaz0n-login.com"))
			Expect(matches).To(HaveLen(1))
		})
		It("should report the no-fuzz keyword", func() {
			matches := p.HandleEvent(ctx, update("admin.amaz0n.com"))
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Keyword).To(Equal("admin"))
		})
	})

	Describe("If certificate does not match", func() {
		It("should still mark the domain as seen", func() {
			Expect(p.HandleEvent(ctx, update("example.org"))).To(BeEmpty())
			Expect(p.Ledger.Contains("example.org")).To(BeTrue())
		})
		It("should honour the ignore list", func() {
			Expect(p.HandleEvent(ctx, update("test-amaz0n.com"))).To(BeEmpty())
			Expect(b.Flush()).To(Equal(""))
		})
	})

	Describe("If message is not a certificate", func() {
		It("should ignore heartbeats", func() {
			Expect(p.HandleEvent(ctx, &model.Certificate{MessageType: model.Heartbeat})).To(BeNil())
			Expect(p.Ledger.Len()).To(Equal(0))
		})
		It("should ignore an empty domain list", func() {
			Expect(p.HandleEvent(ctx, update())).To(BeEmpty())
		})
	})

	Describe("HandleMessage", func() {
		It("should skip unparsable messages", func() {
			Expect(p.HandleMessage(ctx, []byte(""))).To(BeNil())
			Expect(p.HandleMessage(ctx, []byte("{not json"))).To(BeNil())
		})
		It("should skip heartbeats", func() {
			msg, err := os.ReadFile("testdata/heartbeat.json")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.HandleMessage(ctx, msg)).To(BeNil())
		})
		It("should handle a CertStream certificate", func() {
			msg, err := os.ReadFile("testdata/cert.json")
			Expect(err).NotTo(HaveOccurred())
			matches := p.HandleMessage(ctx, msg)
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Domain).To(Equal("amaz0n-login.com"))
			Expect(p.Ledger.Len()).To(Equal(2))
		})
	})

	Describe("Sinks", func() {
		It("should add the scan link to the alert and the CSV row", func() {
			scanner := &fakeScanner{}
			csv := &fakeCSV{}
			p.Scanner = scanner
			p.CSV = csv
			p.HandleEvent(ctx, update("amaz0n.com"))
			Expect(scanner.submitted).To(Equal([]string{"amaz0n.com"}))
			Expect(csv.rows).To(HaveLen(1))
			Expect(csv.rows[0].ScanURL).To(Equal("https://urlscan.io/result/amaz0n.com/"))
			Expect(b.Flush()).To(Equal("Keyword: amaz0n\nDomain: amaz0n.com\nScan: https://urlscan.io/result/amaz0n.com/\n\n"))
		})
		It("should keep alerting when the CSV file fails", func() {
			p.CSV = &fakeCSV{err: errors.New("disk full")}
			Expect(p.HandleEvent(ctx, update("amaz0n.com"))).To(HaveLen(1))
			Expect(b.Flush()).To(ContainSubstring("amaz0n.com"))
		})
		It("should not accumulate without notifiers", func() {
			p.Batcher = batcher.New(time.Hour, quietLogger())
			Expect(p.HandleEvent(ctx, update("amaz0n.com"))).To(HaveLen(1))
			Expect(p.Batcher.Flush()).To(Equal(""))
		})
		It("should drop old domains when the age filter is on", func() {
			p.Age = fakeAge{recent: false}
			Expect(p.HandleEvent(ctx, update("amaz0n.com"))).To(BeEmpty())
			Expect(p.Ledger.Contains("amaz0n.com")).To(BeTrue())
			p.Age = fakeAge{recent: true}
			Expect(p.HandleEvent(ctx, update("amaz0n.net"))).To(HaveLen(1))
		})
	})

	Describe("If domain is IDN", func() {
		BeforeEach(func() {
			p.Universe = newUniverse([]string{"àmazon"}, nil, nil)
		})
		It("should not decode it unless asked", func() {
			Expect(p.HandleEvent(ctx, update("xn--mazon-login-66a.com"))).To(BeEmpty())
		})
		It("should match its unicode form", func() {
			p.DecodeIDN = true
			matches := p.HandleEvent(ctx, update("xn--mazon-login-66a.com"))
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Keyword).To(Equal("àmazon"))
			Expect(matches[0].Domain).To(Equal("xn--mazon-login-66a.com"))
		})
		It("should match its homoglyph-folded form", func() {
			p.DecodeIDN = true
			p.Universe = newUniverse([]string{"amazon"}, nil, nil)
			p.Homoglyphs = map[string]string{"à": "a"}
			matches := p.HandleEvent(ctx, update("xn--mazon-login-66a.com"))
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Keyword).To(Equal("amazon"))
		})
	})

	Describe("Run", func() {
		It("should process messages until the channel is closed", func() {
			msgs := make(chan []byte, 2)
			msgs <- []byte(`{"message_type":"certificate_update","data":{"leaf_cert":{"all_domains":["amaz0n.org"]}}}`)
			msgs <- []byte(`{"message_type":"heartbeat"}`)
			close(msgs)
			p.Run(ctx, msgs)
			Expect(strings.TrimSpace(out.String())).To(Equal("amaz0n : amaz0n.org"))
		})
	})
})
