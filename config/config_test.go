package config_test

import (
	"os"
	"path/filepath"

	"certpipe/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"
)

func tempDir() string {
	dir, err := os.MkdirTemp("", "certpipe")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)
	return dir
}

var _ = Describe("Config", func() {
	write := func(content string) string {
		file := filepath.Join(tempDir(), "certpipe.yaml")
		Expect(os.WriteFile(file, []byte(content), 0o644)).To(Succeed())
		return file
	}

	Describe("Load", func() {
		It("should apply defaults", func() {
			c, err := config.Load(write("Keywords: [amazon]\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Keywords).To(Equal([]string{"amazon"}))
			Expect(c.AlertSendFrequency).To(Equal(30))
			Expect(c.Workers).To(Equal(1))
			Expect(c.LedgerLimit).To(Equal(0))
			Expect(c.MattermostUsername).To(Equal("CertPipe"))
			Expect(c.DecodeIDN).To(BeTrue())
			Expect(c.NotificationsEnabled()).To(BeFalse())
			Expect(c.Log.GetLevel()).To(Equal(log.InfoLevel))
		})
		It("should normalise keywords", func() {
			c, err := config.Load(write(`
Keywords: [" Amazon.com", "login.paypal.co.uk", "google"]
NoFuzzKeywords: [Admin, ""]
IgnoreKeywords: [TEST]
`))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Keywords).To(Equal([]string{"amazon", "paypal", "google"}))
			Expect(c.NoFuzzKeywords).To(Equal([]string{"admin"}))
			Expect(c.IgnoreKeywords).To(Equal([]string{"test"}))
		})
		It("should accept short literal keywords", func() {
			c, err := config.Load(write("Keywords: [amazon]\nNoFuzzKeywords: [hp]\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.NoFuzzKeywords).To(Equal([]string{"hp"}))
		})
		It("should only log warnings when logging is disabled", func() {
			c, err := config.Load(write("Keywords: [amazon]\nEnableLogging: false\nLogLevel: debug\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Log.GetLevel()).To(Equal(log.WarnLevel))
		})
		DescribeTable("should refuse invalid configurations",
			func(content string) {
				_, err := config.Load(write(content))
				Expect(err).To(HaveOccurred())
			},
			Entry("no keywords", "AlertSendFrequency: 10\n"),
			Entry("keyword too short to fuzz", "Keywords: [amazon, x]\n"),
			Entry("no frequency", "Keywords: [amazon]\nAlertSendFrequency: 0\n"),
			Entry("no workers", "Keywords: [amazon]\nWorkers: 0\n"),
			Entry("slack without token", "Keywords: [amazon]\nEnableSlack: true\nSlackChannel: '#a'\n"),
			Entry("mattermost without webhook", "Keywords: [amazon]\nEnableMattermost: true\n"),
			Entry("urlscan without key", "Keywords: [amazon]\nEnableURLScan: true\n"),
			Entry("bad log level", "Keywords: [amazon]\nLogLevel: loud\n"),
		)
		It("should fail on a missing file", func() {
			_, err := config.Load(filepath.Join(tempDir(), "missing.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})

	DescribeTable("Label",
		func(domain, expected string) {
			Expect(config.Label(domain)).To(Equal(expected))
		},
		Entry("plain keyword", "amazon", "amazon"),
		Entry("domain", "amazon.com", "amazon"),
		Entry("subdomain and two-level suffix", "login.amazon.co.uk", "amazon"),
		Entry("suffix only", "co.uk", "co.uk"),
	)
})
