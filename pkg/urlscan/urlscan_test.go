package urlscan_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"certpipe/pkg/urlscan"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"
)

var _ = Describe("URLScan", func() {
	var (
		srv      *httptest.Server
		status   int
		apiKey   string
		received map[string]string
		client   *urlscan.Client
	)

	BeforeEach(func() {
		status = http.StatusOK
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey = r.Header.Get("API-Key")
			_ = json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message": "Submission successful", "result": "https://urlscan.io/result/1234/"}`))
		}))
		logger := log.New()
		logger.SetOutput(io.Discard)
		client = urlscan.NewClient("secret", 0, logger)
		client.URL = srv.URL
	})
	AfterEach(func() {
		srv.Close()
	})

	It("should submit a public scan and return the result page", func() {
		Expect(client.Submit(context.Background(), "amaz0n.com")).To(Equal("https://urlscan.io/result/1234/"))
		Expect(apiKey).To(Equal("secret"))
		Expect(received).To(Equal(map[string]string{"url": "amaz0n.com", "public": "on"}))
	})
	It("should return an empty string when the scan is refused", func() {
		status = http.StatusTooManyRequests
		Expect(client.Submit(context.Background(), "amaz0n.com")).To(Equal(""))
	})
	It("should return an empty string when urlscan.io is unreachable", func() {
		srv.Close()
		Expect(client.Submit(context.Background(), "amaz0n.com")).To(Equal(""))
	})
	It("should log and return an empty string when the request can't be built", func() {
		var logs bytes.Buffer
		logger := log.New()
		logger.SetOutput(&logs)
		broken := urlscan.NewClient("secret", 0, logger)
		broken.URL = "://urlscan"
		Expect(broken.Submit(context.Background(), "amaz0n.com")).To(Equal(""))
		Expect(logs.String()).To(ContainSubstring("can't create URLScan.io request"))
	})
	It("should give up when the context is cancelled while rate limited", func() {
		logger := log.New()
		logger.SetOutput(io.Discard)
		limited := urlscan.NewClient("secret", 0.001, logger)
		limited.URL = srv.URL
		Expect(limited.Submit(context.Background(), "a.com")).NotTo(BeEmpty())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(limited.Submit(ctx, "b.com")).To(Equal(""))
	})
})
