package certstream_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"certpipe/pkg/certstream"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"
)

var _ = Describe("Client", func() {
	It("should forward server messages", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, _, _, err := ws.UpgradeHTTP(r, w)
			if err != nil {
				return
			}
			defer conn.Close()
			_ = wsutil.WriteServerMessage(conn, ws.OpText, []byte(`{"message_type":"heartbeat"}`))
			_ = wsutil.WriteServerMessage(conn, ws.OpText, []byte(`{"message_type":"certificate_update"}`))
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}))
		defer srv.Close()

		logger := log.New()
		logger.SetOutput(io.Discard)
		c := certstream.NewClient("ws://"+strings.TrimPrefix(srv.URL, "http://"), logger)

		ctx, cancel := context.WithCancel(context.Background())
		msgs := make(chan []byte, 10)
		done := make(chan error, 1)
		go func() { done <- c.Run(ctx, msgs) }()

		Eventually(msgs).Should(Receive(Equal([]byte(`{"message_type":"heartbeat"}`))))
		Eventually(msgs).Should(Receive(Equal([]byte(`{"message_type":"certificate_update"}`))))

		cancel()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})

	It("should stop retrying when the context ends", func() {
		logger := log.New()
		logger.SetOutput(io.Discard)
		c := certstream.NewClient("ws://127.0.0.1:1", logger)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		Expect(c.Run(ctx, make(chan []byte))).To(Succeed())
	})
})
