package certstream

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	log "github.com/sirupsen/logrus"
)

// DefaultURL is the public websocket stream from calidog
const DefaultURL = "wss://certstream.calidog.io"

// reconnectDelay is the pause before dialing again after an error
const reconnectDelay = 1 * time.Second

// Client reads CertStream messages from a websocket
type Client struct {
	URL    string
	Log    *log.Logger
	Dialer ws.Dialer
}

// NewClient returns a Client for url
func NewClient(url string, logger *log.Logger) *Client {
	return &Client{
		URL: url,
		Log: logger,
		Dialer: ws.Dialer{
			ReadBufferSize:  8192,
			WriteBufferSize: 512,
			Timeout:         5 * time.Second,
		},
	}
}

// Run pushes every message to out, reconnecting on errors, until ctx is done
func (c *Client) Run(ctx context.Context, out chan<- []byte) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, br, _, err := c.Dialer.Dial(ctx, c.URL)
		if err != nil {
			c.Log.Warnf("Error connecting to CertStream! Sleeping a few seconds and reconnecting...: %v", err)
			if !sleep(ctx, reconnectDelay) {
				return nil
			}
			continue
		}
		c.Log.Infof("Connected to CertStream %s", c.URL)
		c.read(ctx, conn, br, out)
		conn.Close()
	}
}

// read forwards messages until the connection fails or ctx is done
func (c *Client) read(ctx context.Context, conn net.Conn, br *bufio.Reader, out chan<- []byte) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var rw io.ReadWriter = conn
	if br != nil {
		// the handshake reader may already hold the first frames
		rw = struct {
			io.Reader
			io.Writer
		}{br, conn}
		defer ws.PutReader(br)
	}

	for {
		msg, _, err := wsutil.ReadServerData(rw)
		if err != nil {
			if ctx.Err() == nil {
				c.Log.Warnf("Error reading message from CertStream: %v", err)
			}
			return
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
