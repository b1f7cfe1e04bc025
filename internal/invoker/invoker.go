// Package invoker wraps the single outbound call a task makes per run.
package invoker

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"

	"tickd/pkg/logx"
)

// HTTP issues GET requests to a fixed host:port with the Host header set to
// the host. The underlying client (and its connections) is created lazily on
// the first call and reused for every subsequent call; each task owns its
// own HTTP instance, so connections are never shared across tasks.
type HTTP struct {
	addr string // host:port
	host string // Host header value
	log  logx.Logger

	once   sync.Once
	client *http.Client
}

func New(addr string, log logx.Logger) *HTTP {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	return &HTTP{addr: addr, host: host, log: log}
}

// Get performs one request to target (a path on the configured host:port)
// and returns the HTTP status code. Any transport error is connection-level
// and reported as-is; there is no timeout and no retry at this layer.
func (c *HTTP) Get(ctx context.Context, target string) (int, error) {
	c.once.Do(func() {
		c.client = &http.Client{Transport: &http.Transport{}}
		c.log.Debug("connection handle created", logx.String("addr", c.addr))
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.addr+target, nil)
	if err != nil {
		return 0, err
	}
	req.Host = c.host

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// The body is not processed; drain it so the connection is reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
