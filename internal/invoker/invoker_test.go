package invoker

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"tickd/pkg/logx"
)

func TestGetReturnsStatusCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		code int
	}{
		{name: "ok", code: 200},
		{name: "no content", code: 204},
		{name: "server error", code: 503},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			c := New(srv.Listener.Addr().String(), logx.Nop())
			got, err := c.Get(context.Background(), "/job")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != tt.code {
				t.Fatalf("code = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestGetSetsHostHeaderAndPath(t *testing.T) {
	t.Parallel()
	var gotHost, gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost.Store(r.Host)
		gotPath.Store(r.URL.Path)
	}))
	defer srv.Close()

	addr := srv.Listener.Addr().String()
	c := New(addr, logx.Nop())
	if _, err := c.Get(context.Background(), "/poll"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	if gotHost.Load() != host {
		t.Fatalf("Host header = %v, want %s", gotHost.Load(), host)
	}
	if gotPath.Load() != "/poll" {
		t.Fatalf("path = %v, want /poll", gotPath.Load())
	}
}

func TestGetReusesConnection(t *testing.T) {
	t.Parallel()
	var conns atomic.Int64
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			conns.Add(1)
		}
	}
	srv.Start()
	defer srv.Close()

	c := New(srv.Listener.Addr().String(), logx.Nop())
	for i := 0; i < 5; i++ {
		if _, err := c.Get(context.Background(), "/poll"); err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
	}
	if got := conns.Load(); got != 1 {
		t.Fatalf("opened %d connections, want 1 (reuse)", got)
	}
}

func TestGetConnectionRefused(t *testing.T) {
	t.Parallel()
	// Grab a port and close it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	c := New(addr, logx.Nop())
	if _, err := c.Get(context.Background(), "/poll"); err == nil {
		t.Fatal("expected connection error")
	}
}
