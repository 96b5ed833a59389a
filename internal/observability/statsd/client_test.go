package statsd

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

func TestMetricName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, name, want string
	}{
		{"storyweb", "guard.redirect", "storyweb.guard.redirect"},
		{"", " session/expired ", "session_expired"},
		{"storyweb", "auth..login.", "storyweb.auth.login"},
		{"storyweb", "  ", ""},
		{"", "multi  space", "multi__space"},
	}
	for _, tt := range tests {
		if got := metricName(tt.prefix, tt.name); got != tt.want {
			t.Fatalf("metricName(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " storyweb "}
	local := map[string]string{"result": " success ", "": "ignored", "env": "stage"}

	want := "|#env:stage,result:success,service:storyweb"
	if got := formatTags(global, local); got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatTags(nil, nil); got != "" {
		t.Fatalf("formatTags(nil, nil) = %q, want empty string", got)
	}
}

func TestClientWritesLines(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer pc.Close()

	client, err := NewClient(context.Background(), Config{
		Enabled:    true,
		Address:    pc.LocalAddr().String(),
		Prefix:     ".storyweb.",
		GlobalTags: map[string]string{"env": "test"},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer client.Close()

	read := func() string {
		t.Helper()
		buf := make([]byte, 512)
		_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, rerr := pc.ReadFrom(buf)
		if rerr != nil {
			t.Fatalf("read: %v", rerr)
		}
		return string(buf[:n])
	}

	client.Count("guard.redirect", 1, map[string]string{"audience": "private"})
	if got, want := read(), "storyweb.guard.redirect:1|c|#audience:private,env:test"; got != want {
		t.Fatalf("count line = %q, want %q", got, want)
	}

	client.Timing("http.request", 1500*time.Microsecond, nil)
	if got, want := read(), "storyweb.http.request:1.5|ms|#env:test"; got != want {
		t.Fatalf("timing line = %q, want %q", got, want)
	}

	client.Gauge("sessions.active", 3, nil)
	if got, want := read(), "storyweb.sessions.active:3|g|#env:test"; got != want {
		t.Fatalf("gauge line = %q, want %q", got, want)
	}
}

func TestClientEnabledAndClose(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}
	if !client.Enabled() {
		t.Fatal("expected client.Enabled to report true with active connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client.Enabled to report false after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close (second call) error: %v", err)
	}
	client.Count("after.close", 1, nil)

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	nilClient.Count("noop", 1, nil)
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil client Close error: %v", err)
	}
}

func TestNewClient_Disabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Enabled: true, Address: "   "},
		{Enabled: false, Address: "127.0.0.1:8125"},
	} {
		client, err := NewClient(context.Background(), cfg)
		if err != nil {
			t.Fatalf("NewClient error: %v", err)
		}
		if client.Enabled() {
			t.Fatalf("expected client to stay disabled for %+v", cfg)
		}
	}
}

func TestNewClient_DialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), Config{Enabled: true, Address: "bad address"})
	if err == nil || !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("expected statsd dial error, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	tags := map[string]string{"context": "user"}
	r.Count("session.expired", 1, tags)
	r.Timing("http.request", 2*time.Millisecond, nil)
	tags["context"] = "mutated"

	got := r.Named("session.expired")
	if len(got) != 1 || got[0].Tags["context"] != "user" || got[0].Kind != "c" {
		t.Fatalf("unexpected recorded metrics: %+v", got)
	}
	if all := r.Metrics(); len(all) != 2 || all[1].Value != 2 {
		t.Fatalf("unexpected metrics: %+v", all)
	}
}
