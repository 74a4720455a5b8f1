package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestWithTimeouts(t *testing.T) {
	cfg := WithTimeouts(30*time.Second, 0)
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.ResponseHeaderTimeout != DefaultConfig().ResponseHeaderTimeout {
		t.Errorf("ResponseHeaderTimeout = %v, want default", cfg.ResponseHeaderTimeout)
	}
}

func TestNewHTTPClient(t *testing.T) {
	cfg := WithTimeouts(15*time.Second, 5*time.Second)
	client := NewHTTPClient(&cfg)

	if client.Timeout != 15*time.Second {
		t.Errorf("client.Timeout = %v, want 15s", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *http.Transport", client.Transport)
	}
	if transport.ResponseHeaderTimeout != 5*time.Second {
		t.Errorf("ResponseHeaderTimeout = %v, want 5s", transport.ResponseHeaderTimeout)
	}
	if transport.MaxIdleConnsPerHost != 20 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 20", transport.MaxIdleConnsPerHost)
	}
}

func TestNewDefaultHTTPClient(t *testing.T) {
	if got := NewDefaultHTTPClient().Timeout; got != DefaultConfig().Timeout {
		t.Errorf("Timeout = %v, want %v", got, DefaultConfig().Timeout)
	}
}
