package resilience

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"

	"github.com/FahadBinHussain/Xenovate/internal/transport"
)

var (
	directOnce      sync.Once
	directTransport *http.Transport

	proxiedMu sync.Mutex
	proxied   = map[string]*http.Transport{}
)

// NewHTTPClient returns a client for upstream calls. An empty proxyURL uses
// the shared direct transport; proxied transports are cached per URL. The
// timeout is a backstop: callers bound each call with a context deadline.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	rt, err := transportFor(proxyURL)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: rt, Timeout: timeout}, nil
}

func transportFor(proxyURL string) (*http.Transport, error) {
	if proxyURL == "" {
		directOnce.Do(func() {
			directTransport = baseTransport()
			directTransport.DialContext = dialer().DialContext
		})
		return directTransport, nil
	}

	proxiedMu.Lock()
	defer proxiedMu.Unlock()
	if t := proxied[proxyURL]; t != nil {
		return t, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	t := baseTransport()
	switch u.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		d, err := proxy.SOCKS5("tcp", u.Host, auth, dialer())
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy: %w", err)
		}
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := d.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return d.Dial(network, addr)
		}
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
		t.DialContext = dialer().DialContext
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	proxied[proxyURL] = t
	return t, nil
}

func dialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   transport.Config.DialTimeout,
		KeepAlive: transport.Config.KeepAlive,
	}
}

// baseTransport returns a pooled transport without a dialer.
func baseTransport() *http.Transport {
	t := &http.Transport{
		MaxIdleConns:          transport.Config.MaxIdleConns,
		MaxIdleConnsPerHost:   transport.Config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       transport.Config.MaxConnsPerHost,
		IdleConnTimeout:       transport.Config.IdleConnTimeout,
		TLSHandshakeTimeout:   transport.Config.TLSHandshakeTimeout,
		ExpectContinueTimeout: transport.Config.ExpectContinueTimeout,
		ResponseHeaderTimeout: transport.Config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
	if h2, err := http2.ConfigureTransports(t); err == nil {
		h2.ReadIdleTimeout = transport.Config.H2ReadIdleTimeout
		h2.PingTimeout = transport.Config.H2PingTimeout
	}
	return t
}
