// Package transport holds the HTTP transport tuning shared by upstream clients.
package transport

import "time"

// Config holds connection pool and timeout settings for upstream HTTP clients.
// Model calls are single request/response exchanges, so pools stay small and
// header timeouts cover slow generations.
var Config = struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	ResponseHeaderTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	H2ReadIdleTimeout     time.Duration
	H2PingTimeout         time.Duration
}{
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   20,
	MaxConnsPerHost:       0, // unlimited; HTTP/2 multiplexes
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: time.Second,
	ResponseHeaderTimeout: 180 * time.Second,
	DialTimeout:           30 * time.Second,
	KeepAlive:             30 * time.Second,
	H2ReadIdleTimeout:     30 * time.Second,
	H2PingTimeout:         15 * time.Second,
}
