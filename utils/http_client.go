package utils

import (
	"net"
	"net/http"
	"time"
)

var (
	// GlobalHTTPClient is a shared HTTP client with sane defaults. Callers
	// bound individual requests with a context deadline.
	GlobalHTTPClient *http.Client
)

func init() {
	// Create a custom transport with connection pooling and timeouts
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	GlobalHTTPClient = &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second, // Overall request timeout
	}
}
