package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	userAgent        = "key-collection"
	retryCount       = 2
	retryWaitTime    = 100 * time.Millisecond
	retryMaxWaitTime = time.Second
)

// HTTPClient is the resty client used to talk to peers. It embeds
// *resty.Client so every resty method is available.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns an independent client whose requests are bounded by
// timeout (zero means no limit). Requests failing with a transport error are
// retried twice with a short backoff; HTTP error statuses are not retried.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime)

	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
