package backend

import (
	"log/slog"
	"time"
)

// unhealthyThreshold is the number of consecutive transport failures after
// which the backend is considered unreachable.
const unhealthyThreshold = 3

// Health is a snapshot of the backend's reachability as observed by this
// client. Only transport failures count against health: a backend that
// answers with an error status is still reachable.
type Health struct {
	// Healthy reports whether the backend is considered reachable.
	Healthy bool

	// ConsecutiveFailures is the current run of transport failures.
	ConsecutiveFailures int

	// LastError is the most recent transport error, nil when healthy.
	LastError error

	// LastCheck is when reachability was last updated.
	LastCheck time.Time

	// LastSuccess is when the backend last produced a response.
	LastSuccess time.Time

	// TotalRequests counts all requests issued by this client.
	TotalRequests int64

	// FailedRequests counts requests that ended in a transport failure.
	FailedRequests int64
}

// recordResult updates reachability tracking after one request attempt.
// reached is true whenever the backend produced any HTTP response.
func (c *Client) recordResult(reached bool, err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.LastCheck = time.Now()
	c.health.TotalRequests++

	if reached {
		c.health.Healthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = nil
		c.health.LastSuccess = c.health.LastCheck
		return
	}

	c.health.FailedRequests++
	c.health.ConsecutiveFailures++
	c.health.LastError = err

	if c.health.ConsecutiveFailures >= unhealthyThreshold && c.health.Healthy {
		c.health.Healthy = false
		slog.Warn("backend marked unreachable",
			"base_url", c.BaseURL(),
			"consecutive_failures", c.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// Health returns a snapshot of the backend's observed reachability.
func (c *Client) Health() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}
