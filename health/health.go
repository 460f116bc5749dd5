// Package health provides bounded checks for the dependencies of an analysis
// run: the run directory, the graph store endpoint and the report broker.
//
// Every check returns a Status rather than an error so callers can combine
// them and decide whether to degrade:
//
//	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
//	defer cancel()
//	status := health.NetworkCheck(ctx, "localhost", 7687)
//	if status.IsUnhealthy() {
//	    // use the in-memory graph store
//	}
package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// DefaultTimeout bounds NetworkCheck when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// NetworkCheck verifies TCP connectivity to host:port. It never blocks past
// the context deadline, or DefaultTimeout when the context has none.
func NetworkCheck(ctx context.Context, host string, port int) Status {
	if host == "" {
		return Unhealthy("host cannot be empty", nil)
	}
	if port <= 0 || port > 65535 {
		return Unhealthy(fmt.Sprintf("invalid port number: %d", port), map[string]any{"port": port})
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return Unhealthy(fmt.Sprintf("failed to connect to %s", address), map[string]any{
			"address": address,
			"error":   err.Error(),
		})
	}
	_ = conn.Close()

	return Healthy(fmt.Sprintf("successfully connected to %s", address))
}

// DirCheck verifies that path exists and is a directory.
func DirCheck(path string) Status {
	if path == "" {
		return Unhealthy("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(fmt.Sprintf("directory '%s' does not exist", path), map[string]any{"path": path})
		}
		return Unhealthy(fmt.Sprintf("failed to stat '%s'", path), map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}
	if !info.IsDir() {
		return Unhealthy(fmt.Sprintf("'%s' is not a directory", path), map[string]any{"path": path})
	}

	return Healthy(fmt.Sprintf("directory '%s' exists", path))
}

// Optional downgrades an unhealthy status to degraded. Use it for
// dependencies the run can do without, such as the external graph store.
func Optional(s Status) Status {
	if s.IsUnhealthy() {
		return Degraded(s.Message, s.Details)
	}
	return s
}

// Combine aggregates checks into one status:
//   - unhealthy if any check is unhealthy
//   - degraded if any check is degraded and none unhealthy
//   - healthy otherwise, including when no checks are given
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthy, degraded []string
	healthy := 0
	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthy = append(unhealthy, msg)
		case StatusDegraded:
			degraded = append(degraded, msg)
		case StatusHealthy:
			healthy++
		}
	}

	if len(unhealthy) > 0 {
		return Unhealthy(fmt.Sprintf("%d check(s) failed", len(unhealthy)), map[string]any{
			"total":         len(checks),
			"unhealthy":     len(unhealthy),
			"degraded":      len(degraded),
			"healthy":       healthy,
			"failed_checks": unhealthy,
		})
	}
	if len(degraded) > 0 {
		return Degraded(fmt.Sprintf("%d check(s) degraded", len(degraded)), map[string]any{
			"total":           len(checks),
			"degraded":        len(degraded),
			"healthy":         healthy,
			"degraded_checks": degraded,
		})
	}
	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
