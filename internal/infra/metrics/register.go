// Package metrics holds the process-wide Prometheus collectors. Each
// file declares its collectors and enqueues them from init(); the
// composition root calls MustRegister once after flag parsing so tests
// importing this package never touch the default registry.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister installs every enqueued collector. Safe to call from
// multiple composition roots; only the first call registers.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}

// norm canonicalizes label values so callers can pass raw vendor
// strings without exploding cardinality.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
