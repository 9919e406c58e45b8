// Package metrics exposes prometheus counters for remote traffic and
// store mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteCalls counts every remote mutation attempt.
	RemoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockdesk_remote_calls_total",
		Help: "Remote mutation attempts by table and operation.",
	}, []string{"table", "op"})

	// RemoteFailures counts rejected remote mutations by error kind.
	RemoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockdesk_remote_failures_total",
		Help: "Remote mutation failures by table, operation and error kind.",
	}, []string{"table", "op", "kind"})

	// MutationsApplied counts confirmed mutations applied to local state.
	MutationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockdesk_mutations_applied_total",
		Help: "Confirmed mutations applied to the in-memory store.",
	}, []string{"table", "op"})
)
