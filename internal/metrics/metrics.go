package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the registry's observable outcomes. Incremented by the HTTP
// layer, the engine itself stays free of side effects.
var (
	TenantsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_tenants_registered_total",
		Help: "Number of tenants registered into vacant apartments",
	})

	TenantsReplaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_tenants_replaced_total",
		Help: "Number of confirmed occupant replacements",
	})

	TenanciesEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_tenancies_ended_total",
		Help: "Number of tenancies explicitly ended",
	})

	ConfirmationsRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_confirmations_requested_total",
		Help: "Number of registration probes answered with an occupancy conflict",
	})

	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_validation_failures_total",
		Help: "Number of requests rejected by field validation",
	})
)
