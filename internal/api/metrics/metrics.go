// Package metrics defines and registers all custom Prometheus metrics for
// the olivegardens backend. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation via promauto, before the HTTP server starts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "olivegardens"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited", "deactivated", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts requests rejected because the source IP was blocked
// by the login attempt guard.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of requests rejected by the IP lockout guard.",
	},
)

// TokenVerificationsTotal counts bearer token checks on protected routes.
// Label:
//   - outcome: "ok", "expired", "revoked", "malformed", "not_yet_valid", "missing"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, labelled by outcome.",
	},
	[]string{"outcome"},
)

// RevocationsTotal counts tokens inserted into the revocation store.
var RevocationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revocations_total",
		Help:      "Total number of tokens revoked via logout.",
	},
)

// ForbiddenTotal counts authenticated requests denied by role, account
// state, or verification requirements.
// Label:
//   - reason: "role", "deactivated", "unverified"
var ForbiddenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forbidden_total",
		Help:      "Total number of authenticated requests denied authorization.",
	},
	[]string{"reason"},
)
