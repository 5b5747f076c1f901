// Package metrics registers the service's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GiftsClaimed counts successful public claim operations.
	GiftsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftregistry_gifts_claimed_total",
		Help: "Total number of gifts marked as bought by visitors",
	})

	// GiftClaimConflicts counts claims that lost the race to an earlier buyer.
	GiftClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftregistry_gift_claim_conflicts_total",
		Help: "Total number of claim attempts on already bought gifts",
	})

	// HTTPRequests counts handled requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftregistry_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"method", "status"})
)
