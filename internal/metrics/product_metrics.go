package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// CollectionLoads counts product collection reloads by result.
	CollectionLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_collection_loads_total",
		Help: "The total number of product collection reloads",
	}, []string{"result"})

	// StaleLoadsDiscarded counts reload responses dropped because a newer reload had already been applied.
	StaleLoadsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_collection_stale_loads_discarded_total",
		Help: "The total number of reload responses discarded as stale",
	})

	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of product create requests",
	}, []string{"result"})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of product delete requests",
	}, []string{"result"})

	// DraftsRejected counts creation attempts blocked by validation.
	DraftsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_drafts_rejected_total",
		Help: "The total number of product drafts rejected by validation",
	})
)

// Result maps an error to a result label value.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
