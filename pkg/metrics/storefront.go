package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Outcomes handed out by blind box purchases
	BlindBoxDraws = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kawaii_blindbox_draws_total",
		Help: "Blind box outcomes drawn, by product and outcome",
	}, []string{"product_id", "outcome"})

	// End-to-end latency of a blind box purchase, draw and persistence included
	BlindBoxPurchaseLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kawaii_blindbox_purchase_seconds",
		Help:    "Latency of blind box purchases",
		Buckets: prometheus.DefBuckets,
	})

	OrdersPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kawaii_orders_placed_total",
		Help: "Orders created, by order type",
	}, []string{"order_type"})
)

func Init() {
	prometheus.MustRegister(
		BlindBoxDraws,
		BlindBoxPurchaseLatency,
		OrdersPlaced,
	)
}
