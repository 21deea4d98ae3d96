package promclient

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var OpenOrderBooksGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "open_order_books",
		Help: "number of live order books maintained per provider",
	},
	[]string{"provider"},
)

var DesyncCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_book_desyncs_total",
		Help: "order books dropped after a detected sequence gap",
	},
	[]string{"provider"},
)

var StaleUpdatesCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stale_depth_updates_total",
		Help: "depth updates discarded as older than the book nonce",
	},
	[]string{"provider"},
)

func StartPromClientServer(port int) {
	reg := prometheus.NewRegistry()
	promHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	reg.MustRegister(OpenOrderBooksGauge)
	reg.MustRegister(DesyncCounter)
	reg.MustRegister(StaleUpdatesCounter)
	reg.MustRegister(collectors.NewGoCollector())

	http.Handle("/metrics", promHandler)
	log.Printf("prometheus server listening at :%d", port)

	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
