package devstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	changesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kavastore_changes_published_total",
		Help: "Change events published to the notification channel, by table.",
	}, []string{"table"})

	changeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kavastore_change_subscribers",
		Help: "Currently connected change-feed websocket clients.",
	})
)
