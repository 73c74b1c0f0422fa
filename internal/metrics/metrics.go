package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"

	// IntentUnknown — метка запросов, интент которых не нашёлся среди обработчиков.
	// Имя интента приходит в теле запроса, поэтому в метку попадают только известные имена.
	IntentUnknown = "unknown"
)

var (
	// RequestsTotal считает запросы навыка по интенту и результату обработки
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yandex_dialogs_requests_total",
		Help: "Total number of Yandex Dialogs requests by intent and outcome",
	}, []string{"intent", "outcome"})

	IntentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yandex_dialogs_intent_duration_seconds",
		Help:    "Time spent resolving intents",
		Buckets: prometheus.DefBuckets,
	})
)
