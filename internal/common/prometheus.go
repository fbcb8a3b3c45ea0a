package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	LedgerOperationTotal       = "reward_ledger_operations_total"
	VoteTotal                  = "votes_total"
	RedemptionTotal            = "redemptions_total"
	AttendanceTotal            = "attendances_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		LedgerOperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerOperationTotal,
			Help: "Count of committed reward ledger credits and debits",
		}, []string{"kind"}),
		VoteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VoteTotal,
			Help: "Count of recorded votes",
		}, []string{"mode"}),
		RedemptionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RedemptionTotal,
			Help: "Count of order status changes",
		}, []string{"status"}),
		AttendanceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: AttendanceTotal,
			Help: "Count of marked attendances",
		}, []string{"mode"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)

func IncCounter(name string, labels ...string) {
	if counter, ok := PromCounters[name]; ok {
		counter.WithLabelValues(labels...).Inc()
	}
}

func PromCollectors() []prometheus.Collector {
	result := []prometheus.Collector{}
	for _, c := range PromCounters {
		result = append(result, c)
	}

	for _, h := range PromHistograms {
		result = append(result, h)
	}

	return result
}
