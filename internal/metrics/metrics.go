package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 公告聚合相关指标
type Metrics struct {
	RemoteFetches    *prometheus.CounterVec
	RemoteFetchTime  prometheus.Summary
	CacheLookups     *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
}

// New 创建并注册指标，reg 为 nil 时不注册
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemoteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noticeboard",
			Name:      "remote_fetch_total",
			Help:      "Nextcloud announcement requests by result",
		}, []string{"result"}),
		RemoteFetchTime: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "noticeboard",
			Name:      "remote_fetch_duration_seconds",
			Help:      "Time spent waiting for the Nextcloud announcement endpoint",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noticeboard",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noticeboard",
			Name:      "provider_failures_total",
			Help:      "Announcement provider failures by source",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.RemoteFetches, m.RemoteFetchTime, m.CacheLookups, m.ProviderFailures)
	}
	return m
}
