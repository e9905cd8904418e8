package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SimulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "makespan_simulations_total",
		Help: "已完成的模拟次数",
	}, []string{"mode", "status"})

	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "makespan_simulation_duration_seconds",
		Help:    "单次模拟的运行时间",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
	})

	BestScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "makespan_best_score",
		Help: "每个执行时间表最近一次模拟得到的最佳适应度",
	}, []string{"cost_matrix_id"})

	ResultCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "makespan_result_cache_lookups_total",
		Help: "模拟结果缓存的查询次数",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(SimulationsTotal, SimulationDuration, BestScore, ResultCacheLookups)
}
