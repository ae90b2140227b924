// Package metrics 提供 Prometheus helper，包含请求指标与定价业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 定价计算计数，按模型区分
	ValuationsTotal *prometheus.CounterVec
	// 定价失败计数
	ValuationErrors prometheus.Counter
	// 定价计算耗时
	ValuationDuration prometheus.Histogram
	// 隐含波动率求解计数，按求解器区分
	ImpliedVolSolves *prometheus.CounterVec
	// Outbox 转发消息计数
	OutboxRelayed prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ValuationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "valuations_total",
			Help:      "Total option valuations by pricing model",
		}, []string{"model"}),
		ValuationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "valuation_errors_total",
			Help:      "Total failed valuations",
		}),
		ValuationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "valuation_duration_seconds",
			Help:      "Valuation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ImpliedVolSolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "implied_vol_solves_total",
			Help:      "Total implied volatility solves by solver",
		}, []string{"solver"}),
		OutboxRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "outbox_relayed_total",
			Help:      "Total outbox messages relayed to the broker",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ValuationsTotal,
		m.ValuationErrors,
		m.ValuationDuration,
		m.ImpliedVolSolves,
		m.OutboxRelayed,
	}

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
