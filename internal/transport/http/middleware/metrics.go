package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bids_api",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests",
		}, []string{"path", "method", "status"},
	)
	reqLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bids_api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	reqInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bids_api",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being handled",
	})
)

func init() { prometheus.MustRegister(reqTotal, reqLatency, reqInflight) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqInflight.Inc()
		start := time.Now()
		c.Next()
		reqInflight.Dec()

		// 未命中路由时用原始 path，避免基数爆炸的风险由限速层兜住
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		reqLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
