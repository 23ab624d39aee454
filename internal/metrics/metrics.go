// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(duration time.Duration)
	RecordAuthEvent(event string)
	RecordKmLog()
	RecordWalletProvision(platform string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	authEvents      *prometheus.CounterVec
	kmLogs          prometheus.Counter
	walletProvision *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelgo_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fuelgo_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelgo_auth_events_total",
			Help: "認証イベント（登録・ログイン・招待）の件数",
		}, []string{"event"}),
		kmLogs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fuelgo_km_logs_total",
			Help: "走行距離記録の受付件数",
		}),
		walletProvision: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelgo_wallet_provision_requests_total",
			Help: "ウォレットプラットフォーム別のプロビジョニング要求数",
		}, []string{"platform"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.authEvents,
		c.kmLogs,
		c.walletProvision,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// RecordAuthEvent は認証イベントを記録する。
func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

// RecordKmLog は走行距離記録の受付を記録する。
func (c *Collector) RecordKmLog() {
	c.kmLogs.Inc()
}

// RecordWalletProvision はプロビジョニング要求を記録する。
func (c *Collector) RecordWalletProvision(platform string) {
	c.walletProvision.WithLabelValues(platform).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
