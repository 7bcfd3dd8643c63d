package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Vault Metrics Collector
// Provides metrics for monitoring pool health and API traffic

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all vault metrics
type Collector struct {
	// Pool metrics
	TotalValueLocked prometheus.Gauge
	TotalShares      prometheus.Gauge
	ExchangeRate     prometheus.Gauge
	IdleBalance      prometheus.Gauge
	StrategyBalance  prometheus.Gauge
	Holders          prometheus.Gauge
	Paused           prometheus.Gauge

	// Flow metrics
	DepositsTotal     prometheus.Counter
	DepositVolume     prometheus.Counter
	WithdrawalsTotal  prometheus.Counter
	WithdrawalVolume  prometheus.Counter
	SharesMinted      prometheus.Counter
	SharesBurned      prometheus.Counter
	OperationsFailed  *prometheus.CounterVec
	OperationLatency  *prometheus.HistogramVec

	// Strategy metrics
	StrategyForwards prometheus.Counter
	StrategyPulls    prometheus.Counter
	StrategyPullVol  prometheus.Counter

	// WebSocket metrics
	WSConnectionsActive prometheus.Gauge
	WSMessagesTotal     *prometheus.CounterVec
	WSSubscriptions     *prometheus.GaugeVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	RateLimitHits     *prometheus.CounterVec

	// System metrics
	BlockHeight prometheus.Gauge
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Pool metrics
	c.TotalValueLocked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "total_value_locked",
			Help:      "Total assets under management (idle plus delegated)",
		},
	)

	c.TotalShares = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "total_shares",
			Help:      "Total share supply",
		},
	)

	c.ExchangeRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "exchange_rate",
			Help:      "Current assets-per-share rate",
		},
	)

	c.IdleBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "idle_balance",
			Help:      "Assets held directly by the vault",
		},
	)

	c.StrategyBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "strategy_balance",
			Help:      "Assets reported by the bound strategy",
		},
	)

	c.Holders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "holders",
			Help:      "Number of addresses that have ever deposited",
		},
	)

	c.Paused = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "pool",
			Name:      "paused",
			Help:      "1 when deposits and withdrawals are paused",
		},
	)

	// Flow metrics
	c.DepositsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "deposits_total",
			Help:      "Total number of deposits",
		},
	)

	c.DepositVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "deposit_volume",
			Help:      "Total assets deposited",
		},
	)

	c.WithdrawalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "withdrawals_total",
			Help:      "Total number of withdrawals",
		},
	)

	c.WithdrawalVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "withdrawal_volume",
			Help:      "Total assets withdrawn",
		},
	)

	c.SharesMinted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "shares_minted",
			Help:      "Total shares minted",
		},
	)

	c.SharesBurned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "shares_burned",
			Help:      "Total shares burned",
		},
	)

	c.OperationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "operations_failed",
			Help:      "Rejected or rolled-back operations",
		},
		[]string{"operation", "reason"},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vault",
			Subsystem: "flows",
			Name:      "operation_latency_ms",
			Help:      "Operation processing latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)

	// Strategy metrics
	c.StrategyForwards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "strategy",
			Name:      "forwards_total",
			Help:      "Deposits forwarded to the bound strategy",
		},
	)

	c.StrategyPulls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "strategy",
			Name:      "pulls_total",
			Help:      "Withdrawals that pulled assets back from the strategy",
		},
	)

	c.StrategyPullVol = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "strategy",
			Name:      "pull_volume",
			Help:      "Total assets pulled back from the strategy",
		},
	)

	// WebSocket metrics
	c.WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total WebSocket messages sent",
		},
		[]string{"channel"},
	)

	c.WSSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "websocket",
			Name:      "subscriptions",
			Help:      "Number of active subscriptions per channel",
		},
		[]string{"channel"},
	)

	// API metrics
	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vault",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	c.RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "api",
			Name:      "rate_limit_hits",
			Help:      "Total rate limit hits",
		},
		[]string{"limit_type"},
	)

	// System metrics
	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vault",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	prometheus.MustRegister(c.TotalValueLocked)
	prometheus.MustRegister(c.TotalShares)
	prometheus.MustRegister(c.ExchangeRate)
	prometheus.MustRegister(c.IdleBalance)
	prometheus.MustRegister(c.StrategyBalance)
	prometheus.MustRegister(c.Holders)
	prometheus.MustRegister(c.Paused)

	prometheus.MustRegister(c.DepositsTotal)
	prometheus.MustRegister(c.DepositVolume)
	prometheus.MustRegister(c.WithdrawalsTotal)
	prometheus.MustRegister(c.WithdrawalVolume)
	prometheus.MustRegister(c.SharesMinted)
	prometheus.MustRegister(c.SharesBurned)
	prometheus.MustRegister(c.OperationsFailed)
	prometheus.MustRegister(c.OperationLatency)

	prometheus.MustRegister(c.StrategyForwards)
	prometheus.MustRegister(c.StrategyPulls)
	prometheus.MustRegister(c.StrategyPullVol)

	prometheus.MustRegister(c.WSConnectionsActive)
	prometheus.MustRegister(c.WSMessagesTotal)
	prometheus.MustRegister(c.WSSubscriptions)

	prometheus.MustRegister(c.APIRequestsTotal)
	prometheus.MustRegister(c.APIRequestLatency)
	prometheus.MustRegister(c.RateLimitHits)

	prometheus.MustRegister(c.BlockHeight)
}

// ============ Recording Helpers ============

// RecordDeposit records a completed deposit
func (c *Collector) RecordDeposit(amount, sharesMinted float64) {
	c.DepositsTotal.Inc()
	c.DepositVolume.Add(amount)
	c.SharesMinted.Add(sharesMinted)
}

// RecordWithdrawal records a completed withdrawal
func (c *Collector) RecordWithdrawal(assetsOut, sharesBurned, strategyPull float64) {
	c.WithdrawalsTotal.Inc()
	c.WithdrawalVolume.Add(assetsOut)
	c.SharesBurned.Add(sharesBurned)
	if strategyPull > 0 {
		c.StrategyPulls.Inc()
		c.StrategyPullVol.Add(strategyPull)
	}
}

// RecordFailure records a rejected or rolled-back operation
func (c *Collector) RecordFailure(operation, reason string) {
	c.OperationsFailed.WithLabelValues(operation, reason).Inc()
}

// RecordOperationLatency records operation processing latency
func (c *Collector) RecordOperationLatency(operation string, latencyMs float64) {
	c.OperationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdatePool refreshes the pool-level gauges
func (c *Collector) UpdatePool(tvl, totalShares, rate, idle, delegated float64, holders int64, paused bool) {
	c.TotalValueLocked.Set(tvl)
	c.TotalShares.Set(totalShares)
	c.ExchangeRate.Set(rate)
	c.IdleBalance.Set(idle)
	c.StrategyBalance.Set(delegated)
	c.Holders.Set(float64(holders))
	if paused {
		c.Paused.Set(1)
	} else {
		c.Paused.Set(0)
	}
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection records WebSocket connection changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.Add(float64(delta))
}

// RecordWSMessage records a WebSocket message
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// UpdateBlockHeight updates the block height gauge
func (c *Collector) UpdateBlockHeight(height int64) {
	c.BlockHeight.Set(float64(height))
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
