package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Signal pipeline metrics
	signalsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_signals_total",
			Help: "Total number of signals successfully processed",
		},
		[]string{"source", "asset", "direction"},
	)

	parseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_parse_failures_total",
			Help: "Total number of instructions rejected by the parser",
		},
		[]string{"source", "kind"},
	)

	processDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_bot_process_duration_seconds",
			Help:    "Time spent parsing and calculating one instruction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Delivery metrics
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_deliveries_total",
			Help: "Total number of signal deliveries per channel",
		},
		[]string{"channel"},
	)

	deliveryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_delivery_failures_total",
			Help: "Total number of failed signal deliveries per channel",
		},
		[]string{"channel"},
	)

	levelsCalculatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_levels_calculated_total",
			Help: "Total number of TP/SL level sets calculated, by distance unit",
		},
		[]string{"unit"},
	)

	// Reference data metrics
	referencePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_bot_reference_price",
			Help: "Reference entry price used for instructions without @price",
		},
		[]string{"asset"},
	)

	ruleAssets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signal_bot_rule_assets",
			Help: "Number of assets configured in the rule table",
		},
	)

	ruleCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signal_bot_rule_count",
			Help: "Number of asset timeframe rules configured in the rule table",
		},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(signalsProcessedTotal)
	prometheus.MustRegister(parseFailuresTotal)
	prometheus.MustRegister(processDuration)
	prometheus.MustRegister(deliveriesTotal)
	prometheus.MustRegister(deliveryFailuresTotal)
	prometheus.MustRegister(levelsCalculatedTotal)
	prometheus.MustRegister(referencePrice)
	prometheus.MustRegister(ruleAssets)
	prometheus.MustRegister(ruleCount)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordSignal records one successfully processed instruction
func RecordSignal(source, asset, direction string, seconds float64) {
	signalsProcessedTotal.WithLabelValues(source, asset, direction).Inc()
	processDuration.WithLabelValues(source).Observe(seconds)
}

// RecordParseFailure records a rejected instruction by failure kind
func RecordParseFailure(source, kind string) {
	parseFailuresTotal.WithLabelValues(source, kind).Inc()
}

// RecordDelivery records a successful delivery to a channel
func RecordDelivery(channel string) {
	deliveriesTotal.WithLabelValues(channel).Inc()
}

// RecordDeliveryFailure records a failed delivery to a channel
func RecordDeliveryFailure(channel string) {
	deliveryFailuresTotal.WithLabelValues(channel).Inc()
}

// RecordLevels records one calculated TP/SL level set by distance unit
func RecordLevels(unit string) {
	levelsCalculatedTotal.WithLabelValues(unit).Inc()
}

// UpdateReferencePrice updates the reference price gauge for an asset
func UpdateReferencePrice(asset string, price float64) {
	referencePrice.WithLabelValues(asset).Set(price)
}

// SetRuleTableSize publishes the size of the loaded rule table
func SetRuleTableSize(assets, rules int) {
	ruleAssets.Set(float64(assets))
	ruleCount.Set(float64(rules))
}
