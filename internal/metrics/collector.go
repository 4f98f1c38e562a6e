package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"switchbot_dashboard/internal/models"
)

const namespace = "switchbot"

type requestKey struct {
	endpoint string
	outcome  string
}

type httpKey struct {
	route  string
	method string
	code   string
}

type meterState struct {
	reading   models.MeterReading
	updatedAt time.Time
}

// Collector exposes vendor API usage, dashboard HTTP traffic and the last
// meter readings seen by this process.
type Collector struct {
	mu             sync.RWMutex
	requests       map[requestKey]float64
	lastDuration   map[string]float64
	httpRequests   map[httpKey]float64
	meters         map[string]meterState
	lastUpdateTime time.Time

	apiRequestTotalDesc    *prometheus.Desc
	apiRequestDurationDesc *prometheus.Desc
	httpRequestTotalDesc   *prometheus.Desc
	meterTemperatureDesc   *prometheus.Desc
	meterHumidityDesc      *prometheus.Desc
	meterUpdatedDesc       *prometheus.Desc
	lastUpdateTimestamp    *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		requests:     make(map[requestKey]float64),
		lastDuration: make(map[string]float64),
		httpRequests: make(map[httpKey]float64),
		meters:       make(map[string]meterState),

		apiRequestTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "api", "requests_total"),
			"Total number of vendor API requests by endpoint and outcome",
			[]string{"endpoint", "outcome"}, nil,
		),
		apiRequestDurationDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "api", "request_duration_seconds"),
			"Duration of the last vendor API request per endpoint",
			[]string{"endpoint"}, nil,
		),
		httpRequestTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "http", "requests_total"),
			"Total number of dashboard HTTP requests",
			[]string{"route", "method", "code"}, nil,
		),
		meterTemperatureDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "meter", "temperature_celsius"),
			"Last temperature read from the meter",
			[]string{"device_id"}, nil,
		),
		meterHumidityDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "meter", "humidity_percent"),
			"Last relative humidity read from the meter",
			[]string{"device_id"}, nil,
		),
		meterUpdatedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "meter", "last_read_timestamp"),
			"Unix time of the last successful meter read",
			[]string{"device_id"}, nil,
		),
		lastUpdateTimestamp: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_update_timestamp"),
			"Timestamp of the last metrics update",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.apiRequestTotalDesc
	ch <- c.apiRequestDurationDesc
	ch <- c.httpRequestTotalDesc
	ch <- c.meterTemperatureDesc
	ch <- c.meterHumidityDesc
	ch <- c.meterUpdatedDesc
	ch <- c.lastUpdateTimestamp
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, count := range c.requests {
		ch <- prometheus.MustNewConstMetric(c.apiRequestTotalDesc, prometheus.CounterValue, count, k.endpoint, k.outcome)
	}
	for endpoint, d := range c.lastDuration {
		ch <- prometheus.MustNewConstMetric(c.apiRequestDurationDesc, prometheus.GaugeValue, d, endpoint)
	}
	for k, count := range c.httpRequests {
		ch <- prometheus.MustNewConstMetric(c.httpRequestTotalDesc, prometheus.CounterValue, count, k.route, k.method, k.code)
	}
	for id, m := range c.meters {
		ch <- prometheus.MustNewConstMetric(c.meterTemperatureDesc, prometheus.GaugeValue, m.reading.Temp, id)
		ch <- prometheus.MustNewConstMetric(c.meterHumidityDesc, prometheus.GaugeValue, m.reading.Humidity, id)
		ch <- prometheus.MustNewConstMetric(c.meterUpdatedDesc, prometheus.GaugeValue, float64(m.updatedAt.Unix()), id)
	}

	ch <- prometheus.MustNewConstMetric(
		c.lastUpdateTimestamp,
		prometheus.GaugeValue,
		float64(c.lastUpdateTime.Unix()),
	)
}

// ObserveRequest records one vendor API call. It satisfies
// switchbot.RequestObserver.
func (c *Collector) ObserveRequest(endpoint, outcome string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests[requestKey{endpoint: endpoint, outcome: outcome}]++
	c.lastDuration[endpoint] = d.Seconds()
	c.lastUpdateTime = time.Now()
}

// ObserveHTTP records one dashboard request.
func (c *Collector) ObserveHTTP(route, method, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.httpRequests[httpKey{route: route, method: method, code: code}]++
	c.lastUpdateTime = time.Now()
}

// RecordMeterReading stores the latest reading for a meter.
func (c *Collector) RecordMeterReading(deviceID string, r models.MeterReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.meters[deviceID] = meterState{reading: r, updatedAt: now}
	c.lastUpdateTime = now
}
