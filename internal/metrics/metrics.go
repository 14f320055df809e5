package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Ingestion metrics
	CallsIngestedTotal  int64
	IngestErrorsTotal   int64
	EventsRecordedTotal int64

	// Report metrics
	reportRequests    map[string]int64 // report name -> count
	ReportErrorsTotal int64

	// Auth metrics
	LoginsTotal        int64
	LoginFailuresTotal int64

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			reportRequests:       make(map[string]int64),
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordCallIngested increments the ingested-call counter
func (m *Metrics) RecordCallIngested() {
	m.mu.Lock()
	m.CallsIngestedTotal++
	m.mu.Unlock()
}

// RecordIngestError increments the ingestion error counter
func (m *Metrics) RecordIngestError() {
	m.mu.Lock()
	m.IngestErrorsTotal++
	m.mu.Unlock()
}

// RecordEventRecorded increments the funnel-event counter
func (m *Metrics) RecordEventRecorded() {
	m.mu.Lock()
	m.EventsRecordedTotal++
	m.mu.Unlock()
}

// RecordReportRequest counts one report computation by name
func (m *Metrics) RecordReportRequest(report string) {
	m.mu.Lock()
	m.reportRequests[report]++
	m.mu.Unlock()
}

// RecordReportError increments the report error counter
func (m *Metrics) RecordReportError() {
	m.mu.Lock()
	m.ReportErrorsTotal++
	m.mu.Unlock()
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(success bool) {
	m.mu.Lock()
	if success {
		m.LoginsTotal++
	} else {
		m.LoginFailuresTotal++
	}
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("calldesk_uptime_seconds", time.Since(m.startTime).Seconds())

		// Ingestion metrics
		write("calldesk_calls_ingested_total", m.CallsIngestedTotal)
		write("calldesk_ingest_errors_total", m.IngestErrorsTotal)
		write("calldesk_funnel_events_recorded_total", m.EventsRecordedTotal)

		// Report metrics
		for report, count := range m.reportRequests {
			write("calldesk_report_requests_total", count, "report", report)
		}
		write("calldesk_report_errors_total", m.ReportErrorsTotal)

		// Auth metrics
		write("calldesk_logins_total", m.LoginsTotal)
		write("calldesk_login_failures_total", m.LoginFailuresTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("calldesk_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
