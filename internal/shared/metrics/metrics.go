package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	formProbeAttemptsTotal atomic.Uint64
	formProbeFailuresTotal atomic.Uint64
	imageSearchHitsTotal   atomic.Uint64
	imageSearchMissesTotal atomic.Uint64
	httpPanicsTotal        atomic.Uint64

	reportsGenerated = newCounterVec("tool_type")
	reportsFailed    = newCounterVec("tool_type")

	llmDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncReportGenerated counts a report returned to the caller.
func IncReportGenerated(toolType string) {
	reportsGenerated.Inc(toolType)
}

// IncReportFailed counts a report whose generation failed.
func IncReportFailed(toolType string) {
	reportsFailed.Inc(toolType)
}

// IncFormProbeAttempt counts one layout or fallback table tried by the form probe.
func IncFormProbeAttempt() {
	formProbeAttemptsTotal.Add(1)
}

// IncFormProbeFailure counts a save where every target failed.
func IncFormProbeFailure() {
	formProbeFailuresTotal.Add(1)
}

func IncImageSearchHit() {
	imageSearchHitsTotal.Add(1)
}

func IncImageSearchMiss() {
	imageSearchMissesTotal.Add(1)
}

// IncPanic counts a handler panic recovered by middleware.
func IncPanic() {
	httpPanicsTotal.Add(1)
}

// ObserveLLMDurationMs records a completion call duration in milliseconds.
func ObserveLLMDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "reports_generated_total", "Total reports generated", reportsGenerated)
	writeCounterVec(&buf, "reports_failed_total", "Total report generations failed", reportsFailed)
	writeCounter(&buf, "form_probe_attempts_total", "Total form persistence targets tried", formProbeAttemptsTotal.Load())
	writeCounter(&buf, "form_probe_failures_total", "Total form saves where every target failed", formProbeFailuresTotal.Load())
	writeCounter(&buf, "image_search_hits_total", "Total image searches returning an image", imageSearchHitsTotal.Load())
	writeCounter(&buf, "image_search_misses_total", "Total image searches returning nothing", imageSearchMissesTotal.Load())
	writeCounter(&buf, "http_panics_total", "Total recovered handler panics", httpPanicsTotal.Load())
	writeHistogram(&buf, "llm_duration_ms", "LLM completion duration in milliseconds", llmDuration.Snapshot())
	return buf.String()
}

type counterVec struct {
	mu     sync.Mutex
	label  string
	values map[string]uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: map[string]uint64{}}
}

func (v *counterVec) Inc(labelValue string) {
	v.mu.Lock()
	v.values[labelValue]++
	v.mu.Unlock()
}

func (v *counterVec) snapshot() ([]string, map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	keys := make([]string, 0, len(v.values))
	for k, n := range v.values {
		out[k] = n
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, v *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := v.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, v.label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
