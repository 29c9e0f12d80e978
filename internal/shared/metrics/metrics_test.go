package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	var buf bytes.Buffer
	writeHistogram(&buf, "x", "x", snap)
	out := buf.String()
	for _, want := range []string{`x_bucket{le="10"} 1`, `x_bucket{le="100"} 2`, `x_bucket{le="+Inf"} 3`, "x_sum 555"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHandlerExposesReportCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncReportGenerated("visa_match")
	IncReportFailed("criador_sonhos")

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `reports_generated_total{tool_type="visa_match"}`) {
		t.Fatalf("missing labelled counter:\n%s", body)
	}
	if !strings.Contains(body, "# TYPE llm_duration_ms histogram") {
		t.Fatalf("missing llm histogram:\n%s", body)
	}
}
