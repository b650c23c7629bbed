package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adcslab/sunvector/pkg/sunsensor"
)

func scrape(t *testing.T) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status: %d", rec.Code)
	}
	return rec.Body.String()
}

func TestRecordSample(t *testing.T) {
	vec := sunsensor.LightVector{X: 0.7682, Z: 0.6402, Confidence: 0.8}
	readings := []sunsensor.Reading{
		{Channel: 0, Intensity: 0.8, OK: true},
		{Channel: 3, OK: false},
	}
	RecordSample(vec, readings)

	body := scrape(t)
	if !strings.Contains(body, "sunvector_samples_total") {
		t.Fatalf("samples counter missing from scrape")
	}
	if !strings.Contains(body, `sunvector_light_vector{axis="x"} 0.7682`) {
		t.Fatalf("x gauge missing or wrong:\n%s", body)
	}
	if !strings.Contains(body, "sunvector_confidence 0.8") {
		t.Fatalf("confidence gauge missing or wrong")
	}
	if !strings.Contains(body, `sunvector_channel_read_failures_total{channel="3"}`) {
		t.Fatalf("channel failure counter missing")
	}
}

func TestRecordPublishError(t *testing.T) {
	RecordPublishError("plotapp")
	body := scrape(t)
	if !strings.Contains(body, `sunvector_publish_errors_total{output="plotapp"}`) {
		t.Fatalf("publish error counter missing")
	}
}
