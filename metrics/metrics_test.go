package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricName(t *testing.T) {
	if got := metricName("state/commit/storage-words"); got != "state_commit_storage_words" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestHandlerExposesRegisteredCounter(t *testing.T) {
	c := NewRegisteredCounter("test/handler/hits", "hits seen by the handler test")
	c.Add(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "feecycle_test_handler_hits 3") {
		t.Fatalf("counter missing from output:\n%s", body)
	}
}
