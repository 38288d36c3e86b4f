package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *PortalMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMiddlewareCountsNormalizedPaths(t *testing.T) {
	m := NewPortalMetrics("portal")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/materials/a.txt", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/materials/b.pdf", nil))

	out := scrape(t, m)
	want := `portal_http_requests_total{method="GET",path="/materials/{name}",service="portal",status="404"} 2`
	if !strings.Contains(out, want) {
		t.Fatalf("missing %q in:\n%s", want, out)
	}
}

func TestDomainCounters(t *testing.T) {
	m := NewPortalMetrics("portal")
	m.ObserveAccessRecord("recorded")
	m.ObserveSummary("generated", 150*time.Millisecond)
	m.ObserveSummary("sentinel", 0)
	m.RecordDownload("material", "ok")
	m.RecordProvision("extracted")

	out := scrape(t, m)
	for _, want := range []string{
		`portal_access_records_total{service="portal",status="recorded"} 1`,
		`portal_summaries_total{outcome="generated",service="portal"} 1`,
		`portal_summaries_total{outcome="sentinel",service="portal"} 1`,
		`portal_summary_duration_seconds_count{service="portal"} 1`,
		`portal_downloads_total{kind="material",service="portal",status="ok"} 1`,
		`portal_provision_total{result="extracted",service="portal"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
