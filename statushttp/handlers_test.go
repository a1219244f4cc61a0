package statushttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"replicore/networking"
)

type fakeReadiness struct {
	peers []string
	tick  uint32
}

func (f fakeReadiness) ConnectedPeers() []string { return f.peers }
func (f fakeReadiness) CurrentTick() uint32       { return f.tick }

func TestLivenessHandlerReportsAlive(t *testing.T) {
	h := NewHandlerSet(Options{})
	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alive"`) {
		t.Fatalf("expected alive status, got %s", rec.Body.String())
	}
}

func TestReadinessHandlerReportsPeersAndTick(t *testing.T) {
	h := NewHandlerSet(Options{Readiness: fakeReadiness{peers: []string{"a", "b"}, tick: 10}})
	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `"peers":2`) || !strings.Contains(body, `"tick":10`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestMetricsHandlerEmitsCounters(t *testing.T) {
	metrics := networking.NewSnapshotMetrics()
	metrics.Observe("peer-a", networking.Plan{BytesUsed: 128})
	h := NewHandlerSet(Options{Metrics: metrics, Readiness: fakeReadiness{tick: 1}})
	rec := httptest.NewRecorder()
	h.MetricsHandler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "replicore_bytes_sent_total") {
		t.Fatalf("expected bytes sent metric, got %s", body)
	}
}
