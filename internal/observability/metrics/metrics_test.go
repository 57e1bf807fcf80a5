package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}

	body := scrape(t, m)
	if !strings.Contains(body, `http_requests_total{method="GET",route="/ping",status="200"} 3`) {
		t.Fatalf("expected request counter for /ping, got:\n%s", body)
	}
	if !strings.Contains(body, `http_request_duration_seconds_count{method="GET",route="/ping"} 3`) {
		t.Fatalf("expected duration histogram for /ping, got:\n%s", body)
	}
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.ObserveConversionEvent("payment_confirmed")
	m.ObserveConversionEvent("payment_confirmed")
	m.ObserveCoinMovement("earned")

	body := scrape(t, m)
	if !strings.Contains(body, `affiliate_conversion_events_total{event="payment_confirmed"} 2`) {
		t.Fatalf("expected conversion event counter, got:\n%s", body)
	}
	if !strings.Contains(body, `affiliate_coin_movements_total{type="earned"} 1`) {
		t.Fatalf("expected coin movement counter, got:\n%s", body)
	}
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics handler, got %d", w.Code)
	}
	return w.Body.String()
}
