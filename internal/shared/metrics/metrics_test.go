package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTaskCounters(t *testing.T) {
	startedBefore := testutil.ToFloat64(tasksStarted)
	inFlightBefore := testutil.ToFloat64(tasksInFlight)
	malformedBefore := testutil.ToFloat64(tasksCompleted.WithLabelValues("malformed_response"))

	IncTaskStarted()
	if got := testutil.ToFloat64(tasksInFlight); got != inFlightBefore+1 {
		t.Fatalf("in flight = %v, want %v", got, inFlightBefore+1)
	}
	ObserveTaskDone("malformed_response", 2*time.Second)
	if got := testutil.ToFloat64(tasksInFlight); got != inFlightBefore+1 {
		t.Fatalf("in flight after outcome = %v, want %v", got, inFlightBefore+1)
	}
	TaskReleased()

	if got := testutil.ToFloat64(tasksStarted); got != startedBefore+1 {
		t.Fatalf("started = %v, want %v", got, startedBefore+1)
	}
	if got := testutil.ToFloat64(tasksInFlight); got != inFlightBefore {
		t.Fatalf("in flight = %v, want %v", got, inFlightBefore)
	}
	if got := testutil.ToFloat64(tasksCompleted.WithLabelValues("malformed_response")); got != malformedBefore+1 {
		t.Fatalf("malformed = %v, want %v", got, malformedBefore+1)
	}
}

func TestAddUsage(t *testing.T) {
	before := testutil.ToFloat64(tokensUsed.WithLabelValues("output"))
	AddUsage(450, 520, 0.000253)
	if got := testutil.ToFloat64(tokensUsed.WithLabelValues("output")); got != before+520 {
		t.Fatalf("output tokens = %v, want %v", got, before+520)
	}
}

func TestHandlerServesPrometheusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncTaskStarted()
	ObserveTaskDone("succeeded", time.Second)
	TaskReleased()

	router := gin.New()
	router.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "resumegen_task_started_total") {
		t.Fatalf("missing counter in output:\n%s", w.Body.String())
	}
}
