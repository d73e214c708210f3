package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resumegen"

// Registry holds every collector of the process.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	tasksStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "task",
		Name:      "started_total",
		Help:      "Total generation tasks dispatched",
	})

	tasksCompleted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "task",
		Name:      "completed_total",
		Help:      "Total generation tasks by terminal status",
	}, []string{"status"})

	tasksInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "task",
		Name:      "in_flight",
		Help:      "Generation tasks currently holding an admission slot",
	})

	taskDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "task",
		Name:      "duration_seconds",
		Help:      "Generation task duration in seconds",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
	}, []string{"status"})

	tokensUsed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "tokens_used_total",
		Help:      "Total tokens billed by the generation service",
	}, []string{"type"})

	costUSD = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "cost_usd_total",
		Help:      "Total billed cost in USD",
	})

	renderDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "PDF render duration in seconds",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	})
)

// IncTaskStarted increments the dispatched counter and the in-flight gauge.
func IncTaskStarted() {
	tasksStarted.Inc()
	tasksInFlight.Inc()
}

// TaskReleased decrements the in-flight gauge once a task gives up its slot,
// whether or not its outcome was kept.
func TaskReleased() {
	tasksInFlight.Dec()
}

// ObserveTaskDone records an outcome kept in the batch report. status is
// "succeeded" or a failure kind.
func ObserveTaskDone(status string, d time.Duration) {
	tasksCompleted.WithLabelValues(status).Inc()
	taskDuration.WithLabelValues(status).Observe(d.Seconds())
}

// AddUsage records billed tokens and their cost.
func AddUsage(inputTokens, outputTokens uint64, usd float64) {
	tokensUsed.WithLabelValues("input").Add(float64(inputTokens))
	tokensUsed.WithLabelValues("output").Add(float64(outputTokens))
	if usd > 0 {
		costUSD.Add(usd)
	}
}

// ObserveRender records one render duration.
func ObserveRender(d time.Duration) {
	renderDuration.Observe(d.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
