package compiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel     = "error_type"
	stageLabel       = "stage"
	cacheResultLabel = "result"
)

var (
	scenesCompiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ashtrace_scenes_compiled",
		Help: "The number of successfully compiled scenes.",
	})

	compileErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ashtrace_compile_errors",
		Help: "The errors that occurred while compiling a scene.",
	}, []string{
		errTypeLabel,
	})

	compileStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ashtrace_compile_stage_duration",
		Help:    "The time spent in each scene compilation stage.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{
		stageLabel,
	})

	compiledTriangles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ashtrace_compiled_triangles",
		Help:    "The number of triangles in compiled scenes.",
		Buckets: prometheus.ExponentialBuckets(16, 8, 8),
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ashtrace_compile_cache_lookups",
		Help: "Compiled scene cache lookups by result.",
	}, []string{
		cacheResultLabel,
	})
)

func instrumentStage(stage string, start time.Time) {
	compileStageDuration.With(prometheus.Labels{
		stageLabel: stage,
	}).Observe(time.Since(start).Seconds())
}

func instrumentCompile(triangles int) {
	scenesCompiled.Inc()
	compiledTriangles.Observe(float64(triangles))
}

func instrumentCompileError(err error) {
	compileErrors.
		With(prometheus.Labels{
			errTypeLabel: errorType(err),
		}).
		Inc()
}

func instrumentCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.With(prometheus.Labels{
		cacheResultLabel: result,
	}).Inc()
}
