// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package rigmetrics holds Prometheus instrumentation for the extraction,
// validation, and persistence stages of the RIG pipeline.
package rigmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors for the rigraph pipeline.
type metrics struct {
	once sync.Once

	// Extraction (pkg/cmake)
	extractRuns        prometheus.Counter
	extractErrors      prometheus.Counter
	componentsExtracted prometheus.Counter
	testsExtracted     prometheus.Counter
	extractDuration    prometheus.Histogram

	// Validation (pkg/validate)
	validationRuns     prometheus.Counter
	validationErrors   prometheus.Counter
	validationWarnings prometheus.Counter
	cyclesDetected     prometheus.Counter
	validateDuration   prometheus.Histogram

	// Persistence (pkg/store)
	storeSaves       prometheus.Counter
	storeLoads       prometheus.Counter
	storeErrors      prometheus.Counter
	compareRuns      prometheus.Counter
	compareMismatches prometheus.Counter
	saveDuration     prometheus.Histogram
	loadDuration     prometheus.Histogram
}

var m metrics

func (m *metrics) init() {
	m.once.Do(func() {
		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

		m.extractRuns = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_extract_runs_total", Help: "CMake extraction pipeline runs started",
		})
		m.extractErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_extract_errors_total", Help: "CMake extraction pipeline runs that failed",
		})
		m.componentsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_extract_components_total", Help: "Components registered across all extraction runs",
		})
		m.testsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_extract_tests_total", Help: "Test definitions registered across all extraction runs",
		})
		m.extractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "rigraph_extract_duration_seconds", Help: "Duration of a CMake extraction run", Buckets: buckets,
		})

		m.validationRuns = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_validate_runs_total", Help: "Validator runs started",
		})
		m.validationErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_validate_errors_total", Help: "Validation error diagnostics emitted",
		})
		m.validationWarnings = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_validate_warnings_total", Help: "Validation warning diagnostics emitted",
		})
		m.cyclesDetected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_validate_cycles_total", Help: "Dependency cycles detected across all validation runs",
		})
		m.validateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "rigraph_validate_duration_seconds", Help: "Duration of a validator run", Buckets: buckets,
		})

		m.storeSaves = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_store_saves_total", Help: "RIG save operations to SQLite",
		})
		m.storeLoads = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_store_loads_total", Help: "RIG load operations from SQLite",
		})
		m.storeErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_store_errors_total", Help: "Store operations that returned an error",
		})
		m.compareRuns = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_compare_runs_total", Help: "Semantic RIG comparisons performed",
		})
		m.compareMismatches = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigraph_compare_mismatches_total", Help: "Semantic RIG comparisons that found a difference",
		})
		m.saveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "rigraph_store_save_duration_seconds", Help: "Duration of a store save", Buckets: buckets,
		})
		m.loadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "rigraph_store_load_duration_seconds", Help: "Duration of a store load", Buckets: buckets,
		})

		prometheus.MustRegister(
			m.extractRuns, m.extractErrors, m.componentsExtracted, m.testsExtracted, m.extractDuration,
			m.validationRuns, m.validationErrors, m.validationWarnings, m.cyclesDetected, m.validateDuration,
			m.storeSaves, m.storeLoads, m.storeErrors, m.compareRuns, m.compareMismatches,
			m.saveDuration, m.loadDuration,
		)
	})
}

// RecordExtraction records the outcome of one CMake extraction run.
func RecordExtraction(durationSeconds float64, componentCount, testCount int, err error) {
	m.init()
	m.extractRuns.Inc()
	m.extractDuration.Observe(durationSeconds)
	m.componentsExtracted.Add(float64(componentCount))
	m.testsExtracted.Add(float64(testCount))
	if err != nil {
		m.extractErrors.Inc()
	}
}

// RecordValidation records the outcome of one validator run.
func RecordValidation(durationSeconds float64, errorCount, warningCount, cycleCount int) {
	m.init()
	m.validationRuns.Inc()
	m.validateDuration.Observe(durationSeconds)
	m.validationErrors.Add(float64(errorCount))
	m.validationWarnings.Add(float64(warningCount))
	m.cyclesDetected.Add(float64(cycleCount))
}

// RecordSave records one store Save call.
func RecordSave(durationSeconds float64, err error) {
	m.init()
	m.storeSaves.Inc()
	m.saveDuration.Observe(durationSeconds)
	if err != nil {
		m.storeErrors.Inc()
	}
}

// RecordLoad records one store Load call.
func RecordLoad(durationSeconds float64, err error) {
	m.init()
	m.storeLoads.Inc()
	m.loadDuration.Observe(durationSeconds)
	if err != nil {
		m.storeErrors.Inc()
	}
}

// RecordCompare records one Compare call.
func RecordCompare(identical bool) {
	m.init()
	m.compareRuns.Inc()
	if !identical {
		m.compareMismatches.Inc()
	}
}
