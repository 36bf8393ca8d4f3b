// Package telemetry gives the parser, checker, and worker pool a shared way
// to report how long each phase of an ingestion run took, without forcing
// every caller to thread a logger through. A Collector travels on the
// context; when nothing opted in, FromContext hands back a no-op one so the
// instrumented code pays nothing beyond the interface call.
package telemetry

import (
	"context"
	"io"
)

type contextKey int

const (
	collectorKey contextKey = iota
	rootTimerKey
)

// Collector accumulates timer trees. Start and StartStructured must be
// safe to call from multiple goroutines at once — the bounded include-file
// worker pool (spec §4.C) calls Start once per file it parses — but a Timer
// returned from either is only ever used by the goroutine that created it.
type Collector interface {
	// Start begins timing name and returns a Timer to End() when done.
	Start(name string) Timer

	// StartStructured is Start plus a count/unit pair, for timers whose
	// report line should show a throughput figure (e.g. "1200 directives").
	StartStructured(config TimerConfig) StructuredTimer

	// Report writes the collected tree to w in an implementation-specific
	// format.
	Report(w io.Writer)
}

// TimerConfig is the structured-timer counterpart to a bare name: Count
// items of kind Unit were processed under this timer.
type TimerConfig struct {
	Name  string
	Count int
	Unit  string
}

// Timer is one node in a collector's timing tree. A Timer and the Child
// timers spawned from it belong to a single goroutine's call stack; fan-out
// across goroutines should call Collector.Start again rather than share a
// Timer.
type Timer interface {
	// End stops the timer and records its duration.
	End()

	// Child starts a nested timer that reports under this one.
	Child(name string) Timer
}

// StructuredTimer is a Timer that remembers the TimerConfig it was started
// with, so a report can print throughput alongside duration.
type StructuredTimer interface {
	Timer
	Config() TimerConfig
}

// WithCollector attaches collector to ctx for later retrieval via
// FromContext.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the Collector attached to ctx, or a no-op Collector
// if none was attached.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer attaches the run's top-level timer to ctx, so deeply nested
// calls can anchor a Child timer without threading it through every
// function signature.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey, timer)
}

// RootTimerFromContext returns the timer attached by WithRootTimer, or nil
// if none was attached.
func RootTimerFromContext(ctx context.Context) Timer {
	if timer, ok := ctx.Value(rootTimerKey).(Timer); ok {
		return timer
	}
	return nil
}
