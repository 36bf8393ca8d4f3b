package telemetry

import "io"

// noOpCollector is what FromContext returns when nothing attached a real
// Collector: every call is a no-op, so instrumented code costs an
// interface dispatch and nothing else when telemetry is disabled.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer {
	return noOpTimer{}
}

func (noOpCollector) StartStructured(config TimerConfig) StructuredTimer {
	return noOpStructuredTimer{config: config}
}

func (noOpCollector) Report(w io.Writer) {}

type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(name string) Timer {
	return noOpTimer{}
}

// noOpStructuredTimer mirrors noOpTimer but carries the TimerConfig it was
// started with, so a disabled collector still satisfies StructuredTimer.
type noOpStructuredTimer struct {
	config TimerConfig
}

func (noOpStructuredTimer) End() {}

func (noOpStructuredTimer) Child(name string) Timer {
	return noOpTimer{}
}

func (t noOpStructuredTimer) Config() TimerConfig {
	return t.config
}
