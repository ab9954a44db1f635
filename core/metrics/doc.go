// Package metrics defines the sinks that record planning cycle outcomes.
// Sinks like PromSink and InfluxSink (in infra/metrics) implement
// MetricsSink and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
package metrics
