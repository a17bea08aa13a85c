// Package sinks implements concrete progress consumers such as Prometheus,
// an in-memory recent-activity window, and structured logging. Each sink
// satisfies the progress.Sink interface and is safe for repeated
// Consume/Close cycles.
package sinks
