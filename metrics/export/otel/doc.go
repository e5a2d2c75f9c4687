// Package otel bridges client counters into OpenTelemetry observable
// instruments. Values are read on collection through a registered
// callback; nothing is pushed on the request hot path.
package otel
