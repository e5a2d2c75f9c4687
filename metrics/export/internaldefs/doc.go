// Package internaldefs holds the shared counter name/help definitions used
// by every metrics exporter. It exists so the Prometheus and OpenTelemetry
// exporters render identical metric names without importing each other.
package internaldefs
