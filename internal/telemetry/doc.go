// Package telemetry reports per-cycle eligibility statistics to InfluxDB.
//
// Writes are non-blocking and batched by the InfluxDB client; write errors
// arrive asynchronously and are logged. A nil *Client is valid and drops
// every sample, so callers do not need to branch on whether telemetry is
// enabled.
package telemetry
