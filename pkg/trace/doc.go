// Package trace models the input side of the monitor: raw trace records,
// ingested events with per-slot modes, and per-process event histories.
package trace
