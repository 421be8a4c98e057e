// Package poller implements the cooperative timer scheduler behind every
// periodic poll and rotation in the dashboard.
//
// The Scheduler:
//   - Registers interval (Every, EveryNow) and one-shot (After) callbacks
//   - Returns a cancellation Token from every registration
//   - Never runs two invocations of the same registration concurrently
//   - Cancels every outstanding registration exactly once on Close
//
// Each component instance owns its own Scheduler; there is no process-wide one.
package poller
