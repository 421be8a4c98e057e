// Package display formats market and news state for the dashboard.
//
// Absent values become neutral defaults here and nowhere else: "$0" for
// aggregate figures, "N/A" for per-coin figures the upstream omitted.
package display
