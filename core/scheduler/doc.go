// Package scheduler triggers periodic planning runs from a five-field cron
// expression. A run still in progress when the next tick fires causes that
// tick to be skipped.
package scheduler
