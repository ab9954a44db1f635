// Package infra contains technical adapters: SQL and file stores, cache
// backends, the reasoning client, broker publishers and metrics exporters.
// These packages depend only on the interfaces defined in the core packages.
package infra
