// Package cache defines the TTL key/value capability used by the planning
// engine. Backends report their failures; Resilient turns every failure
// into a cache miss and tracks whether the backend is currently reachable,
// so the engine keeps working without a cache.
package cache
