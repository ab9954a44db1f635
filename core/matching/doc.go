// Package matching scores candidates against a relief need and ranks the
// results.
//
// The Scorer fans out one call per candidate to a reasoning Provider, bounded
// by a concurrency limit and a per-call timeout. Any failure of a single call
// (transport error, timeout, unparsable answer) is replaced by the local
// Fallback heuristic so that scoring never fails as a whole. Select then
// orders the results and applies the tenant's minimum score.
package matching
