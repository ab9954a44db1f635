// Package planning runs relief planning cycles.
//
// A Cycle handles one tenant: it locates the relief needs due within the
// horizon and, need by need in urgency order, resolves candidates, scores
// them, applies the gate and writes a proposal. Each need ends with an
// explicit NeedOutcome; a failing need never stops the cycle.
//
// The Orchestrator validates tenant configuration and runs cycles, either
// for one tenant on demand (RunTenant) or for every enabled tenant in turn
// (RunAll).
package planning
