package model

// FeatureReliefPlanning is the tenant feature flag gating autonomous relief planning.
const FeatureReliefPlanning = "relief_planning"

// AutonomyLevel describes how far a tenant lets the engine act on its own.
// The engine itself only ever creates proposals awaiting review.
type AutonomyLevel string

const (
	AutonomyAdvisory   AutonomyLevel = "advisory"
	AutonomyAssisted   AutonomyLevel = "assisted"
	AutonomyAutonomous AutonomyLevel = "autonomous"
)

// TenantConfig holds the AI planning settings of one tenant. It is owned by
// the configuration store and never modified by the engine.
type TenantConfig struct {
	TenantID      string          `json:"tenant_id"`
	Enabled       bool            `json:"enabled"`
	AutonomyLevel AutonomyLevel   `json:"autonomy_level"`
	MinMatchScore int             `json:"min_match_score"`
	HorizonDays   int             `json:"horizon_days"`
	Features      map[string]bool `json:"features"`
}

// FeatureEnabled reports whether the named feature flag is set.
func (c TenantConfig) FeatureEnabled(name string) bool {
	return c.Features[name]
}

// PlanningAllowed reports whether relief planning may run for the tenant.
func (c TenantConfig) PlanningAllowed() bool {
	return c.Enabled && c.FeatureEnabled(FeatureReliefPlanning)
}
