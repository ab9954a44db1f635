package model

import "time"

// CrewStatus is the availability status of a crew member. It is authoritative
// in the crew management system; the engine only reads it.
type CrewStatus string

const (
	StatusOnBoard CrewStatus = "on_board"
	StatusOnShore CrewStatus = "on_shore"
	StatusOnLeave CrewStatus = "on_leave"
)

// AvailableStatuses lists the statuses that make a crew member eligible as a
// relief candidate.
var AvailableStatuses = []CrewStatus{StatusOnShore, StatusOnLeave}

// IsAvailable reports whether s makes a crew member eligible for relief.
func (s CrewStatus) IsAvailable() bool {
	for _, a := range AvailableStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// ReliefNeed is an active assignment whose sign-off falls inside the planning
// horizon. It is a snapshot taken at the start of a cycle.
type ReliefNeed struct {
	AssignmentID    string    `json:"assignment_id"`
	TenantID        string    `json:"tenant_id"`
	VesselID        string    `json:"vessel_id"`
	VesselName      string    `json:"vessel_name"`
	Rank            string    `json:"rank"`
	CurrentCrewID   string    `json:"current_crew_id"`
	CurrentCrewName string    `json:"current_crew_name"`
	SignOnDate      time.Time `json:"sign_on_date"`
	SignOffDate     time.Time `json:"sign_off_date"`
	ContractMonths  int       `json:"contract_months"`
}

// CandidateProfile is a crew member eligible by rank and availability.
type CandidateProfile struct {
	CrewID        string     `json:"crew_id"`
	TenantID      string     `json:"tenant_id"`
	FullName      string     `json:"full_name"`
	Rank          string     `json:"rank"`
	Nationality   string     `json:"nationality"`
	Status        CrewStatus `json:"status"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
}
