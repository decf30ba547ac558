package model

// ShootingDay is one calendar day of the shooting schedule.
//
// Fields:
//  Date       – calendar date, "YYYY-MM-DD".
//  DayNumber  – 1-based day of the shoot.
//  CallTime   – general crew call, "HH:MM".
//  ShootCall  – first shot time, "HH:MM".
//  Breakfast  – optional explicit breakfast time.
//  Lunch      – optional explicit lunch time.
//
// The *LocationID fields are role slots for the call sheet's logistics
// block; the *CrewID fields name the key contacts printed on its header.
type ShootingDay struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId,omitempty"`
	Date      string `json:"date"`
	DayNumber int    `json:"dayNumber"`
	CallTime  string `json:"callTime,omitempty"`
	ShootCall string `json:"shootCall,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`

	BasecampLocationID   string `json:"basecampLocationId,omitempty"`
	CrewParkLocationID   string `json:"crewParkLocationId,omitempty"`
	TechTrucksLocationID string `json:"techTrucksLocationId,omitempty"`
	HospitalLocationID   string `json:"hospitalLocationId,omitempty"`

	DirectorCrewID              string `json:"directorCrewId,omitempty"`
	ExecutiveProducerCrewID     string `json:"executiveProducerCrewId,omitempty"`
	ProductionCoordinatorCrewID string `json:"productionCoordinatorCrewId,omitempty"`
}

// LocationSlotIDs returns the non-empty location role slots.
func (d *ShootingDay) LocationSlotIDs() []string {
	return nonEmpty(d.BasecampLocationID, d.CrewParkLocationID, d.TechTrucksLocationID, d.HospitalLocationID)
}

// KeyContactIDs returns the non-empty key-contact crew slots.
func (d *ShootingDay) KeyContactIDs() []string {
	return nonEmpty(d.DirectorCrewID, d.ExecutiveProducerCrewID, d.ProductionCoordinatorCrewID)
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
