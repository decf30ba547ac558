package model

// ScheduleEvent is an entry inside a shooting day.  Events created by
// the schedule synchronizer carry ShotID (or SceneID alone for scenes
// without shots); at most one event exists per (ShotID, ShootingDayID).
//
// Fields:
//  Type        – scene, break, move, prep, wrap or other.
//  Order       – insertion position within the day.
//  Time        – start time, zero-padded "HH:MM".
//  SceneNumber – mirrored from the scene for display.
//  PageCount   – only set on events that are not tied to a scene.
type ScheduleEvent struct {
	ID            string    `json:"id"`
	ShootingDayID string    `json:"shootingDayId"`
	Type          EventType `json:"type"`
	Order         int       `json:"order"`
	Time          string    `json:"time,omitempty"`
	Description   string    `json:"description,omitempty"`
	SceneID       string    `json:"sceneId,omitempty"`
	ShotID        string    `json:"shotId,omitempty"`
	SceneNumber   string    `json:"sceneNumber,omitempty"`
	PageCount     string    `json:"pageCount,omitempty"`
	CastIDs       []string  `json:"castIds,omitempty"`
	CrewIDs       []string  `json:"crewIds,omitempty"`
	EquipmentIDs  []string  `json:"equipmentIds,omitempty"`
	LocationID    string    `json:"locationId,omitempty"`
	Duration      int       `json:"duration,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// References reports whether the event lists id among its cast or crew.
func (e *ScheduleEvent) References(id string) bool {
	return contains(e.CastIDs, id) || contains(e.CrewIDs, id)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
