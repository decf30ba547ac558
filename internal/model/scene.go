package model

// Scene is a scripted scene in a project's breakdown.  Scenes carry
// the default resources that their shots inherit when the shot's own
// relation fields are empty.
//
// Fields:
//  ID             – document id.
//  ProjectID      – owning project.
//  SceneNumber    – script scene number ("12", "12A").
//  Title          – short slugline or title.
//  PageCount      – script length in pages and eighths ("2 3/8").
//  LocationIDs    – locations the scene is shot at.
//  CastIDs        – cast members appearing in the scene.
//  CrewIDs        – crew members required by the scene.
//  EquipmentIDs   – equipment required by the scene.
//  ShootingDayIDs – days the scene is scheduled on.
type Scene struct {
	ID             string   `json:"id"`
	ProjectID      string   `json:"projectId,omitempty"`
	SceneNumber    string   `json:"sceneNumber"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	IntExt         string   `json:"intExt,omitempty"`   // INT, EXT or INT/EXT
	DayNight       string   `json:"dayNight,omitempty"` // DAY, NIGHT, DUSK, ...
	PageCount      string   `json:"pageCount,omitempty"`
	LocationIDs    []string `json:"locationIds,omitempty"`
	CastIDs        []string `json:"castIds,omitempty"`
	CrewIDs        []string `json:"crewIds,omitempty"`
	EquipmentIDs   []string `json:"equipmentIds,omitempty"`
	ShootingDayIDs []string `json:"shootingDayIds,omitempty"`
}

// PrimaryLocationID returns the first location of the scene or "".
func (s *Scene) PrimaryLocationID() string {
	if s == nil || len(s.LocationIDs) == 0 {
		return ""
	}
	return s.LocationIDs[0]
}
