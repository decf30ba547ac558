package model

// Shot is a single camera setup belonging to a scene.  SceneID is a
// back-reference; many shots share one scene.  A shot's relation
// fields are copied from the scene when it is created (see Resolve)
// and may diverge afterwards.
type Shot struct {
	ID             string   `json:"id"`
	SceneID        string   `json:"sceneId,omitempty"`
	ShotNumber     string   `json:"shotNumber"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	CastIDs        []string `json:"castIds,omitempty"`
	CrewIDs        []string `json:"crewIds,omitempty"`
	EquipmentIDs   []string `json:"equipmentIds,omitempty"`
	LocationIDs    []string `json:"locationIds,omitempty"`
	ShootingDayIDs []string `json:"shootingDayIds,omitempty"`
	Duration       int      `json:"duration,omitempty"` // minutes
	Notes          string   `json:"notes,omitempty"`
}

// InheritFromScene fills every empty relation field of the shot with
// a copy of the scene's value.  It is applied once when a shot is
// created; later scene edits do not flow into the shot.
func (s *Shot) InheritFromScene(scene *Scene) {
	if scene == nil {
		return
	}
	s.CastIDs = Resolve(s.CastIDs, scene.CastIDs, nil)
	s.CrewIDs = Resolve(s.CrewIDs, scene.CrewIDs, nil)
	s.EquipmentIDs = Resolve(s.EquipmentIDs, scene.EquipmentIDs, nil)
	s.LocationIDs = Resolve(s.LocationIDs, scene.LocationIDs, nil)
	s.ShootingDayIDs = Resolve(s.ShootingDayIDs, scene.ShootingDayIDs, nil)
}
