package model

import "strings"

// Department is a crew department code.  Stored values are lower-case
// codes; unknown or legacy codes normalize to DepartmentOther so they
// are grouped and labelled predictably instead of leaking raw strings.
type Department string

const (
	DepartmentProduction     Department = "production"
	DepartmentDirection      Department = "direction"
	DepartmentCamera         Department = "camera"
	DepartmentGrip           Department = "grip"
	DepartmentElectric       Department = "electric"
	DepartmentSound          Department = "sound"
	DepartmentArt            Department = "art"
	DepartmentWardrobe       Department = "wardrobe"
	DepartmentMakeup         Department = "makeup"
	DepartmentLocations      Department = "locations"
	DepartmentTransportation Department = "transportation"
	DepartmentCatering       Department = "catering"
	DepartmentOther          Department = "other"
)

// departmentTable lists departments in call-sheet order with labels.
var departmentTable = []struct {
	code  Department
	label string
}{
	{DepartmentProduction, "Production"},
	{DepartmentDirection, "Direction"},
	{DepartmentCamera, "Camera"},
	{DepartmentGrip, "Grip"},
	{DepartmentElectric, "Electric"},
	{DepartmentSound, "Sound"},
	{DepartmentArt, "Art"},
	{DepartmentWardrobe, "Wardrobe"},
	{DepartmentMakeup, "Hair & Makeup"},
	{DepartmentLocations, "Locations"},
	{DepartmentTransportation, "Transportation"},
	{DepartmentCatering, "Catering"},
	{DepartmentOther, "Other"},
}

// Normalize maps d onto a known department, falling back to other.
func (d Department) Normalize() Department {
	code := Department(strings.ToLower(strings.TrimSpace(string(d))))
	for _, row := range departmentTable {
		if row.code == code {
			return code
		}
	}
	return DepartmentOther
}

// Label returns the display label of the department.
func (d Department) Label() string {
	n := d.Normalize()
	for _, row := range departmentTable {
		if row.code == n {
			return row.label
		}
	}
	return "Other"
}

// Rank returns the department's position in call-sheet order.
func (d Department) Rank() int {
	n := d.Normalize()
	for i, row := range departmentTable {
		if row.code == n {
			return i
		}
	}
	return len(departmentTable)
}

// CastType classifies a cast member for call-sheet ordering.
type CastType string

const (
	CastLead       CastType = "lead"
	CastSupporting CastType = "supporting"
	CastDayPlayer  CastType = "dayplayer"
	CastBackground CastType = "background"
)

var castTable = map[CastType]struct {
	priority int
	label    string
}{
	CastLead:       {0, "Lead"},
	CastSupporting: {1, "Supporting"},
	CastDayPlayer:  {2, "Day Player"},
	CastBackground: {3, "Background"},
}

func (t CastType) normalize() CastType {
	return CastType(strings.ToLower(strings.TrimSpace(string(t))))
}

// IsBackground reports whether the cast type is background.
func (t CastType) IsBackground() bool { return t.normalize() == CastBackground }

// Priority is the principal-roster sort key.  Unknown types sort with
// day players.
func (t CastType) Priority() int {
	if row, ok := castTable[t.normalize()]; ok {
		return row.priority
	}
	return castTable[CastDayPlayer].priority
}

// Label returns the display label; unknown types display as "Other".
func (t CastType) Label() string {
	if row, ok := castTable[t.normalize()]; ok {
		return row.label
	}
	return "Other"
}

// EventType is the kind of a schedule event.
type EventType string

const (
	EventScene EventType = "scene"
	EventBreak EventType = "break"
	EventMove  EventType = "move"
	EventPrep  EventType = "prep"
	EventWrap  EventType = "wrap"
	EventOther EventType = "other"
)

var eventLabels = map[EventType]string{
	EventScene: "Scene",
	EventBreak: "Break",
	EventMove:  "Company Move",
	EventPrep:  "Prep",
	EventWrap:  "Wrap",
	EventOther: "Other",
}

// Normalize maps t onto a known event type, falling back to other.
func (t EventType) Normalize() EventType {
	n := EventType(strings.ToLower(strings.TrimSpace(string(t))))
	if _, ok := eventLabels[n]; ok {
		return n
	}
	return EventOther
}

// Label returns the display label of the event type.
func (t EventType) Label() string { return eventLabels[t.Normalize()] }
