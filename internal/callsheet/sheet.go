package callsheet

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

// BackgroundMarker stands in for background cast in cast-number lists.
const BackgroundMarker = "BG"

// Sheet is the derived view of a call sheet.
type Sheet struct {
	ShootingDayID string `json:"shooting_day_id"`
	Date          string `json:"date"`
	DayNumber     int    `json:"day_number"`
	CallTime      string `json:"call_time,omitempty"`
	ShootCall     string `json:"shoot_call,omitempty"`
	Notes         string `json:"notes,omitempty"`

	TotalEighths int    `json:"total_eighths"`
	TotalPages   string `json:"total_pages"`
	Breakfast    string `json:"breakfast,omitempty"`
	Lunch        string `json:"lunch,omitempty"`

	Schedule        []ScheduleRow    `json:"schedule"`
	Scenes          []SceneCast      `json:"scenes"`
	Principal       []CastRow        `json:"principal_cast"`
	Background      []CastRow        `json:"background_cast"`
	BackgroundTotal int              `json:"background_total"`
	Crew            []DepartmentCrew `json:"crew"`
	Equipment       []EquipmentRow   `json:"equipment"`
	KeyContacts     []Contact        `json:"key_contacts"`
	Locations       []LocationSlot   `json:"locations"`
}

// ScheduleRow is one line of the day's running order.
type ScheduleRow struct {
	EventID     string   `json:"event_id"`
	Time        string   `json:"time,omitempty"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	SceneNumber string   `json:"scene_number,omitempty"`
	Pages       string   `json:"pages,omitempty"`
	Location    string   `json:"location,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Duration    int      `json:"duration,omitempty"`
}

// SceneCast cross-references a scheduled scene with the numbers of the
// principal cast in it.
type SceneCast struct {
	SceneID     string   `json:"scene_id"`
	SceneNumber string   `json:"scene_number"`
	Title       string   `json:"title,omitempty"`
	Pages       string   `json:"pages,omitempty"`
	Cast        []string `json:"cast"`
}

// CastRow is one cast roster entry.  Number is the 1-based position in
// the principal roster and zero for background.
type CastRow struct {
	Number    int    `json:"number,omitempty"`
	CastID    string `json:"cast_id"`
	Actor     string `json:"actor"`
	Character string `json:"character,omitempty"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	CallTime  string `json:"call_time,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// DepartmentCrew is the crew of one department.
type DepartmentCrew struct {
	Department model.Department `json:"department"`
	Label      string           `json:"label"`
	Members    []CrewRow        `json:"members"`
}

// CrewRow is one crew roster entry.
type CrewRow struct {
	CrewID   string `json:"crew_id"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Head     bool   `json:"head,omitempty"`
	CallTime string `json:"call_time,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// EquipmentRow is one piece of equipment needed on the day.
type EquipmentRow struct {
	EquipmentID string `json:"equipment_id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
}

// Contact is a key contact printed on the sheet header.
type Contact struct {
	Role   string `json:"role"`
	CrewID string `json:"crew_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
}

// LocationSlot is a logistics location of the day.
type LocationSlot struct {
	Slot       string `json:"slot"`
	LocationID string `json:"location_id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
}

// index holds lookups over Data.
type index struct {
	scenes    map[string]*model.Scene
	cast      map[string]*model.CastMember
	crew      map[string]*model.CrewMember
	locations map[string]*model.Location
	numbers   map[string]int
}

func newIndex(d *Data) *index {
	ix := &index{
		scenes:    make(map[string]*model.Scene, len(d.Scenes)),
		cast:      make(map[string]*model.CastMember, len(d.Cast)),
		crew:      make(map[string]*model.CrewMember, len(d.Crew)),
		locations: make(map[string]*model.Location, len(d.Locations)),
		numbers:   make(map[string]int),
	}
	for i := range d.Scenes {
		ix.scenes[d.Scenes[i].ID] = &d.Scenes[i]
	}
	for i := range d.Cast {
		ix.cast[d.Cast[i].ID] = &d.Cast[i]
	}
	for i := range d.Crew {
		ix.crew[d.Crew[i].ID] = &d.Crew[i]
	}
	for i := range d.Locations {
		ix.locations[d.Locations[i].ID] = &d.Locations[i]
	}
	return ix
}

// Build derives the call sheet from d.  It does not modify d.
func Build(d *Data) *Sheet {
	ix := newIndex(d)
	day := d.ShootingDay
	s := &Sheet{
		ShootingDayID: day.ID,
		Date:          day.Date,
		DayNumber:     day.DayNumber,
		CallTime:      day.CallTime,
		ShootCall:     day.ShootCall,
		Notes:         day.Notes,
		Breakfast:     mealTime(day.Breakfast, d.Events, "breakfast"),
		Lunch:         mealTime(day.Lunch, d.Events, "lunch"),
	}
	s.TotalEighths = totalEighths(d, ix)
	s.TotalPages = FormatEighths(s.TotalEighths)

	s.Principal, s.Background, s.BackgroundTotal = castRoster(d, ix)
	for _, row := range s.Principal {
		ix.numbers[row.CastID] = row.Number
	}
	s.Crew = crewRoster(d, ix)
	s.Schedule = scheduleRows(d, ix)
	s.Scenes = make([]SceneCast, 0, len(d.Scenes))
	for _, sc := range d.Scenes {
		s.Scenes = append(s.Scenes, SceneCast{
			SceneID:     sc.ID,
			SceneNumber: sc.SceneNumber,
			Title:       sc.Title,
			Pages:       pages(sc.PageCount),
			Cast:        ix.castNumbers(sc.CastIDs),
		})
	}
	s.Equipment = make([]EquipmentRow, 0, len(d.Equipment))
	for _, e := range d.Equipment {
		s.Equipment = append(s.Equipment, EquipmentRow{EquipmentID: e.ID, Name: e.Name, Category: e.Category, Quantity: e.Quantity})
	}
	s.KeyContacts = keyContacts(d, ix)
	s.Locations = locationSlots(day, ix)
	return s
}

// totalEighths counts each referenced scene once plus the page counts
// of events that are not tied to a known scene.
func totalEighths(d *Data, ix *index) int {
	total := 0
	counted := make(map[string]bool)
	for _, e := range d.Events {
		if sc, ok := ix.scenes[e.SceneID]; ok {
			if !counted[sc.ID] {
				counted[sc.ID] = true
				total += ParseEighths(sc.PageCount)
			}
			continue
		}
		total += ParseEighths(e.PageCount)
	}
	return total
}

func pages(pageCount string) string {
	if strings.TrimSpace(pageCount) == "" {
		return ""
	}
	return FormatEighths(ParseEighths(pageCount))
}

// earliest returns the smaller non-empty "HH:MM" time.
func earliest(cur, t string) string {
	if t == "" {
		return cur
	}
	if cur == "" || t < cur {
		return t
	}
	return cur
}

func mealTime(explicit string, events []model.ScheduleEvent, word string) string {
	if explicit != "" {
		return explicit
	}
	found := ""
	for _, e := range events {
		if e.Type.Normalize() != model.EventBreak {
			continue
		}
		if strings.Contains(strings.ToLower(e.Description), word) {
			found = earliest(found, e.Time)
		}
	}
	return found
}

// callTime resolves a person's call: their own call time, else the
// earliest event naming them directly or through the event's scene,
// else the day's general call.
func callTime(explicit, id string, d *Data, ix *index, inScene func(*model.Scene) []string) string {
	if explicit != "" {
		return explicit
	}
	found := ""
	for i := range d.Events {
		e := &d.Events[i]
		if e.References(id) {
			found = earliest(found, e.Time)
			continue
		}
		if sc, ok := ix.scenes[e.SceneID]; ok && containsID(inScene(sc), id) {
			found = earliest(found, e.Time)
		}
	}
	if found != "" {
		return found
	}
	return d.ShootingDay.CallTime
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sceneCast(sc *model.Scene) []string { return sc.CastIDs }
func sceneCrew(sc *model.Scene) []string { return sc.CrewIDs }

// castRoster splits the cast into the numbered principal roster, sorted
// by type priority then character, and the background list in its
// original order.
func castRoster(d *Data, ix *index) (principal, background []CastRow, bgTotal int) {
	var pcast []model.CastMember
	for _, c := range d.Cast {
		if c.CastType.IsBackground() {
			background = append(background, castRow(&c, d, ix))
			bgTotal += c.Headcount()
			continue
		}
		pcast = append(pcast, c)
	}
	sort.SliceStable(pcast, func(i, j int) bool {
		a, b := pcast[i], pcast[j]
		if pa, pb := a.CastType.Priority(), b.CastType.Priority(); pa != pb {
			return pa < pb
		}
		ca, cb := strings.ToLower(a.CharacterName), strings.ToLower(b.CharacterName)
		if ca != cb {
			return ca < cb
		}
		return a.ID < b.ID
	})
	principal = make([]CastRow, 0, len(pcast))
	for i := range pcast {
		row := castRow(&pcast[i], d, ix)
		row.Number = i + 1
		principal = append(principal, row)
	}
	if background == nil {
		background = []CastRow{}
	}
	return principal, background, bgTotal
}

func castRow(c *model.CastMember, d *Data, ix *index) CastRow {
	return CastRow{
		CastID:    c.ID,
		Actor:     c.ActorName,
		Character: c.CharacterName,
		Type:      c.CastType.Label(),
		Quantity:  c.Headcount(),
		CallTime:  callTime(c.CallTime, c.ID, d, ix, sceneCast),
		Phone:     c.Phone,
	}
}

// castNumbers lists the principal numbers of ids in ascending order,
// followed by BackgroundMarker when any of them is background.
func (ix *index) castNumbers(ids []string) []string {
	var nums []int
	bg := false
	for _, id := range repository.Unique(ids) {
		c, ok := ix.cast[id]
		if !ok {
			continue
		}
		if c.CastType.IsBackground() {
			bg = true
			continue
		}
		if n := ix.numbers[id]; n > 0 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	out := make([]string, 0, len(nums)+1)
	for _, n := range nums {
		out = append(out, strconv.Itoa(n))
	}
	if bg {
		out = append(out, BackgroundMarker)
	}
	return out
}

// crewRoster groups the crew by department in department order, heads
// first and then by name.
func crewRoster(d *Data, ix *index) []DepartmentCrew {
	groups := make(map[model.Department]*DepartmentCrew)
	var order []model.Department
	members := append([]model.CrewMember(nil), d.Crew...)
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.IsDepartmentHead != b.IsDepartmentHead {
			return a.IsDepartmentHead
		}
		na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if na != nb {
			return na < nb
		}
		return a.ID < b.ID
	})
	for i := range members {
		c := &members[i]
		dept := c.Department.Normalize()
		g, ok := groups[dept]
		if !ok {
			g = &DepartmentCrew{Department: dept, Label: dept.Label()}
			groups[dept] = g
			order = append(order, dept)
		}
		g.Members = append(g.Members, CrewRow{
			CrewID:   c.ID,
			Name:     c.Name,
			Role:     c.Role,
			Head:     c.IsDepartmentHead,
			CallTime: callTime(c.CallTime, c.ID, d, ix, sceneCrew),
			Phone:    c.Phone,
		})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Rank() < order[j].Rank() })
	out := make([]DepartmentCrew, 0, len(order))
	for _, dept := range order {
		out = append(out, *groups[dept])
	}
	return out
}

func scheduleRows(d *Data, ix *index) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(d.Events))
	for _, e := range d.Events {
		row := ScheduleRow{
			EventID:     e.ID,
			Time:        e.Time,
			Type:        e.Type.Label(),
			Description: e.Description,
			SceneNumber: e.SceneNumber,
			Pages:       pages(e.PageCount),
			Duration:    e.Duration,
		}
		locationID := e.LocationID
		castIDs := e.CastIDs
		if sc, ok := ix.scenes[e.SceneID]; ok {
			row.SceneNumber = model.ResolveString(e.SceneNumber, sc.SceneNumber, "")
			row.Pages = model.ResolveString(row.Pages, pages(sc.PageCount), "")
			locationID = model.ResolveString(locationID, sc.PrimaryLocationID(), "")
			castIDs = model.Resolve(castIDs, sc.CastIDs, nil)
		}
		if loc, ok := ix.locations[locationID]; ok {
			row.Location = loc.Name
		}
		row.Cast = ix.castNumbers(castIDs)
		rows = append(rows, row)
	}
	return rows
}

var contactSlots = []struct {
	role  string
	match string
	id    func(*model.ShootingDay) string
}{
	{"Director", "director", func(d *model.ShootingDay) string { return d.DirectorCrewID }},
	{"Executive Producer", "executive producer", func(d *model.ShootingDay) string { return d.ExecutiveProducerCrewID }},
	{"Production Coordinator", "production coordinator", func(d *model.ShootingDay) string { return d.ProductionCoordinatorCrewID }},
}

// keyContacts resolves each contact slot of the day, falling back to
// the first crew member whose role names the slot.
func keyContacts(d *Data, ix *index) []Contact {
	out := make([]Contact, 0, len(contactSlots))
	for _, slot := range contactSlots {
		c := ix.crew[slot.id(&d.ShootingDay)]
		if c == nil {
			for i := range d.Crew {
				if strings.EqualFold(strings.TrimSpace(d.Crew[i].Role), slot.match) {
					c = &d.Crew[i]
					break
				}
			}
		}
		if c == nil {
			continue
		}
		out = append(out, Contact{Role: slot.role, CrewID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email})
	}
	return out
}

func locationSlots(day model.ShootingDay, ix *index) []LocationSlot {
	slots := []struct {
		name string
		id   string
	}{
		{"Basecamp", day.BasecampLocationID},
		{"Crew Parking", day.CrewParkLocationID},
		{"Tech Trucks", day.TechTrucksLocationID},
		{"Nearest Hospital", day.HospitalLocationID},
	}
	out := make([]LocationSlot, 0, len(slots))
	for _, s := range slots {
		loc, ok := ix.locations[s.id]
		if !ok {
			continue
		}
		out = append(out, LocationSlot{Slot: s.name, LocationID: loc.ID, Name: loc.Name, Address: loc.Address})
	}
	return out
}
