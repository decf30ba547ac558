package model

import "strings"

// Equipment is a rentable or owned piece of gear.
type Equipment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Quantity   int     `json:"quantity,omitempty"`
	DailyRate  float64 `json:"dailyRate,omitempty"`
	WeeklyRate float64 `json:"weeklyRate,omitempty"`
}

// BudgetDescription is the line-item text for budget items linked to
// the equipment.
func (e *Equipment) BudgetDescription() string {
	name := strings.TrimSpace(e.Name)
	if cat := strings.TrimSpace(e.Category); cat != "" {
		return name + " (" + cat + ")"
	}
	return name
}

// UsesWeeklyRate reports whether a budget unit string bills by the
// week.  Anything else, including an empty unit, bills by the day.
func UsesWeeklyRate(unit string) bool {
	return strings.Contains(strings.ToLower(unit), "week")
}
