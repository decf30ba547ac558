package model

import "strings"

// Location is a filming or logistics location.
type Location struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	RentalCost float64 `json:"rentalCost,omitempty"`
}

// BudgetDescription is the line-item text for budget items linked to
// the location.
func (l *Location) BudgetDescription() string {
	return "Location: " + strings.TrimSpace(l.Name)
}
