package model

import "strings"

// CrewMember is a person on the production crew.  Rate is the day rate
// that budget items linked to the crew member are costed against.
type CrewMember struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Role             string     `json:"role,omitempty"`
	Department       Department `json:"department,omitempty"`
	IsDepartmentHead bool       `json:"isDepartmentHead,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty"`
	Rate             float64    `json:"rate,omitempty"`
	CallTime         string     `json:"callTime,omitempty"`
}

// BudgetDescription is the line-item text for budget items linked to
// the crew member.
func (c *CrewMember) BudgetDescription() string {
	name := strings.TrimSpace(c.Name)
	if role := strings.TrimSpace(c.Role); role != "" {
		return name + " - " + role
	}
	return name
}
