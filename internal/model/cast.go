package model

import "strings"

// CastMember is a performer.  Background entries usually stand for a
// group of extras, so Quantity may be greater than one.
type CastMember struct {
	ID            string   `json:"id"`
	ActorName     string   `json:"actorName"`
	CharacterName string   `json:"characterName,omitempty"`
	CastType      CastType `json:"castType,omitempty"`
	Quantity      int      `json:"quantity,omitempty"`
	DayRate       float64  `json:"dayRate,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Email         string   `json:"email,omitempty"`
	CallTime      string   `json:"callTime,omitempty"`
}

// Headcount returns Quantity, defaulting to one.
func (c *CastMember) Headcount() int {
	if c.Quantity <= 0 {
		return 1
	}
	return c.Quantity
}

// BudgetDescription is the line-item text for budget items linked to
// the cast member.
func (c *CastMember) BudgetDescription() string {
	actor := strings.TrimSpace(c.ActorName)
	if ch := strings.TrimSpace(c.CharacterName); ch != "" {
		return actor + " as " + ch
	}
	return actor
}
