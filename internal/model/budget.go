package model

// BudgetCategory groups budget items.  Order drives display order.
type BudgetCategory struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Order      int        `json:"order"`
	Department Department `json:"department,omitempty"`
}

// BudgetItem is one costed line of the budget.  At most one of the
// Linked*ID resource fields is set; LinkedSceneID may accompany it
// when the item was generated from a scene breakdown.
//
// UnitRate is nil when the line has no rate (a lump sum).  When the
// synchronizers set UnitRate they keep EstimatedAmount equal to
// UnitRate × Quantity; a hand-edited EstimatedAmount is left alone.
type BudgetItem struct {
	ID              string   `json:"id"`
	CategoryID      string   `json:"categoryId"`
	Description     string   `json:"description"`
	EstimatedAmount float64  `json:"estimatedAmount"`
	ActualAmount    float64  `json:"actualAmount"`
	Status          string   `json:"status,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	Quantity        float64  `json:"quantity,omitempty"`
	UnitRate        *float64 `json:"unitRate,omitempty"`

	LinkedCrewID      string `json:"linkedCrewId,omitempty"`
	LinkedCastID      string `json:"linkedCastId,omitempty"`
	LinkedEquipmentID string `json:"linkedEquipmentId,omitempty"`
	LinkedLocationID  string `json:"linkedLocationId,omitempty"`
	LinkedSceneID     string `json:"linkedSceneId,omitempty"`
}

// BudgetStatusEstimated is the status of generated budget items.
const BudgetStatusEstimated = "estimated"

// Rate returns UnitRate or zero when the item has none.
func (b *BudgetItem) Rate() float64 {
	if b.UnitRate == nil {
		return 0
	}
	return *b.UnitRate
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }
