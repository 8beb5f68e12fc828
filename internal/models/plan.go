package models

// Plan is one entry of the fixed subscription catalog. AmountCents is in
// centavos; providers that bill in reais convert at the adapter boundary.
type Plan struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
}

var plans = []Plan{
	{ID: "monthly", Title: "Mensal", Description: "Assinatura Mensal", AmountCents: 1990},
	{ID: "quarterly", Title: "Trimestral", Description: "Assinatura Trimestral (33% OFF)", AmountCents: 3990},
	{ID: "semester", Title: "Semestral", Description: "Assinatura Semestral (50% OFF)", AmountCents: 5990},
}

// Plans returns the full catalog.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan by its identifier.
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
