package replenishment

// ScheduledArrival is one populated week of the incoming supply schedule.
type ScheduledArrival struct {
	Week     int     `json:"week"`
	Quantity float64 `json:"quantity"`
}

// Position is on-hand inventory plus everything already in the pipeline.
type Position struct {
	InventoryPosition float64
	TotalInTransit    float64
	Arrivals          []ScheduledArrival
}

// CalculatePosition aggregates the incoming schedule. Non-positive entries are ignored.
func CalculatePosition(currentInventory float64, schedule WeeklyQuantities) Position {
	p := Position{Arrivals: make([]ScheduledArrival, 0, len(schedule))}
	for _, week := range schedule.Weeks() {
		qty := schedule.Get(week)
		if qty <= 0 {
			continue
		}
		p.TotalInTransit += qty
		p.Arrivals = append(p.Arrivals, ScheduledArrival{Week: week, Quantity: qty})
	}
	p.InventoryPosition = currentInventory + p.TotalInTransit
	return p
}
