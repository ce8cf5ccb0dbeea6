package engine

// Event is a notable occurrence in the facility.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "plan", "combat", "alert", "death", "noise"
}

func (s *Simulation) addEvent(tick uint64, category, description string) {
	s.Events = append(s.Events, Event{Tick: tick, Description: description, Category: category})
}
